package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clockdriver/regs"
)

func startTimer(m *MCU, tim *regs.TIM, gate uint32) {
	regs.SetBits(m.Peripherals().RCC.APB1ENR, gate)
	regs.SetBits(tim.CR1, regs.TIM_CR1_CEN)
}

func TestTimerStoppedWithoutGate(t *testing.T) {
	m := New()
	tim := m.Peripherals().TIM6
	tim.CR1.Set(regs.TIM_CR1_CEN)
	m.TIM6.Tick(10)
	assert.Zero(t, m.TIM6.Count())
	assert.Zero(t, m.TIM6.Clocks())
}

func TestTimerPrescalerIsPreloaded(t *testing.T) {
	m := New()
	tim := m.Peripherals().TIM6
	regs.SetBits(m.Peripherals().RCC.APB1ENR, regs.RCC_APB1ENR_TIM6EN)
	tim.PSC.Set(15)
	tim.ARR.Set(9)
	regs.SetBits(tim.CR1, regs.TIM_CR1_CEN)

	// Old prescaler of 0 until the first overflow
	assert.Zero(t, m.TIM6.Prescaler())
	m.TIM6.Tick(9)
	assert.Equal(t, uint32(9), m.TIM6.Count())
	assert.Zero(t, m.Reg("TIM6.SR").Peek())
	m.TIM6.Tick(1)
	assert.Equal(t, uint32(15), m.TIM6.Prescaler())
	assert.True(t, m.Reg("TIM6.SR").Peek()&regs.TIM_SR_UIF != 0)
	assert.Zero(t, m.TIM6.Count())

	m.TIM6.Tick(16)
	assert.Equal(t, uint32(1), m.TIM6.Count())
}

func TestTimerStatusIsClearedByZero(t *testing.T) {
	m := New()
	tim := m.Peripherals().TIM2
	startTimer(m, tim, regs.RCC_APB1ENR_TIM2EN)
	tim.EGR.Set(regs.TIM_EGR_UG)
	assert.Equal(t, uint32(regs.TIM_SR_UIF), m.Reg("TIM2.SR").Peek())

	// Writing ones leaves the flag alone
	tim.SR.Set(regs.TIM_SR_UIF)
	assert.Equal(t, uint32(regs.TIM_SR_UIF), m.Reg("TIM2.SR").Peek())

	tim.ClearUpdate()
	assert.Zero(t, m.Reg("TIM2.SR").Peek())
}

func TestTimerStuckUpdate(t *testing.T) {
	m := New()
	m.Stick(StuckTIM2UIF)
	tim := m.Peripherals().TIM2
	startTimer(m, tim, regs.RCC_APB1ENR_TIM2EN)
	tim.EGR.Set(regs.TIM_EGR_UG)
	assert.False(t, regs.HasBits(tim.SR, regs.TIM_SR_UIF))
}

func TestTimerCounterWrite(t *testing.T) {
	m := New()
	tim := m.Peripherals().TIM6
	startTimer(m, tim, regs.RCC_APB1ENR_TIM6EN)
	m.TIM6.Tick(100)
	tim.CNT.Set(0)
	assert.Equal(t, uint32(1), tim.CNT.Get())
}

func TestTimerPWMOutput(t *testing.T) {
	m := New()
	tim := m.Peripherals().TIM2
	regs.SetBits(m.Peripherals().RCC.APB1ENR, regs.RCC_APB1ENR_TIM2EN)
	tim.ARR.Set(9)
	tim.CCR1.Set(3)
	regs.ReplaceBits(tim.CCMR1, regs.OCModePWM1, regs.TIM_CCMR1_OC1M_Msk, regs.TIM_CCMR1_OC1M_Pos)
	regs.SetBits(tim.CCER, regs.TIM_CCER_CC1E)
	regs.SetBits(tim.CR1, regs.TIM_CR1_CEN)

	active, total := m.TIM2.Sample(4)
	assert.Equal(t, 40, total)
	assert.Equal(t, 12, active)

	// Inverted polarity
	regs.SetBits(tim.CCER, regs.TIM_CCER_CC1P)
	active, _ = m.TIM2.Sample(4)
	assert.Equal(t, 28, active)
}
