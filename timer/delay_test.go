package timer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockdriver/clock"
	"clockdriver/core"
	"clockdriver/regs"
	"clockdriver/regs/sim"
)

func newDelay(t *testing.T, m *sim.MCU) *Delay {
	t.Helper()
	p := m.Peripherals()
	d := NewDelay(p.TIM6, p.RCC.APB1Gate(regs.RCC_APB1ENR_TIM6EN), core.Bounded(1<<20))
	require.NoError(t, d.Configure(clock.DefaultConfig().Tree()))
	return d
}

func TestDelayConfigure(t *testing.T) {
	m := sim.New()
	d := newDelay(t, m)

	assert.True(t, d.Ready())
	assert.Equal(t, 1, m.CountWrites("TIM6.PSC", 15))
	assert.Equal(t, uint32(15), m.TIM6.Prescaler())
	assert.Equal(t, uint32(regs.MaxCount), m.Reg("TIM6.ARR").Peek())
	assert.Zero(t, m.Reg("TIM6.SR").Peek()&regs.TIM_SR_UIF)
}

func TestDelayRejectsOddTimerClock(t *testing.T) {
	m := sim.New()
	p := m.Peripherals()
	d := NewDelay(p.TIM6, p.RCC.APB1Gate(regs.RCC_APB1ENR_TIM6EN), core.Forever)

	assert.ErrorIs(t, d.Configure(clock.Tree{TIMPCLK1: 2097152}), ErrTickRate)
	assert.ErrorIs(t, d.Configure(clock.Tree{}), ErrTickRate)
	assert.False(t, d.Ready())
	assert.Empty(t, m.Writes())
}

func TestDelayStuckUpdate(t *testing.T) {
	m := sim.New()
	m.Stick(sim.StuckTIM6UIF)
	p := m.Peripherals()
	d := NewDelay(p.TIM6, p.RCC.APB1Gate(regs.RCC_APB1ENR_TIM6EN), core.Bounded(70000))

	err := d.Configure(clock.DefaultConfig().Tree())
	var fault *core.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, core.SiteDelayUIF, fault.Site)
	assert.False(t, d.Ready())
}

func TestMicrosecondsZeroReturnsImmediately(t *testing.T) {
	m := sim.New()
	d := newDelay(t, m)

	before := m.TIM6.Clocks()
	d.Microseconds(0)
	assert.Equal(t, uint64(1), m.TIM6.Clocks()-before)
}

func TestMicrosecondsCountsKernelClocks(t *testing.T) {
	m := sim.New()
	d := newDelay(t, m)
	m.ResetLog()

	before := m.TIM6.Clocks()
	d.Microseconds(100)
	first := m.TIM6.Clocks() - before

	before = m.TIM6.Clocks()
	d.Microseconds(50)
	second := m.TIM6.Clocks() - before

	// 16 kernel clocks per microsecond, give or take one prescaler cycle
	assert.InDelta(t, 1600, first, 16)
	assert.InDelta(t, 800, second, 16)
	assert.Equal(t, 2, m.CountWrites("TIM6.CNT", 0))
}

func TestMicrosecondsFullRange(t *testing.T) {
	m := sim.New()
	d := newDelay(t, m)

	d.Microseconds(65535)
	assert.Equal(t, uint32(65535), m.TIM6.Count())
}

func TestMilliseconds(t *testing.T) {
	m := sim.New()
	d := newDelay(t, m)

	m.ResetLog()
	d.Milliseconds(0)
	assert.Empty(t, m.Writes())

	before := m.TIM6.Clocks()
	d.Milliseconds(3)
	assert.Equal(t, 3, m.CountWrites("TIM6.CNT", 0))
	assert.InDelta(t, 48000, m.TIM6.Clocks()-before, 48)
}
