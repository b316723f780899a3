package timer

import (
	"clockdriver/clock"
	"clockdriver/core"
	"clockdriver/regs"
)

// Board wiring of the PWM output: PA5 (the Nucleo user LED) is TIM2_CH1 on AF5
const (
	PWMPin     = 5
	PWMAltFunc = 5
)

// PWM is channel 1 of a general purpose timer in edge-aligned PWM mode 1,
// driving one pin through its alternate function.
type PWM struct {
	tim      *regs.TIM
	timGate  regs.Gate
	port     *regs.GPIO
	portGate regs.Gate
	pin      uint8
	af       uint32
	wait     core.WaitPolicy

	period uint16
	pulse  uint16
	ready  bool
}

// NewPWM wraps tim and the output pin. The gates are the APB1 clock-enable
// bit of the timer and the IOPENR bit of the port.
func NewPWM(tim *regs.TIM, timGate regs.Gate, port *regs.GPIO, portGate regs.Gate, pin uint8, af uint32, wait core.WaitPolicy) *PWM {
	return &PWM{
		tim:      tim,
		timGate:  timGate,
		port:     port,
		portGate: portGate,
		pin:      pin,
		af:       af,
		wait:     wait,
	}
}

// Configure starts a waveform with period+1 timer ticks per cycle, active
// while the counter is below pulse. pulse is not checked against period.
// It blocks until a forced update has made both values live.
func (p *PWM) Configure(period, pulse uint16) error {
	// Pin to alternate function
	p.portGate.Enable()
	p.port.SetMode(p.pin, regs.GPIOModeAlternate)
	p.port.SetAltFunc(p.pin, p.af)

	// Timer clocked straight from the APB1 timer clock
	p.timGate.Enable()
	p.tim.PSC.Set(0)
	p.tim.ARR.Set(uint32(period))

	// Compare value, preloaded; PWM mode 1; CC1S stays 00 (output), CC1P low
	p.tim.CCR1.Set(uint32(pulse))
	regs.SetBits(p.tim.CCMR1, regs.TIM_CCMR1_OC1PE)
	regs.ReplaceBits(p.tim.CCMR1, regs.OCModePWM1, regs.TIM_CCMR1_OC1M_Msk, regs.TIM_CCMR1_OC1M_Pos)

	// Edge aligned, up counting
	regs.SetBits(p.tim.CCER, regs.TIM_CCER_CC1E)
	regs.SetBits(p.tim.CR1, regs.TIM_CR1_ARPE)
	regs.SetBits(p.tim.CR1, regs.TIM_CR1_CEN)

	regs.SetBits(p.tim.EGR, regs.TIM_EGR_UG)
	polls, err := p.wait.Until(core.SitePWMUIF, func() bool {
		return regs.HasBits(p.tim.SR, regs.TIM_SR_UIF)
	})
	if err != nil {
		return err
	}
	p.tim.ClearUpdate()

	p.period = period
	p.pulse = pulse
	p.ready = true
	core.RecordEvent(core.EvtPWMReady, polls, uint32(period)<<16|uint32(pulse))
	return nil
}

// SetPulse changes the compare value. It is preloaded and takes effect at the
// next counter overflow, so the running cycle finishes with the old value.
func (p *PWM) SetPulse(pulse uint16) error {
	if !p.ready {
		return ErrNotStarted
	}
	p.tim.CCR1.Set(uint32(pulse))
	p.pulse = pulse
	return nil
}

// Period returns the configured reload value
func (p *PWM) Period() uint16 {
	return p.period
}

// Pulse returns the configured compare value
func (p *PWM) Pulse() uint16 {
	return p.pulse
}

// Frequency returns the output frequency in Hz for tree
func (p *PWM) Frequency(tree clock.Tree) uint32 {
	return tree.TIMPCLK1 / (uint32(p.period) + 1)
}

// DutyPermille returns the active share of a cycle in 1/1000. A compare
// value above the reload value keeps the output active for the whole cycle.
func (p *PWM) DutyPermille() uint32 {
	return DutyPermille(p.period, p.pulse)
}

// DutyPermille is the PWM mode 1 duty cycle of reload value period and
// compare value pulse, in 1/1000.
func DutyPermille(period, pulse uint16) uint32 {
	if pulse > period {
		return 1000
	}
	return uint32(pulse) * 1000 / (uint32(period) + 1)
}
