// Package timer drives TIM6 as a blocking microsecond delay and TIM2
// channel 1 as a PWM output. Both count from the APB1 timer clock
// established by package clock.
package timer

import (
	"errors"

	"clockdriver/clock"
	"clockdriver/core"
	"clockdriver/regs"
)

var (
	ErrTickRate   = errors.New("timer: timer clock is not a whole number of MHz")
	ErrNotStarted = errors.New("timer: not configured")
)

// Delay is a free-running 16-bit counter ticking once per microsecond.
// It is not reentrant: two callers race on the same counter.
type Delay struct {
	tim   *regs.TIM
	gate  regs.Gate
	wait  core.WaitPolicy
	ready bool
}

// NewDelay wraps tim. gate is the timer's APB1 clock-enable bit.
func NewDelay(tim *regs.TIM, gate regs.Gate, wait core.WaitPolicy) *Delay {
	return &Delay{tim: tim, gate: gate, wait: wait}
}

// Configure starts the counter at 1 MHz from the APB1 timer clock of tree and
// blocks until the first update event has loaded the prescaler.
func (d *Delay) Configure(tree clock.Tree) error {
	if tree.TIMPCLK1 == 0 || tree.TIMPCLK1%1000000 != 0 {
		return ErrTickRate
	}
	// At most 4294, always fits the 16-bit prescaler
	psc := tree.TIMPCLK1/1000000 - 1

	d.gate.Enable()
	d.tim.PSC.Set(psc)
	d.tim.ARR.Set(regs.MaxCount)
	regs.SetBits(d.tim.CR1, regs.TIM_CR1_CEN)

	// PSC is preloaded; it only takes effect at the first update
	polls, err := d.wait.Until(core.SiteDelayUIF, func() bool {
		return regs.HasBits(d.tim.SR, regs.TIM_SR_UIF)
	})
	if err != nil {
		return err
	}
	d.tim.ClearUpdate()
	core.RecordEvent(core.EvtDelayReady, polls, psc)
	d.ready = true
	return nil
}

// Ready reports whether Configure completed
func (d *Delay) Ready() bool {
	return d.ready
}

// Microseconds blocks for at least us microseconds. The counter is 16 bits
// wide, so a single call covers at most 65535 µs.
func (d *Delay) Microseconds(us uint16) {
	d.tim.CNT.Set(0)
	for d.tim.CNT.Get() < uint32(us) {
	}
}

// Milliseconds blocks for ms milliseconds in 1000 µs steps. Call overhead
// accumulates per step, so this is only meant for coarse delays.
func (d *Delay) Milliseconds(ms uint32) {
	for i := uint32(0); i < ms; i++ {
		d.Microseconds(1000)
	}
}
