// Package boot is the startup sequence shared by the firmware and the host
// simulator: system clock, delay timer, PWM output, then the boot report.
package boot

import (
	"clockdriver/clock"
	"clockdriver/config"
	"clockdriver/core"
	"clockdriver/protocol"
	"clockdriver/regs"
	"clockdriver/timer"
)

// Result holds the drivers brought up by Run
type Result struct {
	Sequencer *clock.Sequencer
	Tree      clock.Tree
	Delay     *timer.Delay
	PWM       *timer.PWM
	Report    protocol.BootReport
}

// Run brings the board up with cfg. Any error is the first wait that gave
// up, as a *core.Fault, or a configuration error.
func Run(p *regs.Peripherals, cfg config.Board) (*Result, error) {
	core.ClearEvents()
	wait := cfg.Wait()

	clk := clock.DefaultConfig()
	clk.Wait = wait
	seq := clock.New(p.RCC, p.PWR, p.FLASH, clk)
	if err := seq.Configure(); err != nil {
		return nil, err
	}
	tree := seq.Tree()

	delay := timer.NewDelay(p.TIM6, p.RCC.APB1Gate(regs.RCC_APB1ENR_TIM6EN), wait)
	if err := delay.Configure(tree); err != nil {
		return nil, err
	}

	pwm := timer.NewPWM(p.TIM2, p.RCC.APB1Gate(regs.RCC_APB1ENR_TIM2EN),
		p.GPIOA, p.RCC.IOPGate(regs.RCC_IOPENR_IOPAEN), timer.PWMPin, timer.PWMAltFunc, wait)
	if err := pwm.Configure(cfg.PWMPeriod, cfg.PWMPulse); err != nil {
		return nil, err
	}
	core.DebugPrintln("[BOOT] pwm " + core.Hz(pwm.Frequency(tree)) +
		" duty=" + core.Utoa(pwm.DutyPermille()) + "/1000")

	return &Result{
		Sequencer: seq,
		Tree:      tree,
		Delay:     delay,
		PWM:       pwm,
		Report:    NewReport(tree, pwm),
	}, nil
}

// siteEvents maps report site IDs to the event that records their polls
var siteEvents = [...]struct {
	site  uint8
	event uint8
}{
	{protocol.SiteHSI, core.EvtHSIReady},
	{protocol.SiteRegulator, core.EvtRegulatorReady},
	{protocol.SitePLL, core.EvtPLLReady},
	{protocol.SiteSysclk, core.EvtSysclkSwitched},
	{protocol.SiteDelayUIF, core.EvtDelayReady},
	{protocol.SitePWMUIF, core.EvtPWMReady},
}

// NewReport collects the boot report from tree, the PWM settings and the
// poll counts in the event ring.
func NewReport(tree clock.Tree, pwm *timer.PWM) protocol.BootReport {
	r := protocol.BootReport{
		SYSCLK:    tree.SYSCLK,
		HCLK:      tree.HCLK,
		PCLK1:     tree.PCLK1,
		PCLK2:     tree.PCLK2,
		TIMPCLK1:  tree.TIMPCLK1,
		TIMPCLK2:  tree.TIMPCLK2,
		CoreClock: core.CoreClock(),
		PWMPeriod: pwm.Period(),
		PWMPulse:  pwm.Pulse(),
	}
	for _, se := range siteEvents {
		if evt, ok := core.LastEvent(se.event); ok {
			r.Sites = append(r.Sites, protocol.SitePolls{Site: se.site, Polls: evt.Polls})
		}
	}
	return r
}
