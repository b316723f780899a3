//go:build tinygo && stm32l0

package main

import (
	"errors"

	"clockdriver/boot"
	"clockdriver/clock"
	"clockdriver/config"
	"clockdriver/core"
	"clockdriver/regs"
)

// ReportInterval is how often the boot report is repeated, so a monitor
// attached after reset still receives it.
const ReportInterval = 5000 // ms

var errTaken = errors.New("peripherals already taken")

func main() {
	p, ok := regs.Take()
	if !ok {
		core.Fatal(errTaken)
	}

	cfg := config.Default()
	core.SetDebugEnabled(cfg.Debug)

	res, err := boot.Run(p, cfg)
	if err != nil {
		reportFault(p, cfg, err)
	}

	port := newPort(p, cfg)
	if err := port.Configure(res.Tree.PCLK1, cfg.ReportBaud); err != nil {
		core.Fatal(err)
	}
	core.SetDebugWriter(port.WriteString)
	if cfg.Debug {
		core.DumpEvents()
	}

	for seq := uint32(0); ; seq++ {
		if err := port.SendReport(&res.Report); err != nil {
			core.Fatal(err)
		}
		core.DebugPrintln("[BOOT] report " + core.Utoa(seq))
		res.Delay.Milliseconds(ReportInterval)
	}
}

func newPort(p *regs.Peripherals, cfg config.Board) *boot.ReportPort {
	return boot.NewReportPort(p.USART2, p.RCC.APB1Gate(regs.RCC_APB1ENR_USART2EN),
		p.GPIOA, p.RCC.IOPGate(regs.RCC_IOPENR_IOPAEN), boot.ReportPin, boot.ReportAltFunc, cfg.Wait())
}

// reportFault brings the USART up on whatever clock is running, prints the
// fault with the event ring and halts.
func reportFault(p *regs.Peripherals, cfg config.Board, err error) {
	port := newPort(p, cfg)
	tree := clock.TreeFromRegisters(p.RCC)
	if port.Configure(tree.PCLK1, cfg.ReportBaud) == nil {
		core.SetDebugWriter(port.WriteString)
		core.SetDebugEnabled(true)
	}
	core.Fatal(err)
}
