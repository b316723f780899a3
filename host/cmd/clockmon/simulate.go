package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"clockdriver/boot"
	"clockdriver/config"
	"clockdriver/core"
	"clockdriver/host/monitor"
	"clockdriver/regs"
	"clockdriver/regs/sim"
)

type simOptions struct {
	board   config.Board
	latency int
	stuck   []string
	capture string
}

func runSimulate(c *cli.Context) error {
	opts := simOptions{
		board:   config.Default(),
		latency: c.Int("latency"),
		stuck:   c.StringSlice("stuck"),
		capture: c.String("capture"),
	}
	if path := c.String("config"); path != "" {
		b, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		opts.board = *b
	}
	if limit := c.Int("wait-limit"); limit > 0 {
		opts.board.WaitLimit = uint32(limit)
	}
	return simulate(os.Stdout, opts)
}

// simulate boots a simulated board and prints the report it sends
func simulate(w io.Writer, opts simOptions) error {
	core.SetDebugWriter(func(s string) { slog.Debug(s) })
	core.SetDebugEnabled(opts.board.Debug)

	mcu := sim.New()
	mcu.Latency = opts.latency
	for _, site := range opts.stuck {
		mcu.Stick(site)
	}
	if len(opts.stuck) > 0 && opts.board.WaitLimit == 0 {
		// A stuck flag with an unbounded wait would never return
		opts.board.WaitLimit = 1 << 20
	}

	p := mcu.Peripherals()
	res, err := boot.Run(p, opts.board)
	if err != nil {
		for _, evt := range core.Events() {
			slog.Info("Boot event", "event", core.EventName(evt.EventType), "polls", evt.Polls, "value", evt.Value)
		}
		return fmt.Errorf("simulated boot: %w", err)
	}
	slog.Info("Simulated boot complete", "tree", res.Tree.String(), "writes", len(mcu.Writes()))

	port := boot.NewReportPort(p.USART2, p.RCC.APB1Gate(regs.RCC_APB1ENR_USART2EN),
		p.GPIOA, p.RCC.IOPGate(regs.RCC_IOPENR_IOPAEN), boot.ReportPin, boot.ReportAltFunc, opts.board.Wait())
	if err := port.Configure(res.Tree.PCLK1, opts.board.ReportBaud); err != nil {
		return err
	}
	if err := port.SendReport(&res.Report); err != nil {
		return err
	}

	tx := mcu.TX()
	if opts.capture != "" {
		if err := os.WriteFile(opts.capture, tx, 0o644); err != nil {
			return err
		}
	}

	m := monitor.New(bytes.NewReader(tx), slog.Default())
	if err := watch(context.Background(), m, w, 1, true); err != nil {
		return err
	}

	active, total := mcu.TIM2.Sample(4)
	fmt.Fprintf(w, "  measured %d/%d ticks active on PA5\n", active, total)
	return nil
}
