package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"clockdriver/host/monitor"
	"clockdriver/host/serial"
)

var errStop = errors.New("report limit reached")

func runListen(c *cli.Context) error {
	cfg := serial.DefaultConfig(c.String("device"))
	cfg.Baud = c.Int("baud")

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil {
		slog.Warn("Could not flush serial input", "error", err)
	}

	ctx, cancel := interruptContext()
	defer cancel()

	slog.Info("Listening for boot reports", "device", cfg.Device, "baud", cfg.Baud)
	m := monitor.New(port, slog.Default())
	m.Follow = true
	err = watch(ctx, m, os.Stdout, c.Int("count"), c.Bool("strict"))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runDecode(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowCommandHelp(c, "decode")
		return errors.New("no capture file provided")
	}
	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer f.Close()

	m := monitor.New(f, slog.Default())
	return watch(context.Background(), m, os.Stdout, 0, c.Bool("strict"))
}

// watch prints reports from m until the stream ends or count reports have
// been printed.
func watch(ctx context.Context, m *monitor.Monitor, w io.Writer, count int, strict bool) error {
	seen := 0
	err := m.Watch(ctx, func(r *monitor.Report) error {
		if err := monitor.Format(w, r); err != nil {
			return err
		}
		if strict {
			if err := monitor.Check(&r.BootReport); err != nil {
				return err
			}
		}
		seen++
		if count > 0 && seen >= count {
			return errStop
		}
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	if dropped := m.Dropped(); dropped > 0 {
		slog.Debug("Corrupt frames skipped", "count", dropped)
	}
	if err == nil && seen == 0 && count != 0 {
		return errors.New("stream ended before any report")
	}
	return err
}
