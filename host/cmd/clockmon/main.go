package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli"

	"clockdriver/regs/sim"
)

func main() {
	app := cli.NewApp()
	app.Name = "clockmon"
	app.Description = "Boot report monitor and simulator for the STM32L053 clock driver"
	app.Usage = "clockmon <command> [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		level := slog.LevelInfo
		if c.GlobalBool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "listen",
			Usage: "Decode boot reports from a serial port",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "device",
					Usage: "Serial device path",
					Value: "/dev/ttyACM0",
				},
				cli.IntFlag{
					Name:  "baud",
					Usage: "Baud rate, must match the firmware's report_baud",
					Value: 115200,
				},
				cli.IntFlag{
					Name:  "count",
					Usage: "Stop after this many reports (0 = run until interrupted)",
				},
				cli.BoolFlag{
					Name:  "strict",
					Usage: "Fail on a report with inconsistent frequencies",
				},
			},
			Action: runListen,
		},
		{
			Name:      "decode",
			Usage:     "Decode boot reports from a captured file",
			ArgsUsage: "<capture file>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "strict",
					Usage: "Fail on a report with inconsistent frequencies",
				},
			},
			Action: runDecode,
		},
		{
			Name:  "simulate",
			Usage: "Run the boot sequence against the register simulator",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config",
					Usage: "Board configuration file (.json or .yaml)",
				},
				cli.IntFlag{
					Name:  "wait-limit",
					Usage: "Poll limit for every readiness wait (0 = config value)",
				},
				cli.IntFlag{
					Name:  "latency",
					Usage: "Polls a simulated ready flag lags its enable bit",
					Value: sim.DefaultLatency,
				},
				cli.StringSliceFlag{
					Name:  "stuck",
					Usage: "Readiness condition that never comes true (hsi, vos, pll, sws, tim2.uif, tim6.uif)",
				},
				cli.StringFlag{
					Name:  "capture",
					Usage: "Also write the raw USART2 bytes to this file",
				},
			},
			Action: runSimulate,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("clockmon failed", "error", err)
		os.Exit(1)
	}
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
