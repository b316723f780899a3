// Package config holds the board settings the boot sequence runs with.
// Firmware builds use Default; host tools can load a file on top of it.
package config

import (
	"errors"

	"clockdriver/core"
)

// Board is the board level configuration
type Board struct {
	// PWM output on TIM2 channel 1, in timer ticks
	PWMPeriod uint16 `json:"pwm_period" yaml:"pwm_period"`
	PWMPulse  uint16 `json:"pwm_pulse" yaml:"pwm_pulse"`

	// WaitLimit bounds every readiness wait; 0 spins forever
	WaitLimit uint32 `json:"wait_limit" yaml:"wait_limit"`

	// ReportBaud is the USART2 rate used for the boot report
	ReportBaud uint32 `json:"report_baud" yaml:"report_baud"`

	Debug bool `json:"debug" yaml:"debug"`
}

const (
	DefaultPWMPeriod  = 999
	DefaultPWMPulse   = 499
	DefaultReportBaud = 115200
)

var ErrBaud = errors.New("config: report baud rate out of range")

// Default returns the configuration the firmware boots with
func Default() Board {
	return Board{
		PWMPeriod:  DefaultPWMPeriod,
		PWMPulse:   DefaultPWMPulse,
		ReportBaud: DefaultReportBaud,
	}
}

// Wait returns the readiness wait policy
func (b Board) Wait() core.WaitPolicy {
	if b.WaitLimit == 0 {
		return core.Forever
	}
	return core.Bounded(b.WaitLimit)
}

// Validate checks values a zero default cannot repair
func (b Board) Validate() error {
	if b.ReportBaud < 1200 || b.ReportBaud > 4000000 {
		return ErrBaud
	}
	return nil
}

// applyDefaults fills in missing values. A zero pulse is a valid setting,
// so the pulse only defaults together with the period.
func applyDefaults(b *Board) {
	if b.PWMPeriod == 0 {
		b.PWMPeriod = DefaultPWMPeriod
		if b.PWMPulse == 0 {
			b.PWMPulse = DefaultPWMPulse
		}
	}
	if b.ReportBaud == 0 {
		b.ReportBaud = DefaultReportBaud
	}
}
