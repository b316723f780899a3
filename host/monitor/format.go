package monitor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"clockdriver/protocol"
)

// Limits of the STM32L053 in voltage range 1
const (
	MaxSysclk = 32000000
)

var (
	ErrCoreClock = errors.New("core clock does not match HCLK")
	ErrSysclk    = errors.New("system clock above 32 MHz")
	ErrBusClock  = errors.New("bus clock faster than its parent")
	ErrTimClock  = errors.New("timer clock is neither PCLK nor 2×PCLK")
)

// Check verifies that the frequencies in r are consistent with each other
func Check(r *protocol.BootReport) error {
	var errs []error
	if r.CoreClock != r.HCLK {
		errs = append(errs, ErrCoreClock)
	}
	if r.SYSCLK > MaxSysclk {
		errs = append(errs, ErrSysclk)
	}
	if r.HCLK > r.SYSCLK || r.PCLK1 > r.HCLK || r.PCLK2 > r.HCLK {
		errs = append(errs, ErrBusClock)
	}
	if !timerClockOK(r.TIMPCLK1, r.PCLK1, r.HCLK) || !timerClockOK(r.TIMPCLK2, r.PCLK2, r.HCLK) {
		errs = append(errs, ErrTimClock)
	}
	return errors.Join(errs...)
}

func timerClockOK(tim, pclk, hclk uint32) bool {
	if pclk == hclk {
		return tim == pclk
	}
	return tim == 2*pclk
}

// PWMFrequency returns the output frequency of the PWM channel in r
func PWMFrequency(r *protocol.BootReport) uint32 {
	return r.TIMPCLK1 / (uint32(r.PWMPeriod) + 1)
}

// Format writes a human readable rendering of r to w
func Format(w io.Writer, r *Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "boot report #%d\n", r.Seq)
	fmt.Fprintf(&b, "  sysclk   %s\n", mhz(r.SYSCLK))
	fmt.Fprintf(&b, "  hclk     %s (core clock %s)\n", mhz(r.HCLK), mhz(r.CoreClock))
	fmt.Fprintf(&b, "  pclk1    %s (timers %s)\n", mhz(r.PCLK1), mhz(r.TIMPCLK1))
	fmt.Fprintf(&b, "  pclk2    %s (timers %s)\n", mhz(r.PCLK2), mhz(r.TIMPCLK2))

	duty := 100.0
	if r.PWMPulse <= r.PWMPeriod {
		duty = float64(r.PWMPulse) * 100 / (float64(r.PWMPeriod) + 1)
	}
	fmt.Fprintf(&b, "  pwm      %d Hz, %.1f%% (period %d, pulse %d)\n",
		PWMFrequency(&r.BootReport), duty, r.PWMPeriod, r.PWMPulse)

	for _, s := range r.Sites {
		fmt.Fprintf(&b, "  wait     %-14s %d polls\n", protocol.SiteName(s.Site), s.Polls)
	}
	if err := Check(&r.BootReport); err != nil {
		fmt.Fprintf(&b, "  WARNING  %s\n", strings.ReplaceAll(err.Error(), "\n", "; "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func mhz(hz uint32) string {
	return fmt.Sprintf("%.3f MHz", float64(hz)/1e6)
}
