// Package serial opens the port the board's USART2 report arrives on.
// On a Nucleo that is the ST-LINK virtual COM port.
package serial

import (
	"io"
)

// Port is a serial connection. Tests substitute any io.ReadCloser.
type Port interface {
	io.ReadWriteCloser

	// Flush discards data received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud must match config.Board.ReportBaud on the firmware side
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the settings the firmware reports with by default
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 200,
	}
}
