// Package monitor decodes boot reports from a byte stream, typically the
// serial port the board reports on.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"clockdriver/protocol"
)

// Report is one decoded boot report with its frame sequence number
type Report struct {
	Seq uint8
	protocol.BootReport
}

// Monitor reads frames from r
type Monitor struct {
	r       io.Reader
	scanner *protocol.Scanner
	buf     []byte

	// Follow keeps reading after io.EOF, as a serial port with a read
	// timeout reports an empty read.
	Follow bool
	// Idle is the pause after an empty read in Follow mode
	Idle time.Duration

	log *slog.Logger
}

// New creates a Monitor on r
func New(r io.Reader, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		r:       r,
		scanner: protocol.NewScanner(4 * protocol.MessageLengthMax),
		buf:     make([]byte, protocol.MessageLengthMax),
		Idle:    10 * time.Millisecond,
		log:     log,
	}
}

// Next blocks until a boot report arrives. Frames with other message IDs
// are logged and skipped. It returns io.EOF at the end of the stream unless
// Follow is set, and ctx.Err() once ctx is done.
func (m *Monitor) Next(ctx context.Context) (*Report, error) {
	for {
		for {
			msg, ok := m.scanner.Next()
			if !ok {
				break
			}
			r, err := protocol.DecodeBootReport(msg.Payload)
			if err != nil {
				m.log.Warn("Skipping frame", "seq", msg.Sequence&protocol.MessageSeqMask, "error", err)
				continue
			}
			return &Report{Seq: msg.Sequence & protocol.MessageSeqMask, BootReport: *r}, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := m.r.Read(m.buf)
		if n > 0 {
			m.scanner.Write(m.buf[:n])
			continue
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF) && m.Follow:
			time.Sleep(m.Idle)
		default:
			return nil, err
		}
	}
}

// Dropped returns the number of corrupt frames seen so far
func (m *Monitor) Dropped() int {
	return m.scanner.Dropped()
}

// Watch calls fn for every report until the stream ends, ctx is done or fn
// returns an error. The end of the stream is not an error.
func (m *Monitor) Watch(ctx context.Context, fn func(*Report) error) error {
	for {
		r, err := m.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return fmt.Errorf("report %d: %w", r.Seq, err)
		}
	}
}
