package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockdriver/protocol"
)

func sampleReport() protocol.BootReport {
	return protocol.BootReport{
		SYSCLK:    32000000,
		HCLK:      32000000,
		PCLK1:     8000000,
		PCLK2:     16000000,
		TIMPCLK1:  16000000,
		TIMPCLK2:  32000000,
		CoreClock: 32000000,
		PWMPeriod: 999,
		PWMPulse:  499,
		Sites: []protocol.SitePolls{
			{Site: protocol.SiteHSI, Polls: 3},
			{Site: protocol.SiteDelayUIF, Polls: 65535},
		},
	}
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chunkReader hands out one chunk per Read; a nil chunk reads as io.EOF
type chunkReader struct {
	chunks [][]byte
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	chunk := c.chunks[0]
	if chunk == nil {
		c.chunks = c.chunks[1:]
		return 0, io.EOF
	}
	n := copy(p, chunk)
	if n == len(chunk) {
		c.chunks = c.chunks[1:]
	} else {
		c.chunks[0] = chunk[n:]
	}
	return n, nil
}

func TestNextDecodesReports(t *testing.T) {
	want := sampleReport()
	var stream []byte
	stream = append(stream, "[CLOCK] sysclk=32MHz\r\n"...)
	stream = append(stream, protocol.MessageValueSync)
	stream = protocol.AppendBootReport(stream, 0, &want)
	stream = protocol.AppendFrame(stream, 1, []byte{0x05})
	stream = protocol.AppendBootReport(stream, 2, &want)

	m := New(bytes.NewReader(stream), quiet())
	ctx := context.Background()

	first, err := m.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), first.Seq)
	assert.Equal(t, want, first.BootReport)

	second, err := m.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), second.Seq)

	_, err = m.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, m.Dropped())
}

func TestWatchStopsAtEndOfStream(t *testing.T) {
	r := sampleReport()
	var stream []byte
	for seq := uint8(0); seq < 3; seq++ {
		stream = protocol.AppendBootReport(stream, seq, &r)
	}

	var seqs []uint8
	m := New(bytes.NewReader(stream), quiet())
	err := m.Watch(context.Background(), func(r *Report) error {
		seqs = append(seqs, r.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1, 2}, seqs)
}

func TestWatchStopsOnCallbackError(t *testing.T) {
	r := sampleReport()
	stream := protocol.AppendBootReport(nil, 4, &r)
	stop := errors.New("stop")

	m := New(bytes.NewReader(stream), quiet())
	err := m.Watch(context.Background(), func(*Report) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.ErrorContains(t, err, "report 4")
}

func TestFollowWaitsForData(t *testing.T) {
	r := sampleReport()
	frame := protocol.AppendBootReport(nil, 0, &r)
	src := &chunkReader{chunks: [][]byte{nil, frame[:10], nil, frame[10:]}}

	m := New(src, quiet())
	m.Follow = true
	m.Idle = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got, err := m.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.SYSCLK, got.SYSCLK)

	cancel()
	_, err = m.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadErrorIsReturned(t *testing.T) {
	boom := errors.New("unplugged")
	m := New(io.MultiReader(strings.NewReader("xx"), &failReader{boom}), quiet())
	m.Follow = true

	_, err := m.Next(context.Background())
	assert.ErrorIs(t, err, boom)
}

type failReader struct{ err error }

func (f *failReader) Read([]byte) (int, error) { return 0, f.err }

func TestCheck(t *testing.T) {
	r := sampleReport()
	assert.NoError(t, Check(&r))

	bad := r
	bad.CoreClock = 2097152
	assert.ErrorIs(t, Check(&bad), ErrCoreClock)

	bad = r
	bad.TIMPCLK1 = bad.PCLK1
	assert.ErrorIs(t, Check(&bad), ErrTimClock)

	bad = r
	bad.SYSCLK = 48000000
	bad.PCLK2 = 64000000
	err := Check(&bad)
	assert.ErrorIs(t, err, ErrSysclk)
	assert.ErrorIs(t, err, ErrBusClock)
}

func TestFormat(t *testing.T) {
	r := &Report{Seq: 3, BootReport: sampleReport()}
	var b strings.Builder
	require.NoError(t, Format(&b, r))

	out := b.String()
	assert.Contains(t, out, "boot report #3")
	assert.Contains(t, out, "sysclk   32.000 MHz")
	assert.Contains(t, out, "pwm      16000 Hz, 49.9% (period 999, pulse 499)")
	assert.Contains(t, out, "tim6_update")
	assert.NotContains(t, out, "WARNING")

	r.CoreClock = 0
	b.Reset()
	require.NoError(t, Format(&b, r))
	assert.Contains(t, b.String(), "WARNING")
}
