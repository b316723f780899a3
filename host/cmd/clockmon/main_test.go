package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockdriver/config"
	"clockdriver/core"
	"clockdriver/host/monitor"
	"clockdriver/regs/sim"
)

func TestSimulateDefault(t *testing.T) {
	defer core.SetCoreClock(core.ResetCoreClock)

	var out bytes.Buffer
	capture := filepath.Join(t.TempDir(), "tx.bin")
	err := simulate(&out, simOptions{
		board:   config.Default(),
		latency: sim.DefaultLatency,
		capture: capture,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "sysclk   32.000 MHz")
	assert.Contains(t, out.String(), "pwm      16000 Hz")
	assert.Contains(t, out.String(), "measured 1996/4000 ticks active")

	data, err := os.ReadFile(capture)
	require.NoError(t, err)
	var decoded bytes.Buffer
	m := monitor.New(bytes.NewReader(data), slog.Default())
	require.NoError(t, watch(context.Background(), m, &decoded, 0, true))
	assert.Contains(t, decoded.String(), "boot report #0")
}

func TestSimulateStuckSite(t *testing.T) {
	var out bytes.Buffer
	err := simulate(&out, simOptions{
		board:   config.Default(),
		latency: sim.DefaultLatency,
		stuck:   []string{sim.StuckPLL},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotReady)
	assert.Contains(t, err.Error(), core.SitePLL)
	assert.Empty(t, out.String())
}

func TestWatchEmptyStream(t *testing.T) {
	m := monitor.New(bytes.NewReader(nil), slog.Default())
	assert.Error(t, watch(context.Background(), m, &bytes.Buffer{}, 1, false))
	assert.NoError(t, watch(context.Background(), m, &bytes.Buffer{}, 0, false))
}
