package core

import "sync/atomic"

// Reset frequency: MSI range 5
const ResetCoreClock = 2097152

var coreClock uint32 = ResetCoreClock

// CoreClock returns the last published HCLK frequency in Hz
func CoreClock() uint32 {
	return atomic.LoadUint32(&coreClock)
}

// SetCoreClock publishes a new HCLK frequency. Called by the clock sequencer
// once the switch has completed.
func SetCoreClock(hz uint32) {
	atomic.StoreUint32(&coreClock, hz)
}
