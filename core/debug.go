package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// BootEvent captures one completed startup step for post-mortem analysis
type BootEvent struct {
	EventType uint8  // Event type code
	Polls     uint32 // Status polls spent waiting for the step
	Value     uint32 // Context-dependent value
}

// Event type codes
const (
	EvtHSIReady       = 1  // HSI16 ready flag observed
	EvtRegulatorReady = 2  // Voltage regulator settled
	EvtFlashLatency   = 3  // Flash wait state and read options set
	EvtPrescalers     = 4  // AHB/APB1/APB2 dividers programmed
	EvtPLLConfigured  = 5  // PLL source/multiplier/divider programmed
	EvtPLLReady       = 6  // PLL lock observed
	EvtSysclkSwitched = 7  // SWS reports the requested source
	EvtCoreClock      = 8  // Core clock tracker updated
	EvtDelayReady     = 9  // Delay timer first update observed
	EvtPWMReady       = 10 // PWM timer forced update observed
	EvtFault          = 11 // Wait policy gave up
)

const (
	EventRingSize = 16 // Enough for one full boot plus a fault
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	eventRing     [EventRingSize]BootEvent
	eventRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, semihosting, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a boot event in the ring buffer.
// It never blocks and never allocates.
func RecordEvent(eventType uint8, polls, value uint32) {
	idx := eventRingHead
	eventRing[idx] = BootEvent{
		EventType: eventType,
		Polls:     polls,
		Value:     value,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events from oldest to newest
func Events() []BootEvent {
	out := make([]BootEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// LastEvent returns the most recent event of eventType
func LastEvent(eventType uint8) (BootEvent, bool) {
	for i := uint8(1); i <= EventRingSize; i++ {
		evt := eventRing[(eventRingHead+EventRingSize-i)%EventRingSize]
		if evt.EventType == eventType {
			return evt, true
		}
	}
	return BootEvent{}, false
}

// EventName returns a printable name for an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtHSIReady:
		return "HSI_READY"
	case EvtRegulatorReady:
		return "VOS_READY"
	case EvtFlashLatency:
		return "FLASH_ACR"
	case EvtPrescalers:
		return "PRESCALERS"
	case EvtPLLConfigured:
		return "PLL_CONFIG"
	case EvtPLLReady:
		return "PLL_READY"
	case EvtSysclkSwitched:
		return "SYSCLK_PLL"
	case EvtCoreClock:
		return "CORE_CLOCK"
	case EvtDelayReady:
		return "DELAY_READY"
	case EvtPWMReady:
		return "PWM_READY"
	case EvtFault:
		return "FAULT!"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents outputs the event ring (call after boot or on a fault)
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[BOOT] === Event Dump ===")
	for _, evt := range Events() {
		debugPrintln("[BOOT] " + EventName(evt.EventType) +
			" polls=" + Utoa(evt.Polls) +
			" v=" + Utoa(evt.Value))
	}
	debugPrintln("[BOOT] === End Dump ===")
}

// ClearEvents clears the event ring
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = BootEvent{}
	}
	eventRingHead = 0
}
