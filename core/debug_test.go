package core

import (
	"strings"
	"testing"
)

func TestEventRingOrder(t *testing.T) {
	ClearEvents()
	RecordEvent(EvtHSIReady, 3, 16000000)
	RecordEvent(EvtRegulatorReady, 2, 1)
	RecordEvent(EvtPLLReady, 4, 0)

	events := Events()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].EventType != EvtHSIReady || events[2].EventType != EvtPLLReady {
		t.Errorf("Events out of order: %+v", events)
	}
}

func TestEventRingWraps(t *testing.T) {
	ClearEvents()
	for i := uint32(0); i < EventRingSize+4; i++ {
		RecordEvent(EvtDelayReady, i, i)
	}

	events := Events()
	if len(events) != EventRingSize {
		t.Fatalf("Expected %d events, got %d", EventRingSize, len(events))
	}
	if events[0].Polls != 4 {
		t.Errorf("Expected oldest surviving event to be 4, got %d", events[0].Polls)
	}

	last, ok := LastEvent(EvtDelayReady)
	if !ok || last.Polls != EventRingSize+3 {
		t.Errorf("Expected newest event %d, got %+v", EventRingSize+3, last)
	}
	if _, ok := LastEvent(EvtFault); ok {
		t.Error("No fault was recorded")
	}
}

func TestDebugPrintlnRespectsEnable(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	defer SetDebugEnabled(false)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")

	if len(lines) != 1 || lines[0] != "shown" {
		t.Errorf("Unexpected output %q", lines)
	}
	if !IsDebugEnabled() {
		t.Error("Debug should be enabled")
	}
}

func TestDumpEvents(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	ClearEvents()
	RecordEvent(EvtSysclkSwitched, 5, 3)
	DumpEvents()

	if len(lines) != 3 {
		t.Fatalf("Expected header, one event and footer, got %q", lines)
	}
	if !strings.Contains(lines[1], "SYSCLK_PLL polls=5 v=3") {
		t.Errorf("Unexpected event line %q", lines[1])
	}
}

func TestEventName(t *testing.T) {
	if EventName(EvtFault) != "FAULT!" {
		t.Errorf("Unexpected name %q", EventName(EvtFault))
	}
	if EventName(200) != "UNKNOWN" {
		t.Errorf("Unexpected name %q", EventName(200))
	}
}
