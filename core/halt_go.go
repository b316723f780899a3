//go:build !tinygo

package core

// Fatal stops the program on an unrecoverable startup fault.
// On the host this panics so tests and the simulator can observe it.
func Fatal(err error) {
	if err == nil {
		return
	}
	DebugPrintln("[FATAL] " + err.Error())
	DumpEvents()
	panic(err)
}
