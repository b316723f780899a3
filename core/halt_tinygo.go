//go:build tinygo

package core

// Fatal stops the program on an unrecoverable startup fault.
// On the device it reports once and spins: the board never finishes booting.
func Fatal(err error) {
	if err == nil {
		return
	}
	DebugPrintln("[FATAL] " + err.Error())
	DumpEvents()
	for {
	}
}
