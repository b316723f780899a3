// Package regs describes the STM32L0x3 peripheral registers used by the clock
// and timer drivers.
//
// Every register is reached through the Register interface so the same driver
// code runs against real MMIO (TinyGo, see mmio_tinygo.go) and against the
// host simulator in regs/sim.
package regs

// Register is a single 32-bit memory-mapped register.
// *volatile.Register32 satisfies it.
type Register interface {
	Get() uint32
	Set(value uint32)
}

// SetBits performs r |= mask
func SetBits(r Register, mask uint32) {
	r.Set(r.Get() | mask)
}

// ClearBits performs r &^= mask
func ClearBits(r Register, mask uint32) {
	r.Set(r.Get() &^ mask)
}

// HasBits reports whether every bit in mask is set
func HasBits(r Register, mask uint32) bool {
	return r.Get()&mask == mask
}

// ReplaceBits replaces the bits selected by mask (already shifted by pos)
// with value<<pos, leaving the other bits untouched.
func ReplaceBits(r Register, value, mask uint32, pos uint8) {
	r.Set(r.Get()&^mask | (value<<pos)&mask)
}

// Field is a bitfield inside a register
type Field struct {
	Pos   uint8
	Width uint8
}

// Mask returns the in-place mask of the field
func (f Field) Mask() uint32 {
	return ((1 << f.Width) - 1) << f.Pos
}

// Get extracts the field value from r
func (f Field) Get(r Register) uint32 {
	return (r.Get() & f.Mask()) >> f.Pos
}

// Set writes v into the field with a read-modify-write of r
func (f Field) Set(r Register, v uint32) {
	ReplaceBits(r, v, f.Mask(), f.Pos)
}

// Gate is a single clock-enable bit owned by one driver.
// Drivers receive a Gate instead of the whole RCC block.
type Gate struct {
	Reg  Register
	Mask uint32
}

// Enable sets the gate bit
func (g Gate) Enable() {
	SetBits(g.Reg, g.Mask)
}

// Enabled reports whether the gate bit is set
func (g Gate) Enabled() bool {
	return HasBits(g.Reg, g.Mask)
}
