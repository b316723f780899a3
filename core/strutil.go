package core

// Utoa converts an unsigned integer to a string
func Utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// Hz formats a frequency as "<n>Hz", "<n>kHz" or "<n>MHz" when it divides evenly
func Hz(f uint32) string {
	switch {
	case f != 0 && f%1000000 == 0:
		return Utoa(f/1000000) + "MHz"
	case f != 0 && f%1000 == 0:
		return Utoa(f/1000) + "kHz"
	default:
		return Utoa(f) + "Hz"
	}
}
