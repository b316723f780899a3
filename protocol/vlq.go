package protocol

import "errors"

var (
	ErrInvalidVLQ     = errors.New("invalid VLQ encoding")
	ErrBufferTooSmall = errors.New("buffer too small for VLQ")
)

// AppendVLQ appends v in Klipper's variable length encoding: big-endian
// 7-bit groups with 0x80 as continuation bit. The first group carries the
// sign in bits 5-6, so small negative numbers stay short.
func AppendVLQ(dst []byte, v int32) []byte {
	for _, shift := range [...]uint{28, 21, 14, 7} {
		lim := int32(1) << (shift - 2)
		if v < -lim || v >= 3*lim {
			dst = append(dst, byte(v>>shift)&0x7F|0x80)
		}
	}
	return append(dst, byte(v)&0x7F)
}

// AppendVLQUint appends an unsigned value; values above MaxInt32 take five bytes
func AppendVLQUint(dst []byte, v uint32) []byte {
	return AppendVLQ(dst, int32(v))
}

// ReadVLQ decodes one value from the front of data and returns the rest
func ReadVLQ(data []byte) (int32, []byte, error) {
	if len(data) == 0 {
		return 0, data, ErrBufferTooSmall
	}
	c := uint32(data[0])
	data = data[1:]

	v := c & 0x7F
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	for n := 1; c&0x80 != 0; n++ {
		if n == 5 {
			return 0, data, ErrInvalidVLQ
		}
		if len(data) == 0 {
			return 0, data, ErrBufferTooSmall
		}
		c = uint32(data[0])
		data = data[1:]
		v = v<<7 | c&0x7F
	}
	return int32(v), data, nil
}

// vlqReader decodes a sequence of values, keeping the first error
type vlqReader struct {
	data []byte
	err  error
}

func (r *vlqReader) uint() uint32 {
	if r.err != nil {
		return 0
	}
	v, rest, err := ReadVLQ(r.data)
	r.data, r.err = rest, err
	return uint32(v)
}
