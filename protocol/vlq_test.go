package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVLQKnownEncodings(t *testing.T) {
	testCases := []struct {
		value int32
		want  []byte
	}{
		{0, []byte{0x00}},
		{95, []byte{0x5F}},
		{96, []byte{0x80, 0x60}},
		{-1, []byte{0x7F}},
		{-32, []byte{0x60}},
		{-33, []byte{0xFF, 0x5F}},
		{1000, []byte{0x87, 0x68}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, AppendVLQ(nil, tc.value), "encoding %d", tc.value)
	}
}

func TestVLQRoundTripClockValues(t *testing.T) {
	for _, v := range []uint32{0, 1, 999, 65535, 2097152, 16000000, 32000000, 0x7FFFFFFF, 0x80000000, 0xFFFFFFFF} {
		encoded := AppendVLQUint(nil, v)
		assert.LessOrEqual(t, len(encoded), 5)

		got, rest, err := ReadVLQ(encoded)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, v, uint32(got))
	}
}

func TestVLQMegahertzTakesFourBytes(t *testing.T) {
	assert.Len(t, AppendVLQUint(nil, 32000000), 4)
}

func TestVLQBufferTooSmall(t *testing.T) {
	// Continuation byte but no following byte
	_, _, err := ReadVLQ([]byte{0x80})
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	_, _, err = ReadVLQ(nil)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestVLQTooLong(t *testing.T) {
	_, _, err := ReadVLQ([]byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01})
	assert.ErrorIs(t, err, ErrInvalidVLQ)
}

func TestVLQReaderKeepsFirstError(t *testing.T) {
	rd := &vlqReader{data: []byte{0x05, 0x80}}
	assert.Equal(t, uint32(5), rd.uint())
	assert.Equal(t, uint32(0), rd.uint())
	assert.ErrorIs(t, rd.err, ErrBufferTooSmall)
	assert.Equal(t, uint32(0), rd.uint())
}
