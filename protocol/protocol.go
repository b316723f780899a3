// Package protocol frames the boot report the firmware sends over USART2.
// Frames use the Klipper message block layout: a length byte, a sequence
// byte, a VLQ payload, a CRC16 and a trailing sync byte.
package protocol

// Version is the report format version, sent as the first payload field
const Version = 1

// Frame layout
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 96
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)

// Message is one decoded frame
type Message struct {
	Length   uint8
	Sequence uint8
	Payload  []byte // Frame data without header/trailer
	CRC      uint16
}
