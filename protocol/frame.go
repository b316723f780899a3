package protocol

// AppendFrame appends one frame carrying payload to dst
func AppendFrame(dst []byte, seq uint8, payload []byte) []byte {
	start := len(dst)
	dst = append(dst, uint8(len(payload)+MessageLengthMin), MessageDest|seq&MessageSeqMask)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, uint8(crc>>8), uint8(crc), MessageValueSync)
}

// Scanner pulls frames out of a byte stream, resynchronising on the sync
// byte after a corrupt or truncated frame.
type Scanner struct {
	buf          []byte
	limit        int
	synchronized bool
	dropped      int
}

// NewScanner creates a Scanner that buffers up to limit unconsumed bytes.
// It starts synchronized; a bad first frame makes it hunt for a sync byte.
func NewScanner(limit int) *Scanner {
	return &Scanner{limit: limit, synchronized: true}
}

// Write feeds received bytes. Bytes beyond the buffer limit are discarded
// and the scanner resynchronises.
func (s *Scanner) Write(data []byte) int {
	room := s.limit - len(s.buf)
	if room < len(data) {
		s.buf = s.buf[:0]
		s.desync()
		room = s.limit
	}
	if len(data) > room {
		data = data[len(data)-room:]
	}
	s.buf = append(s.buf, data...)
	return len(data)
}

// Dropped returns the number of frames discarded for bad length, sync or CRC
func (s *Scanner) Dropped() int {
	return s.dropped
}

// Next returns the next complete frame, or false when more data is needed
func (s *Scanner) Next() (*Message, bool) {
	data := s.buf
	defer func() {
		s.buf = append(s.buf[:0], data...)
	}()

	for len(data) > 0 {
		if !s.synchronized {
			i := indexSync(data)
			if i < 0 {
				data = data[:0]
				break
			}
			data = data[i+1:]
			s.synchronized = true
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			s.desync()
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			s.desync()
			continue
		}
		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 | uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			s.desync()
			continue
		}

		msg := &Message{
			Length:   data[MessagePositionLen],
			Sequence: data[MessagePositionSeq],
			Payload:  append([]byte(nil), data[MessageHeaderSize:msgLen-MessageTrailerSize]...),
			CRC:      frameCRC,
		}
		data = data[msgLen:]
		return msg, true
	}
	return nil, false
}

func indexSync(data []byte) int {
	for i, b := range data {
		if b == MessageValueSync {
			return i
		}
	}
	return -1
}

func (s *Scanner) desync() {
	s.synchronized = false
	s.dropped++
}
