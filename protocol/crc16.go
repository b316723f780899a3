package protocol

import "github.com/sigurn/crc16"

// Klipper's CRC is the reflected CCITT polynomial seeded with 0xFFFF and no
// final xor, i.e. CRC-16/MCRF4XX.
var crcTable = crc16.MakeTable(crc16.CRC16_MCRF4XX)

// CRC16 calculates the frame checksum over length, sequence and payload
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
