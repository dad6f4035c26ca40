package fit

import "github.com/sigurn/crc16"

// The FIT file CRC is CRC-16/ARC.
var crcARC = crc16.MakeTable(crc16.CRC16_ARC)

var crcTable = [16]uint16{
	0x0000, 0xCC01, 0xD801, 0x1400, 0xF001, 0x3C00, 0x2800, 0xE401,
	0xA001, 0x6C00, 0x7800, 0xB401, 0x5000, 0x9C01, 0x8801, 0x4400,
}

// CRCUpdate folds one byte into a running FIT CRC-16, low nibble first.
func CRCUpdate(crc uint16, b byte) uint16 {
	tmp := crcTable[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ crcTable[b&0xF]

	tmp = crcTable[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ crcTable[(b>>4)&0xF]
	return crc
}

// CRC16 computes the FIT CRC over buf[start:end].
func CRC16(buf []byte, start, end int) uint16 {
	return crc16.Checksum(buf[start:end], crcARC)
}
