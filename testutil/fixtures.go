package testutil

// ShortActivityFIT is a single fileId message: type activity, manufacturer
// garmin, timeCreated 1000000000 and productName "abcdefghi".
func ShortActivityFIT() []byte {
	return []byte{
		0x0E, 0x20, 0x8B, 0x08, 0x24, 0x00, 0x00, 0x00, 0x2E, 0x46, 0x49, 0x54,
		0x8E, 0xA3, 0x40, 0x00, 0x00, 0x00, 0x00, 0x04, 0x00, 0x01, 0x00, 0x01,
		0x02, 0x84, 0x04, 0x04, 0x86, 0x08, 0x0A, 0x07, 0x00, 0x04, 0x01, 0x00,
		0x00, 0xCA, 0x9A, 0x3B, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
		0x69, 0x00, 0x5D, 0xF2,
	}
}

// RecordsFIT holds a fileId (activity, garmin, timeCreated 1000000000) and
// three records one second apart with heartRate 120, 150, 170 and cadence
// 80, 90 and invalid.
func RecordsFIT() []byte {
	return []byte{
		0x0E, 0x20, 0x7B, 0x08, 0x3B, 0x00, 0x00, 0x00, 0x2E, 0x46, 0x49, 0x54,
		0xCA, 0x2C, 0x40, 0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0x01, 0x00, 0x01,
		0x02, 0x84, 0x04, 0x04, 0x86, 0x00, 0x04, 0x01, 0x00, 0x00, 0xCA, 0x9A,
		0x3B, 0x41, 0x00, 0x00, 0x14, 0x00, 0x03, 0xFD, 0x04, 0x86, 0x03, 0x01,
		0x02, 0x04, 0x01, 0x02, 0x01, 0x00, 0xCA, 0x9A, 0x3B, 0x78, 0x50, 0x01,
		0x01, 0xCA, 0x9A, 0x3B, 0x96, 0x5A, 0x01, 0x02, 0xCA, 0x9A, 0x3B, 0xAA,
		0xFF, 0x5E, 0xC8,
	}
}

// Corrupt returns a copy of data with the trailing CRC flipped.
func Corrupt(data []byte) []byte {
	out := append([]byte(nil), data...)
	out[len(out)-1] ^= 0xFF
	return out
}
