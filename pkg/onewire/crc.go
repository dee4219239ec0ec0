package onewire

// CRC8 computes the Dallas/Maxim CRC (reflected polynomial 0x8C).
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		for i := 0; i < 8; i++ {
			mix := (crc ^ b) & 0x01
			crc >>= 1
			if mix != 0 {
				crc ^= 0x8C
			}
			b >>= 1
		}
	}
	return crc
}

// CheckCRC tells whether data ending with its CRC byte is intact.
func CheckCRC(data []byte) bool {
	return CRC8(data) == 0
}
