package lin

const (
	// BreakByte is how a break field arrives through a UART.
	BreakByte byte = 0x00
	// SyncByte is the sync field following the break.
	SyncByte byte = 0x55
	// MaxDataLen is the maximum payload of a frame.
	MaxDataLen = 8
)

// Frame is a PID with its payload.
type Frame struct {
	PID  PID
	Data []byte
}

// Checksum computes the checksum of PID and data: the inverted 8-bit sum
// with carries folded back into the low byte.
func Checksum(pid PID, data []byte) byte {
	sum := uint16(pid)
	for _, b := range data {
		sum += uint16(b)
		if sum > 0xff {
			sum -= 0xff
		}
	}
	return ^byte(sum)
}

// Checksum computes the checksum of the frame.
func (f *Frame) Checksum() byte {
	return Checksum(f.PID, f.Data)
}

// Verify validates a received checksum against the frame.
func (f *Frame) Verify(checksum byte) error {
	if expected := f.Checksum(); expected != checksum {
		return &ChecksumError{PID: f.PID, Expected: expected, Actual: checksum}
	}
	return nil
}

// Bytes returns the data followed by the checksum, which is what's
// transmitted after the header.
func (f *Frame) Bytes() []byte {
	b := make([]byte, len(f.Data)+1)
	copy(b, f.Data)
	b[len(f.Data)] = f.Checksum()
	return b
}

// Header returns the bytes sent by the master to start the frame.
func (f *Frame) Header() []byte {
	return []byte{BreakByte, SyncByte, byte(f.PID)}
}
