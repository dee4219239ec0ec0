package lin

import "fmt"

// PID is the protected identifier: 6 bits frame id and 2 parity bits.
type PID byte

// MaxFrameID is the largest frame id which fits in a PID.
const MaxFrameID byte = 0x3f

// NewPID builds the PID for a frame id. Only the low 6 bits of id are used.
func NewPID(id byte) PID {
	id &= MaxFrameID
	return PID(id | parity(id))
}

// ParsePID validates a PID byte received from the bus.
func ParsePID(b byte) (PID, error) {
	if pid := PID(b); pid.IsValid() {
		return pid, nil
	}
	return 0, ErrInvalidPID
}

// ID returns the frame id.
func (p PID) ID() byte {
	return byte(p) & MaxFrameID
}

// IsValid checks the parity bits.
func (p PID) IsValid() bool {
	return NewPID(p.ID()) == p
}

// String implements fmt.Stringer.
func (p PID) String() string {
	return fmt.Sprintf("%02x(%d)", byte(p), p.ID())
}

// parity computes bit 6 (P0) and bit 7 (P1) of a PID:
// P0 = ID0 ^ ID1 ^ ID2 ^ ID4, P1 = !(ID1 ^ ID3 ^ ID4 ^ ID5).
func parity(id byte) byte {
	bit := func(n uint) byte { return (id >> n) & 1 }
	p0 := bit(0) ^ bit(1) ^ bit(2) ^ bit(4)
	p1 := ^(bit(1) ^ bit(3) ^ bit(4) ^ bit(5)) & 1
	return p0<<6 | p1<<7
}
