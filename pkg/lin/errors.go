package lin

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSync indicates the byte after a break is not the sync byte.
	ErrInvalidSync = errors.New("invalid sync")
	// ErrInvalidPID indicates parity bits of a PID mismatch its id bits.
	ErrInvalidPID = errors.New("invalid PID")
	// ErrDataLength indicates a frame carries more than MaxDataLen bytes.
	ErrDataLength = errors.New("invalid data length")
)

// ChecksumError is reported when the checksum of a received frame mismatches.
type ChecksumError struct {
	PID      PID
	Expected byte
	Actual   byte
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("frame %d checksum mismatch: expect %02x, got %02x", e.PID.ID(), e.Expected, e.Actual)
}
