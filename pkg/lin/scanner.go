package lin

// ScanState is the state of header recognition.
type ScanState int

const (
	// ScanBreak waits for a break byte, anything else is skipped.
	ScanBreak ScanState = iota
	// ScanSync expects the sync byte right after the break.
	ScanSync
	// ScanPID expects the PID right after the sync byte.
	ScanPID
)

// String implements fmt.Stringer.
func (s ScanState) String() string {
	switch s {
	case ScanBreak:
		return "break"
	case ScanSync:
		return "sync"
	case ScanPID:
		return "pid"
	}
	return "unknown"
}

// ScanResult is the result after scanning one byte.
type ScanResult struct {
	// State is the scanner state after the byte.
	State ScanState
	// Header is set when a full header was received, PID is valid then.
	Header bool
	PID    PID
	// Err tells why a frame attempt is dropped, nil if not dropped.
	Err error
}

// Scanner recognizes the break/sync/PID header in a byte stream.
// The zero value is ready to use.
type Scanner struct {
	state ScanState
}

// State gets the current state.
func (s *Scanner) State() ScanState {
	return s.state
}

// Reset starts over waiting for a break.
func (s *Scanner) Reset() {
	s.state = ScanBreak
}

// Scan consumes one byte.
func (s *Scanner) Scan(b byte) (r ScanResult) {
	switch s.state {
	case ScanBreak:
		if b == BreakByte {
			s.state = ScanSync
		}
	case ScanSync:
		if b == SyncByte {
			s.state = ScanPID
		} else {
			s.state, r.Err = ScanBreak, ErrInvalidSync
		}
	case ScanPID:
		s.state = ScanBreak
		if pid, err := ParsePID(b); err != nil {
			r.Err = err
		} else {
			r.Header, r.PID = true, pid
		}
	}
	r.State = s.state
	return
}
