package sh

import (
	"time"

	"github.com/robotalks/linnode/pkg/serial"
)

// DefaultTimeout bounds the wait for each byte of a response. A frame of
// 9 bytes takes under 5ms at 19200 baud.
const DefaultTimeout = 100 * time.Millisecond

// OpenBus opens the serial device of a LIN bus for the master side.
// Reads fail after timeout so a request nobody answers returns an error,
// zero waits forever.
func OpenBus(device string, baud int, timeout time.Duration) (*serial.Port, error) {
	return serial.Open(serial.Config{Device: device, BaudRate: baud, ReadTimeout: timeout})
}
