// Package onewire implements a One-Wire bus master on top of a UART.
//
// The UART generates the bus timing: a character at 9600 baud holding the
// line low long enough is the reset pulse, and at 115200 baud every
// character is one time slot. A slot transmitted as 0xFF is a 1 (or a read
// slot), 0x00 is a 0. A device answering 0 pulls the line low and the
// character read back is no longer 0xFF.
package onewire

import (
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"
)

const (
	// ResetBaudRate makes one bit last ~104us.
	ResetBaudRate = 9600
	// BaudRate makes one bit last ~8.7us.
	BaudRate = 115200

	// SkipROM addresses all devices on the bus.
	SkipROM byte = 0xCC

	resetChar  byte = 0xF0
	logic1Char byte = 0xFF
	logic0Char byte = 0x00
)

// Port is the UART underlying the bus.
type Port interface {
	io.Reader
	io.Writer
	SetBaudRate(baud int) error
}

// Bus is the One-Wire bus master.
type Bus struct {
	Port Port

	lock sync.Mutex
	buf  [8]byte
}

// New creates a Bus.
func New(port Port) *Bus {
	return &Bus{Port: port}
}

// Lock acquires exclusive use of the bus for a transaction.
func (b *Bus) Lock() {
	b.lock.Lock()
}

// Unlock releases the bus.
func (b *Bus) Unlock() {
	b.lock.Unlock()
}

// Reset sends the reset pulse and samples the presence pulse.
// A missing device is only reported by present being false.
// The port is back at BaudRate on return, also after a failure.
func (b *Bus) Reset() (present bool, err error) {
	if err = b.Port.SetBaudRate(ResetBaudRate); err != nil {
		return false, fmt.Errorf("onewire reset: %w", err)
	}
	defer func() {
		if baudErr := b.Port.SetBaudRate(BaudRate); baudErr != nil && err == nil {
			present, err = false, fmt.Errorf("onewire reset: %w", baudErr)
		}
	}()
	b.buf[0] = resetChar
	if _, err = b.Port.Write(b.buf[:1]); err != nil {
		return false, err
	}
	if _, err = io.ReadFull(b.Port, b.buf[:1]); err != nil {
		return false, err
	}
	present = IsPresence(b.buf[0])
	if !present {
		glog.Warningf("onewire: no device present (%02x)", b.buf[0])
	}
	return present, nil
}

// IsPresence tells whether the character read back during a reset pulse
// indicates a device pulled the line low.
func IsPresence(rx byte) bool {
	return rx&0x0F == 0 && rx&0xF0 != 0xF0
}

// WriteReadByte transmits v LSB first and returns the byte observed on the
// bus during the same slots.
func (b *Bus) WriteReadByte(v byte) (byte, error) {
	for i := range b.buf {
		if v&(1<<i) != 0 {
			b.buf[i] = logic1Char
		} else {
			b.buf[i] = logic0Char
		}
	}
	if _, err := b.Port.Write(b.buf[:]); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(b.Port, b.buf[:]); err != nil {
		return 0, err
	}
	var rx byte
	for i, c := range b.buf {
		if c == logic1Char {
			rx |= 1 << i
		}
	}
	return rx, nil
}

// WriteByte transmits v, ignoring the readback.
func (b *Bus) WriteByte(v byte) error {
	_, err := b.WriteReadByte(v)
	return err
}

// ReadByte generates 8 read slots.
func (b *Bus) ReadByte() (byte, error) {
	return b.WriteReadByte(logic1Char)
}

// Read fills p with bytes read from the bus.
func (b *Bus) Read(p []byte) (int, error) {
	for n := range p {
		v, err := b.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = v
	}
	return len(p), nil
}
