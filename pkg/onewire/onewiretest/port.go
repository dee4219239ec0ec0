// Package onewiretest provides in-memory onewire.Port implementations
// for tests.
package onewiretest

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/robotalks/linnode/pkg/onewire"
)

// Loopback echoes every character written, as a bus without devices.
type Loopback struct {
	Bauds   []int
	Written []byte
	Err     error

	lock sync.Mutex
	rx   bytes.Buffer
}

// Read implements io.Reader.
func (l *Loopback) Read(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.Err != nil {
		return 0, l.Err
	}
	return l.rx.Read(p)
}

// Write implements io.Writer.
func (l *Loopback) Write(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.Err != nil {
		return 0, l.Err
	}
	l.Written = append(l.Written, p...)
	return l.rx.Write(p)
}

// SetBaudRate implements onewire.Port.
func (l *Loopback) SetBaudRate(baud int) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.Bauds = append(l.Bauds, baud)
	return nil
}

const (
	presenceChar byte = 0xE0
	pulledChar   byte = 0xF8
)

type deviceState int

const (
	stateIdle deviceState = iota
	stateROM
	stateFunction
)

// DS18B20 simulates a single DS18B20 on a UART driven bus at the level of
// time slots.
type DS18B20 struct {
	Scratchpad [9]byte
	Absent     bool
	// Err fails all port operations.
	Err error

	Conversions int
	Commands    []byte

	lock   sync.Mutex
	baud   int
	rx     bytes.Buffer
	state  deviceState
	cmd    byte
	cmdBit int
	tx     []byte
	txBit  int
}

// NewDS18B20 creates a device with the scratchpad whose CRC is filled.
func NewDS18B20(spad [8]byte) *DS18B20 {
	d := &DS18B20{}
	copy(d.Scratchpad[:], spad[:])
	d.Scratchpad[8] = onewire.CRC8(spad[:])
	return d
}

// SetBaudRate implements onewire.Port.
func (d *DS18B20) SetBaudRate(baud int) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.Err != nil {
		return d.Err
	}
	if baud != onewire.ResetBaudRate && baud != onewire.BaudRate {
		return fmt.Errorf("unsupported baud rate %d", baud)
	}
	d.baud = baud
	return nil
}

// Read implements io.Reader.
func (d *DS18B20) Read(p []byte) (int, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.Err != nil {
		return 0, d.Err
	}
	return d.rx.Read(p)
}

// Write implements io.Writer.
func (d *DS18B20) Write(p []byte) (int, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.Err != nil {
		return 0, d.Err
	}
	for _, c := range p {
		switch d.baud {
		case onewire.ResetBaudRate:
			d.reset(c)
		case onewire.BaudRate:
			d.slot(c)
		default:
			return 0, fmt.Errorf("baud rate not set")
		}
	}
	return len(p), nil
}

func (d *DS18B20) reset(c byte) {
	d.state, d.cmd, d.cmdBit, d.tx, d.txBit = stateROM, 0, 0, nil, 0
	if d.Absent {
		d.rx.WriteByte(c)
	} else {
		d.rx.WriteByte(presenceChar)
	}
}

func (d *DS18B20) slot(c byte) {
	if len(d.tx) > 0 {
		bit := d.tx[0] >> d.txBit & 1
		if d.txBit++; d.txBit == 8 {
			d.tx, d.txBit = d.tx[1:], 0
		}
		if c == 0xFF && bit == 0 {
			c = pulledChar
		}
		d.rx.WriteByte(c)
		return
	}
	d.rx.WriteByte(c)
	if c == 0xFF {
		d.cmd |= 1 << d.cmdBit
	}
	if d.cmdBit++; d.cmdBit < 8 {
		return
	}
	cmd := d.cmd
	d.cmd, d.cmdBit = 0, 0
	if d.Absent || d.state == stateIdle {
		return
	}
	d.Commands = append(d.Commands, cmd)
	switch {
	case d.state == stateROM && cmd == onewire.SkipROM:
		d.state = stateFunction
	case d.state == stateFunction && cmd == 0x44:
		d.Conversions++
		d.state = stateIdle
	case d.state == stateFunction && cmd == 0xBE:
		d.tx = append([]byte(nil), d.Scratchpad[:]...)
		d.state = stateIdle
	default:
		d.state = stateIdle
	}
}
