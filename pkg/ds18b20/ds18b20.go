// Package ds18b20 drives a single DS18B20 temperature sensor on a One-Wire bus.
package ds18b20

import (
	"context"
	"fmt"
	"time"

	"github.com/robotalks/linnode/pkg/onewire"
)

const (
	// CmdConvertT starts a temperature conversion.
	CmdConvertT byte = 0x44
	// CmdReadScratchpad reads the scratchpad containing the temperature.
	CmdReadScratchpad byte = 0xBE

	// DefaultConversionTime is the wait between starting a conversion and
	// reading the result. A 12-bit conversion takes up to 750ms.
	DefaultConversionTime = time.Second
)

// RawTemperature is the temperature in 1/16 degree Celsius.
type RawTemperature int16

// Celsius converts to degrees.
func (t RawTemperature) Celsius() float64 {
	return float64(t) / 16
}

func (t RawTemperature) String() string {
	return fmt.Sprintf("%.4fC", t.Celsius())
}

// Scratchpad is the memory read from the sensor, the last byte is the CRC.
type Scratchpad [9]byte

// Valid checks the CRC.
func (s *Scratchpad) Valid() bool {
	return onewire.CheckCRC(s[:])
}

// Raw decodes the temperature.
func (s *Scratchpad) Raw() RawTemperature {
	return RawTemperature(int16(s[1])<<8 | int16(s[0]))
}

// Resolution returns the configured conversion resolution in bits.
func (s *Scratchpad) Resolution() int {
	return 9 + int(s[4]>>5&0x03)
}

// ChecksumError is returned when the scratchpad is corrupted.
type ChecksumError struct {
	Scratchpad Scratchpad
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("ds18b20: scratchpad crc mismatch [% x]", e.Scratchpad[:])
}

// Sensor is the sensor driver, the only device on its bus.
type Sensor struct {
	Bus            *onewire.Bus
	ConversionTime time.Duration
	// Sleep waits for the conversion, defaults to a timer.
	Sleep func(context.Context, time.Duration) error
}

// New creates a Sensor.
func New(bus *onewire.Bus) *Sensor {
	return &Sensor{Bus: bus, ConversionTime: DefaultConversionTime}
}

// Start starts a conversion. The result is available after ConversionTime.
func (s *Sensor) Start() error {
	s.Bus.Lock()
	defer s.Bus.Unlock()
	return s.command(CmdConvertT)
}

// RawTemperature performs a conversion and reads the result.
// The bus is held for the whole sequence.
func (s *Sensor) RawTemperature(ctx context.Context) (RawTemperature, error) {
	s.Bus.Lock()
	defer s.Bus.Unlock()
	if err := s.command(CmdConvertT); err != nil {
		return 0, err
	}
	if err := s.sleep(ctx); err != nil {
		return 0, err
	}
	spad, err := s.readScratchpad()
	if err != nil {
		return 0, err
	}
	if !spad.Valid() {
		return 0, &ChecksumError{Scratchpad: spad}
	}
	return spad.Raw(), nil
}

// ReadScratchpad reads the scratchpad without starting a conversion and
// without validation.
func (s *Sensor) ReadScratchpad() (Scratchpad, error) {
	s.Bus.Lock()
	defer s.Bus.Unlock()
	return s.readScratchpad()
}

func (s *Sensor) readScratchpad() (spad Scratchpad, err error) {
	if err = s.command(CmdReadScratchpad); err != nil {
		return
	}
	_, err = s.Bus.Read(spad[:])
	return
}

func (s *Sensor) command(cmd byte) error {
	if _, err := s.Bus.Reset(); err != nil {
		return err
	}
	if err := s.Bus.WriteByte(onewire.SkipROM); err != nil {
		return err
	}
	return s.Bus.WriteByte(cmd)
}

func (s *Sensor) sleep(ctx context.Context) error {
	d := s.ConversionTime
	if d <= 0 {
		d = DefaultConversionTime
	}
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
