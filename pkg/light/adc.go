// Package light drives the light sensor and the lights of a board.
package light

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ADC reads an analog input.
type ADC interface {
	Millivolts() (uint16, error)
}

// SysfsADC reads a channel of a Linux IIO device.
type SysfsADC struct {
	RawPath   string
	ScalePath string

	scale float64
}

// NewSysfsADC creates a SysfsADC on channel of the IIO device directory,
// e.g. /sys/bus/iio/devices/iio:device0. The per channel scale is preferred
// over the shared one.
func NewSysfsADC(dir string, channel int) *SysfsADC {
	a := &SysfsADC{
		RawPath:   filepath.Join(dir, fmt.Sprintf("in_voltage%d_raw", channel)),
		ScalePath: filepath.Join(dir, fmt.Sprintf("in_voltage%d_scale", channel)),
	}
	if _, err := os.Stat(a.ScalePath); err != nil {
		a.ScalePath = filepath.Join(dir, "in_voltage_scale")
	}
	return a
}

// Millivolts implements ADC.
func (a *SysfsADC) Millivolts() (uint16, error) {
	if a.scale == 0 {
		scale, err := readFloat(a.ScalePath)
		if err != nil {
			return 0, err
		}
		a.scale = scale
	}
	raw, err := readFloat(a.RawPath)
	if err != nil {
		return 0, err
	}
	mv := math.Round(raw * a.scale)
	if mv < 0 || mv > math.MaxUint16 {
		return 0, fmt.Errorf("%s: %v mV out of range", a.RawPath, mv)
	}
	return uint16(mv), nil
}

func readFloat(fn string) (float64, error) {
	content, err := os.ReadFile(fn)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(content)), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	return v, nil
}
