package light

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/linnode/pkg/board"
)

// ColorLamp is the RGB light.
type ColorLamp interface {
	SetColor(board.RGB) error
}

// IndicatorLamp is the set of indicator lights.
type IndicatorLamp interface {
	SetIndicators(board.LEDs) error
}

// LogLamp only logs and remembers the states.
type LogLamp struct {
	lock       sync.Mutex
	color      board.RGB
	indicators board.LEDs
}

// SetColor implements ColorLamp.
func (l *LogLamp) SetColor(c board.RGB) error {
	l.lock.Lock()
	l.color = c
	l.lock.Unlock()
	glog.Infof("lamp: color %s", c)
	return nil
}

// SetIndicators implements IndicatorLamp.
func (l *LogLamp) SetIndicators(leds board.LEDs) error {
	l.lock.Lock()
	l.indicators = leds
	l.lock.Unlock()
	glog.Infof("lamp: indicators %s", leds)
	return nil
}

// State returns the states last set.
func (l *LogLamp) State() (board.RGB, board.LEDs) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.color, l.indicators
}

// SysfsLamp drives lights exposed as Linux LED class devices, e.g.
// /sys/class/leds/<name>. Color channels take the brightness as is.
type SysfsLamp struct {
	Color      [3]string
	Indicators [4]string
}

// SetColor implements ColorLamp.
func (l *SysfsLamp) SetColor(c board.RGB) error {
	for n, v := range []byte{c.R, c.G, c.B} {
		if err := setBrightness(l.Color[n], int(v)); err != nil {
			return err
		}
	}
	return nil
}

// SetIndicators implements IndicatorLamp.
func (l *SysfsLamp) SetIndicators(leds board.LEDs) error {
	for n, on := range leds {
		v := 0
		if on {
			v = 1
		}
		if err := setBrightness(l.Indicators[n], v); err != nil {
			return err
		}
	}
	return nil
}

func setBrightness(dir string, v int) error {
	if dir == "" {
		return nil
	}
	return os.WriteFile(filepath.Join(dir, "brightness"), []byte(strconv.Itoa(v)), 0644)
}
