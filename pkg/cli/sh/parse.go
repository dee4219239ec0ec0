package sh

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/linnode/pkg/board"
)

// ParseInt parses an integer in decimal, or hex with 0x prefix, within
// [min, max].
func ParseInt(s string, min, max int) (int, error) {
	val, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	if val < int64(min) || val > int64(max) {
		return 0, fmt.Errorf("%d out of range %d-%d", val, min, max)
	}
	return int(val), nil
}

// ParseRGB parses "R G B" or a single "#rrggbb".
func ParseRGB(args []string) (c board.RGB, err error) {
	if len(args) == 1 && strings.HasPrefix(args[0], "#") {
		var data []byte
		if data, err = hex.DecodeString(args[0][1:]); err != nil || len(data) != 3 {
			return c, fmt.Errorf("invalid color %q", args[0])
		}
		return board.RGBFromBytes(data), nil
	}
	if len(args) != 3 {
		return c, fmt.Errorf("R G B required")
	}
	var v [3]byte
	for n, arg := range args {
		val, err := ParseInt(arg, 0, 0xff)
		if err != nil {
			return c, err
		}
		v[n] = byte(val)
	}
	return board.RGBFromBytes(v[:]), nil
}

// ParseLEDs parses a mask like 0x5, or the states like "1 0 1 0".
func ParseLEDs(args []string) (board.LEDs, error) {
	switch len(args) {
	case 1:
		mask, err := ParseInt(args[0], 0, 0x0f)
		if err != nil {
			return board.LEDs{}, err
		}
		return board.LEDsFromMask(byte(mask)), nil
	case 4:
		var leds board.LEDs
		for n, arg := range args {
			on, err := strconv.ParseBool(arg)
			if err != nil {
				return leds, err
			}
			leds[n] = on
		}
		return leds, nil
	}
	return board.LEDs{}, fmt.Errorf("MASK or 4 states required")
}

// ParseBytes parses bytes written as separate numbers or a hex string.
func ParseBytes(args []string) ([]byte, error) {
	if len(args) == 1 && len(args[0]) > 2 && !strings.HasPrefix(args[0], "0x") {
		return hex.DecodeString(args[0])
	}
	data := make([]byte, 0, len(args))
	for _, arg := range args {
		val, err := ParseInt(arg, 0, 0xff)
		if err != nil {
			return nil, err
		}
		data = append(data, byte(val))
	}
	return data, nil
}
