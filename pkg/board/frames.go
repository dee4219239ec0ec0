// Package board maps the LIN frames of an evaluation board to its signals.
//
// Up to 8 boards share a bus. Each board owns FramesPerBoard consecutive
// frame ids starting at boardID*FramesPerBoard:
//
//	local id  direction  size  content
//	0         command    3     RGB color
//	1         command    1     indicator mask, bits 0-3
//	2         response   2     light sensor, millivolts, little endian
//	3         response   2     temperature, 1/16 degree, little endian
package board

import (
	"fmt"
	"strings"
)

// FramesPerBoard is the number of frame ids reserved per board.
const FramesPerBoard = 5

// Local frame ids.
const (
	FrameRGB byte = iota
	FrameLEDs
	FrameLight
	FrameTemperature
)

// Frame sizes.
const (
	RGBSize         = 3
	LEDsSize        = 1
	LightSize       = 2
	TemperatureSize = 2
)

// LocalFrameID translates a bus frame id to the board local one.
// It returns false if the frame id is below the range of the board.
func LocalFrameID(boardID, frameID byte) (byte, bool) {
	offset := int(boardID) * FramesPerBoard
	if int(frameID) < offset {
		return 0, false
	}
	return byte(int(frameID) - offset), true
}

// FrameID translates a board local frame id to the bus frame id.
func FrameID(boardID, localID byte) byte {
	return boardID*FramesPerBoard + localID
}

// AddressFromPins computes the board id from the address pins.
// The pins are pulled up, a pin read high sets its bit.
func AddressFromPins(p2, p1, p0 bool) byte {
	var id byte
	for _, p := range []bool{p2, p1, p0} {
		id <<= 1
		if p {
			id |= 1
		}
	}
	return id
}

// ParsePins parses pin levels written as "p2p1p0", e.g. "101".
func ParsePins(s string) (byte, error) {
	if len(s) != 3 || strings.Trim(s, "01") != "" {
		return 0, fmt.Errorf("invalid address pins %q", s)
	}
	return AddressFromPins(s[0] == '1', s[1] == '1', s[2] == '1'), nil
}

// RGB is the color of the RGB light.
type RGB struct {
	R, G, B byte
}

// RGBFromBytes decodes the RGB frame.
func RGBFromBytes(data []byte) RGB {
	return RGB{R: data[0], G: data[1], B: data[2]}
}

// Bytes encodes the RGB frame.
func (c RGB) Bytes() []byte {
	return []byte{c.R, c.G, c.B}
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// LEDs are the states of the indicator lights.
type LEDs [4]bool

// LEDsFromMask decodes the LEDs frame.
func LEDsFromMask(mask byte) (l LEDs) {
	for n := range l {
		l[n] = mask&(1<<n) != 0
	}
	return
}

// Mask encodes the LEDs frame.
func (l LEDs) Mask() (mask byte) {
	for n, on := range l {
		if on {
			mask |= 1 << n
		}
	}
	return
}

func (l LEDs) String() string {
	s := []byte("0000")
	for n, on := range l {
		if on {
			s[n] = '1'
		}
	}
	return string(s)
}
