package board

import (
	"encoding/binary"

	"github.com/robotalks/linnode/pkg/ds18b20"
	"github.com/robotalks/linnode/pkg/lin"
)

// Client accesses a board from the master side.
type Client struct {
	Master  *lin.Master
	BoardID byte
}

// SetColor sends the RGB frame.
func (c *Client) SetColor(color RGB) error {
	return c.Master.Send(FrameID(c.BoardID, FrameRGB), color.Bytes())
}

// SetIndicators sends the LEDs frame.
func (c *Client) SetIndicators(leds LEDs) error {
	return c.Master.Send(FrameID(c.BoardID, FrameLEDs), []byte{leds.Mask()})
}

// Light requests the light sensor reading in millivolts.
func (c *Client) Light() (uint16, error) {
	data, err := c.Master.Request(FrameID(c.BoardID, FrameLight), LightSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(data), nil
}

// Temperature requests the latest temperature.
func (c *Client) Temperature() (ds18b20.RawTemperature, error) {
	data, err := c.Master.Request(FrameID(c.BoardID, FrameTemperature), TemperatureSize)
	if err != nil {
		return 0, err
	}
	return ds18b20.RawTemperature(binary.LittleEndian.Uint16(data)), nil
}

// ColorSweep generates colors raising one channel at a time.
type ColorSweep struct {
	Step    int
	color   [3]int
	channel int
}

// Next returns the current color and advances.
func (s *ColorSweep) Next() RGB {
	c := RGB{R: byte(s.color[0]), G: byte(s.color[1]), B: byte(s.color[2])}
	step := s.Step
	if step <= 0 {
		step = 30
	}
	if s.color[s.channel] += step; s.color[s.channel] > 0xff {
		s.color[s.channel] = 0
		s.channel = (s.channel + 1) % len(s.color)
	}
	return c
}
