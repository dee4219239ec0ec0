package board

import (
	"encoding/binary"

	"github.com/golang/glog"

	"github.com/robotalks/linnode/pkg/ds18b20"
	"github.com/robotalks/linnode/pkg/lin"
	"github.com/robotalks/linnode/pkg/mailbox"
)

// Handler implements lin.Handler for a board.
// Commands are published, responses are built from the latest samples.
// Signals left nil are not served.
type Handler struct {
	BoardID byte

	Color       mailbox.Publisher[RGB]
	Indicators  mailbox.Publisher[LEDs]
	Light       *mailbox.Latest[uint16]
	Temperature *mailbox.Latest[ds18b20.RawTemperature]

	resp [2]byte
}

var _ lin.Handler = &Handler{}

// BuildResponse implements lin.Handler.
func (h *Handler) BuildResponse(frameID byte) ([]byte, bool) {
	id, ok := LocalFrameID(h.BoardID, frameID)
	if !ok {
		return nil, false
	}
	switch {
	case id == FrameLight && h.Light != nil:
		mv, _ := h.Light.Get()
		binary.LittleEndian.PutUint16(h.resp[:], mv)
	case id == FrameTemperature && h.Temperature != nil:
		raw, _ := h.Temperature.Get()
		binary.LittleEndian.PutUint16(h.resp[:], uint16(raw))
	default:
		return nil, false
	}
	return h.resp[:], true
}

// ExpectedCommandLength implements lin.Handler.
func (h *Handler) ExpectedCommandLength(frameID byte) (int, bool) {
	id, ok := LocalFrameID(h.BoardID, frameID)
	switch {
	case !ok:
		return 0, false
	case id == FrameRGB && h.Color != nil:
		return RGBSize, true
	case id == FrameLEDs && h.Indicators != nil:
		return LEDsSize, true
	}
	return 0, false
}

// HandleCommand implements lin.Handler.
func (h *Handler) HandleCommand(frameID byte, data []byte) {
	id, _ := LocalFrameID(h.BoardID, frameID)
	switch id {
	case FrameRGB:
		color := RGBFromBytes(data)
		glog.Infof("board: color %s", color)
		h.Color.Publish(color)
	case FrameLEDs:
		leds := LEDsFromMask(data[0])
		glog.Infof("board: leds %s", leds)
		h.Indicators.Publish(leds)
	}
}
