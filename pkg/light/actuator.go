package light

import (
	"github.com/robotalks/linnode/pkg/board"
	fx "github.com/robotalks/linnode/pkg/framework"
	"github.com/robotalks/linnode/pkg/mailbox"
)

// ColorActuator applies color changes to a ColorLamp.
type ColorActuator struct {
	Input *mailbox.Mailbox[board.RGB]
	Lamp  ColorLamp
}

// Control implements Controller.
func (a *ColorActuator) Control(fx.ControlContext) error {
	if c, ok := a.Input.TryTake(); ok {
		return a.Lamp.SetColor(c)
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (a *ColorActuator) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvActuate, a)
}

// IndicatorActuator applies indicator changes to an IndicatorLamp.
type IndicatorActuator struct {
	Input *mailbox.Mailbox[board.LEDs]
	Lamp  IndicatorLamp
}

// Control implements Controller.
func (a *IndicatorActuator) Control(fx.ControlContext) error {
	if leds, ok := a.Input.TryTake(); ok {
		return a.Lamp.SetIndicators(leds)
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (a *IndicatorActuator) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvActuate, a)
}
