package light

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/linnode/pkg/framework"
	"github.com/robotalks/linnode/pkg/mailbox"
)

// Sampler periodically publishes the light sensor reading.
type Sampler struct {
	ADC    ADC
	Output mailbox.Publisher[uint16]
	// Interval between samples, zero samples every iteration.
	Interval time.Duration

	last time.Time
}

// Name implements Named.
func (s *Sampler) Name() string {
	return "light-sampler"
}

// Control implements Controller.
func (s *Sampler) Control(ctx fx.ControlContext) error {
	now := ctx.Time()
	if !s.last.IsZero() && now.Sub(s.last) < s.Interval {
		return nil
	}
	s.last = now
	mv, err := s.ADC.Millivolts()
	if err != nil {
		return err
	}
	glog.V(3).Infof("light: %d mV", mv)
	s.Output.Publish(mv)
	return nil
}

// AddToLoop implements LoopAdder.
func (s *Sampler) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, s)
}
