package ds18b20

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/linnode/pkg/framework"
	"github.com/robotalks/linnode/pkg/mailbox"
)

// Sampler continuously reads the temperature and publishes good readings.
type Sampler struct {
	Sensor *Sensor
	Output mailbox.Publisher[RawTemperature]
	// Interval is an additional pause between conversions.
	Interval time.Duration
}

// Name implements Named.
func (s *Sampler) Name() string {
	return "ds18b20"
}

// Run implements Runnable. Corrupted readings are skipped, bus failures
// end the sampler.
func (s *Sampler) Run(ctx context.Context) error {
	closer, _ := s.Sensor.Bus.Port.(io.Closer)
	return fx.RunWithContextCloser(ctx, closer, func() error {
		for {
			if err := s.Sample(ctx); err != nil {
				return err
			}
			if s.Interval > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.Interval):
				}
			}
		}
	})
}

// Sample performs one reading.
func (s *Sampler) Sample(ctx context.Context) error {
	raw, err := s.Sensor.RawTemperature(ctx)
	var csErr *ChecksumError
	switch {
	case errors.As(err, &csErr):
		glog.Warning(err)
		return nil
	case err != nil:
		return err
	}
	glog.V(2).Infof("ds18b20: %s (%d)", raw, raw)
	s.Output.Publish(raw)
	return nil
}
