// Package node assembles a LIN node from the config.
package node

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/config"
	"github.com/robotalks/linnode/pkg/ds18b20"
	fx "github.com/robotalks/linnode/pkg/framework"
	"github.com/robotalks/linnode/pkg/light"
	"github.com/robotalks/linnode/pkg/lin"
	"github.com/robotalks/linnode/pkg/mailbox"
	"github.com/robotalks/linnode/pkg/onewire"
	"github.com/robotalks/linnode/pkg/serial"
	"github.com/robotalks/linnode/pkg/telemetry"
)

// Transports are the buses used by a node.
type Transports struct {
	LIN io.ReadWriter
	// OneWire is optional, the temperature is not served without it.
	OneWire onewire.Port
	// ADC is optional, the light is not served without it.
	ADC light.ADC
}

// Node wires the LIN engine, the sensors and the lights.
type Node struct {
	Config  *config.Config
	Handler *board.Handler
	Engine  *lin.Engine

	Temperature *ds18b20.Sampler
	Light       *light.Sampler

	ColorLamp     light.ColorLamp
	IndicatorLamp light.IndicatorLamp

	Telemetry *telemetry.Bridge

	adders  []fx.LoopAdder
	closers []io.Closer
}

// Open opens the devices in the config and creates the Node.
func Open(cfg *config.Config) (*Node, error) {
	var t Transports
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	linPort, err := serial.Open(cfg.LIN)
	if err != nil {
		return nil, err
	}
	closers = append(closers, linPort)
	t.LIN = linPort
	if dev := cfg.Temperature.Device; dev != "" {
		port, err := serial.Open(serial.Config{Device: dev, BaudRate: onewire.BaudRate})
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, port)
		t.OneWire = port
	}
	if dir := cfg.Light.ADC; dir != "" {
		t.ADC = light.NewSysfsADC(dir, cfg.Light.Channel)
	}
	n, err := New(cfg, t)
	if err != nil {
		closeAll()
		return nil, err
	}
	n.closers = closers
	return n, nil
}

// New creates the Node on the provided transports.
func New(cfg *config.Config, t Transports) (*Node, error) {
	if t.LIN == nil {
		return nil, fmt.Errorf("LIN transport required")
	}
	n := &Node{
		Config:  cfg,
		Handler: &board.Handler{BoardID: byte(cfg.BoardID)},
	}
	n.Engine = lin.NewEngine(t.LIN, n.Handler)

	var bridge *telemetry.Bridge
	if cfg.MQTTURL != "" {
		var err error
		if bridge, err = telemetry.NewBridge(cfg.MQTTURL, cfg.NodeID, telemetry.NewMeta(byte(cfg.BoardID))); err != nil {
			return nil, err
		}
		bridge.Stats = n.Engine.Stats
		n.Telemetry = bridge
	}

	n.setupLamps(bridge)

	if t.OneWire != nil {
		temperature := mailbox.New[ds18b20.RawTemperature]()
		output := mailbox.Fanout[ds18b20.RawTemperature]{temperature}
		if bridge != nil {
			bridge.Temperature = mailbox.New[ds18b20.RawTemperature]()
			output = append(output, bridge.Temperature)
		}
		n.Handler.Temperature = mailbox.NewLatest(temperature)
		sensor := ds18b20.New(onewire.New(t.OneWire))
		sensor.ConversionTime = cfg.Temperature.ConversionTime
		n.Temperature = &ds18b20.Sampler{
			Sensor:   sensor,
			Output:   output,
			Interval: cfg.Temperature.Interval,
		}
	}

	if t.ADC != nil {
		lightMV := mailbox.New[uint16]()
		output := mailbox.Fanout[uint16]{lightMV}
		if bridge != nil {
			bridge.Light = mailbox.New[uint16]()
			output = append(output, bridge.Light)
		}
		n.Handler.Light = mailbox.NewLatest(lightMV)
		n.Light = &light.Sampler{
			ADC:      t.ADC,
			Output:   output,
			Interval: cfg.Light.Interval,
		}
		n.adders = append(n.adders, n.Light)
	}

	if bridge != nil {
		n.adders = append(n.adders, bridge)
	}
	glog.Infof("node %s: board %d, frames %d-%d", cfg.NodeID, cfg.BoardID,
		board.FrameID(byte(cfg.BoardID), 0), board.FrameID(byte(cfg.BoardID), board.FramesPerBoard-1))
	return n, nil
}

func (n *Node) setupLamps(bridge *telemetry.Bridge) {
	lamps := n.Config.Lamp
	if len(lamps.Color) == 0 && len(lamps.Indicators) == 0 {
		lamp := &light.LogLamp{}
		n.ColorLamp, n.IndicatorLamp = lamp, lamp
	} else {
		lamp := &light.SysfsLamp{}
		copy(lamp.Color[:], lamps.Color)
		copy(lamp.Indicators[:], lamps.Indicators)
		n.ColorLamp, n.IndicatorLamp = lamp, lamp
	}

	color := mailbox.New[board.RGB]()
	indicators := mailbox.New[board.LEDs]()
	colorOut := mailbox.Fanout[board.RGB]{color}
	indicatorsOut := mailbox.Fanout[board.LEDs]{indicators}
	if bridge != nil {
		bridge.Color = mailbox.New[board.RGB]()
		bridge.Indicators = mailbox.New[board.LEDs]()
		colorOut = append(colorOut, bridge.Color)
		indicatorsOut = append(indicatorsOut, bridge.Indicators)
		bridge.SetColor = colorOut
		bridge.SetIndicators = indicatorsOut
	}
	n.Handler.Color = colorOut
	n.Handler.Indicators = indicatorsOut
	n.adders = append(n.adders,
		&light.ColorActuator{Input: color, Lamp: n.ColorLamp},
		&light.IndicatorActuator{Input: indicators, Lamp: n.IndicatorLamp},
	)
}

// AddToLoop implements LoopAdder.
func (n *Node) AddToLoop(l *fx.Loop) {
	if n.Config.LoopInterval > 0 {
		l.Interval = n.Config.LoopInterval
	}
	l.AddRunnable(n.Engine)
	if n.Temperature != nil {
		l.AddRunnable(n.Temperature)
	}
	l.Add(n.adders...)
}

// Close releases the devices opened by Open. It's only needed when the
// node never runs, a running loop closes them on stop.
func (n *Node) Close() error {
	var errs fx.AggregatedError
	for _, c := range n.closers {
		errs.Add(c.Close())
	}
	return errs.Aggregate()
}
