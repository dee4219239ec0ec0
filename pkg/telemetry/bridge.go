// Package telemetry mirrors the node signals to MQTT and accepts light
// commands from it.
//
// Topics are relative to the broker URL prefix:
//
//	<node>/meta          retained JSON, cleared by the will on disconnect
//	<node>/temperature   msgs.Temperature
//	<node>/light         msgs.Light
//	<node>/rgb           msgs.Color, retained
//	<node>/leds          msgs.Indicators, retained
//	<node>/lin/stats     msgs.LinStats
//	<node>/rgb/set       msgs.Color command
//	<node>/leds/set      msgs.Indicators command
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/ds18b20"
	fx "github.com/robotalks/linnode/pkg/framework"
	"github.com/robotalks/linnode/pkg/lin"
	"github.com/robotalks/linnode/pkg/mailbox"
	"github.com/robotalks/linnode/pkg/telemetry/mqtt"
	"github.com/robotalks/linnode/pkg/telemetry/msgs"
)

// Queue is the MQTT side of the Bridge.
type Queue interface {
	Connect() paho.Token
	Sub(topic string, handler mqtt.Handler) *mqtt.Subscription
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
	Close() error
}

// Meta describes the node.
type Meta struct {
	BoardID byte            `json:"board"`
	Frames  map[string]byte `json:"frames"`
}

// NewMeta creates the Meta of a board.
func NewMeta(boardID byte) Meta {
	return Meta{
		BoardID: boardID,
		Frames: map[string]byte{
			"rgb":         board.FrameID(boardID, board.FrameRGB),
			"leds":        board.FrameID(boardID, board.FrameLEDs),
			"light":       board.FrameID(boardID, board.FrameLight),
			"temperature": board.FrameID(boardID, board.FrameTemperature),
		},
	}
}

const (
	// DefaultStatsInterval is the default minimum interval of statistics updates.
	DefaultStatsInterval = 5 * time.Second
	// DefaultConnectRetry is the first delay after a failed connect. The delay
	// doubles on each failure up to MaxConnectRetry.
	DefaultConnectRetry = time.Second
	// MaxConnectRetry caps the delay between connect attempts.
	MaxConnectRetry = 30 * time.Second
)

// Bridge publishes what it takes from the mailboxes, and publishes received
// commands to SetColor and SetIndicators. Nil mailboxes are skipped.
type Bridge struct {
	Queue  Queue
	NodeID string
	Meta   Meta

	Temperature *mailbox.Mailbox[ds18b20.RawTemperature]
	Light       *mailbox.Mailbox[uint16]
	Color       *mailbox.Mailbox[board.RGB]
	Indicators  *mailbox.Mailbox[board.LEDs]

	Stats         func() lin.Stats
	StatsInterval time.Duration
	ConnectRetry  time.Duration

	SetColor      mailbox.Publisher[board.RGB]
	SetIndicators mailbox.Publisher[board.LEDs]

	lastStatsTime time.Time
	lastStats     lin.Stats
}

// NewBridge creates a Bridge connecting to the broker.
func NewBridge(brokerURL, nodeID string, meta Meta) (*Bridge, error) {
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+nodeID+"/meta", nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("linnode:" + nodeID)
	}
	b := &Bridge{
		NodeID:        nodeID,
		Meta:          meta,
		StatsInterval: DefaultStatsInterval,
		ConnectRetry:  DefaultConnectRetry,
	}
	q := mqtt.NewQueue(opts, topicPrefix)
	q.OnConnect = func(*mqtt.Queue) { b.publishMeta() }
	b.Queue = q
	return b, nil
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "telemetry"
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, b)
}

// Run implements Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	if b.SetColor != nil {
		b.Queue.Sub(b.NodeID+"/rgb/set", b.handleColor)
	}
	if b.SetIndicators != nil {
		b.Queue.Sub(b.NodeID+"/leds/set", b.handleIndicators)
	}
	b.connect(ctx)
	<-ctx.Done()
	b.Queue.PubWith(b.topic("meta"), nil, 1, true).WaitTimeout(time.Second)
	return b.Queue.Close()
}

// connect retries until connected or ctx is canceled. Reconnecting after
// a lost connection is left to the client.
func (b *Bridge) connect(ctx context.Context) {
	delay := b.ConnectRetry
	if delay <= 0 {
		delay = DefaultConnectRetry
	}
	for {
		token := b.Queue.Connect()
		token.Wait()
		err := token.Error()
		if err == nil {
			return
		}
		glog.Warningf("telemetry: connect: %v, retry in %v", err, delay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay *= 2; delay > MaxConnectRetry {
			delay = MaxConnectRetry
		}
	}
}

// Control implements Controller.
func (b *Bridge) Control(ctx fx.ControlContext) error {
	if b.Temperature != nil {
		if raw, ok := b.Temperature.TryTake(); ok {
			b.publish("temperature", &msgs.Temperature{Raw: int32(raw), Celsius: raw.Celsius()}, false)
		}
	}
	if b.Light != nil {
		if mv, ok := b.Light.TryTake(); ok {
			b.publish("light", &msgs.Light{Millivolts: uint32(mv)}, false)
		}
	}
	if b.Color != nil {
		if c, ok := b.Color.TryTake(); ok {
			b.publish("rgb", &msgs.Color{R: uint32(c.R), G: uint32(c.G), B: uint32(c.B)}, true)
		}
	}
	if b.Indicators != nil {
		if leds, ok := b.Indicators.TryTake(); ok {
			b.publish("leds", &msgs.Indicators{Mask: uint32(leds.Mask())}, true)
		}
	}
	if b.Stats != nil && ctx.Time().Sub(b.lastStatsTime) >= b.StatsInterval {
		b.lastStatsTime = ctx.Time()
		if s := b.Stats(); s != b.lastStats {
			b.lastStats = s
			b.publish("lin/stats", &msgs.LinStats{
				Frames:         s.Frames,
				Responses:      s.Responses,
				Commands:       s.Commands,
				Unknown:        s.Unknown,
				InvalidSync:    s.InvalidSync,
				InvalidPid:     s.InvalidPID,
				ChecksumErrors: s.ChecksumErrors,
			}, false)
		}
	}
	return nil
}

func (b *Bridge) topic(name string) string {
	return b.NodeID + "/" + name
}

func (b *Bridge) publish(name string, msg proto.Message, retain bool) {
	payload, err := proto.Marshal(msg)
	if err != nil {
		glog.Errorf("telemetry: encode %s: %v", name, err)
		return
	}
	b.Queue.PubWith(b.topic(name), payload, 0, retain)
}

func (b *Bridge) publishMeta() {
	meta, err := json.Marshal(&b.Meta)
	if err != nil {
		glog.Errorf("telemetry: encode meta: %v", err)
		return
	}
	b.Queue.PubWith(b.topic("meta"), meta, 1, true)
}

func (b *Bridge) handleColor(topic string, payload []byte) {
	var msg msgs.Color
	if err := proto.Unmarshal(payload, &msg); err != nil {
		glog.Warningf("telemetry: %s: %v", topic, err)
		return
	}
	if msg.R > 0xff || msg.G > 0xff || msg.B > 0xff {
		glog.Warningf("telemetry: %s: color out of range: %v", topic, &msg)
		return
	}
	b.SetColor.Publish(board.RGB{R: byte(msg.R), G: byte(msg.G), B: byte(msg.B)})
}

func (b *Bridge) handleIndicators(topic string, payload []byte) {
	var msg msgs.Indicators
	if err := proto.Unmarshal(payload, &msg); err != nil {
		glog.Warningf("telemetry: %s: %v", topic, err)
		return
	}
	b.SetIndicators.Publish(board.LEDsFromMask(byte(msg.Mask)))
}
