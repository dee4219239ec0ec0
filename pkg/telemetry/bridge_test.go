package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/ds18b20"
	"github.com/robotalks/linnode/pkg/lin"
	"github.com/robotalks/linnode/pkg/mailbox"
	"github.com/robotalks/linnode/pkg/telemetry/mqtt"
	"github.com/robotalks/linnode/pkg/telemetry/msgs"
)

type testPub struct {
	topic   string
	payload []byte
	retain  bool
}

type testQueue struct {
	lock      sync.Mutex
	pubs      []testPub
	subs      map[string]mqtt.Handler
	connected bool
	closed    bool

	// connectErrs fail the first connects in order.
	connectErrs []error
	connects    int
}

type errToken struct {
	*paho.DummyToken
	err error
}

func (t *errToken) Error() error {
	return t.err
}

func (q *testQueue) Connect() paho.Token {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.connects++
	if len(q.connectErrs) > 0 {
		err := q.connectErrs[0]
		q.connectErrs = q.connectErrs[1:]
		return &errToken{DummyToken: &paho.DummyToken{}, err: err}
	}
	q.connected = true
	return &paho.DummyToken{}
}

func (q *testQueue) isConnected() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.connected
}

func (q *testQueue) Sub(topic string, handler mqtt.Handler) *mqtt.Subscription {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.subs == nil {
		q.subs = make(map[string]mqtt.Handler)
	}
	q.subs[topic] = handler
	return nil
}

func (q *testQueue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	q.lock.Lock()
	q.pubs = append(q.pubs, testPub{topic: topic, payload: payload, retain: retain})
	q.lock.Unlock()
	return &paho.DummyToken{}
}

func (q *testQueue) Close() error {
	q.lock.Lock()
	q.closed = true
	q.lock.Unlock()
	return nil
}

func (q *testQueue) take() []testPub {
	q.lock.Lock()
	defer q.lock.Unlock()
	pubs := q.pubs
	q.pubs = nil
	return pubs
}

type testControlContext struct {
	now time.Time
}

func (c *testControlContext) Time() time.Time          { return c.now }
func (c *testControlContext) Context() context.Context { return context.Background() }
func (c *testControlContext) PriorityLevel() int       { return 0 }
func (c *testControlContext) TriggerNext()             {}

func decode(t *testing.T, payload []byte, msg proto.Message) proto.Message {
	require.NoError(t, proto.Unmarshal(payload, msg))
	return msg
}

func TestBridgeControl(t *testing.T) {
	q := &testQueue{}
	var stats lin.Stats
	b := &Bridge{
		Queue:         q,
		NodeID:        "node1",
		Temperature:   mailbox.New[ds18b20.RawTemperature](),
		Light:         mailbox.New[uint16](),
		Color:         mailbox.New[board.RGB](),
		Indicators:    mailbox.New[board.LEDs](),
		Stats:         func() lin.Stats { return stats },
		StatsInterval: time.Second,
	}
	ctx := &testControlContext{now: time.Unix(1000, 0)}

	b.Temperature.Publish(-162)
	b.Light.Publish(1650)
	b.Color.Publish(board.RGB{R: 10, G: 20, B: 30})
	b.Indicators.Publish(board.LEDs{true, false, true})
	stats.Frames = 3
	require.NoError(t, b.Control(ctx))
	pubs := q.take()
	require.Len(t, pubs, 5)
	require.Equal(t, "node1/temperature", pubs[0].topic)
	require.Equal(t, &msgs.Temperature{Raw: -162, Celsius: -10.125}, decode(t, pubs[0].payload, &msgs.Temperature{}))
	require.Equal(t, "node1/light", pubs[1].topic)
	require.Equal(t, &msgs.Light{Millivolts: 1650}, decode(t, pubs[1].payload, &msgs.Light{}))
	require.Equal(t, "node1/rgb", pubs[2].topic)
	require.True(t, pubs[2].retain)
	require.Equal(t, &msgs.Color{R: 10, G: 20, B: 30}, decode(t, pubs[2].payload, &msgs.Color{}))
	require.Equal(t, "node1/leds", pubs[3].topic)
	require.Equal(t, &msgs.Indicators{Mask: 5}, decode(t, pubs[3].payload, &msgs.Indicators{}))
	require.Equal(t, "node1/lin/stats", pubs[4].topic)
	require.Equal(t, &msgs.LinStats{Frames: 3}, decode(t, pubs[4].payload, &msgs.LinStats{}))

	// nothing new
	ctx.now = ctx.now.Add(2 * time.Second)
	require.NoError(t, b.Control(ctx))
	require.Empty(t, q.take())

	// stats are rate limited
	stats.ChecksumErrors = 1
	ctx.now = ctx.now.Add(500 * time.Millisecond)
	require.NoError(t, b.Control(ctx))
	require.Empty(t, q.take())
	ctx.now = ctx.now.Add(500 * time.Millisecond)
	require.NoError(t, b.Control(ctx))
	pubs = q.take()
	require.Len(t, pubs, 1)
	require.Equal(t, &msgs.LinStats{Frames: 3, ChecksumErrors: 1}, decode(t, pubs[0].payload, &msgs.LinStats{}))
}

func TestBridgeCommands(t *testing.T) {
	q := &testQueue{}
	colors := mailbox.New[board.RGB]()
	leds := mailbox.New[board.LEDs]()
	b := &Bridge{
		Queue:         q,
		NodeID:        "node1",
		Meta:          NewMeta(1),
		SetColor:      colors,
		SetIndicators: leds,
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Run(ctx)
	}()
	for deadline := time.Now().Add(time.Second); ; time.Sleep(10 * time.Millisecond) {
		q.lock.Lock()
		connected := q.connected
		q.lock.Unlock()
		if connected {
			break
		}
		require.True(t, time.Now().Before(deadline), "not connected")
	}

	payload, err := proto.Marshal(&msgs.Color{R: 1, G: 2, B: 3})
	require.NoError(t, err)
	q.subs["node1/rgb/set"]("node1/rgb/set", payload)
	c, ok := colors.TryTake()
	require.True(t, ok)
	require.Equal(t, board.RGB{R: 1, G: 2, B: 3}, c)

	payload, err = proto.Marshal(&msgs.Color{R: 256})
	require.NoError(t, err)
	q.subs["node1/rgb/set"]("node1/rgb/set", payload)
	q.subs["node1/rgb/set"]("node1/rgb/set", []byte{0xff})
	_, ok = colors.TryTake()
	require.False(t, ok)

	payload, err = proto.Marshal(&msgs.Indicators{Mask: 0x09})
	require.NoError(t, err)
	q.subs["node1/leds/set"]("node1/leds/set", payload)
	l, ok := leds.TryTake()
	require.True(t, ok)
	require.Equal(t, board.LEDs{true, false, false, true}, l)

	b.publishMeta()
	pubs := q.take()
	require.Len(t, pubs, 1)
	require.Equal(t, "node1/meta", pubs[0].topic)
	require.True(t, pubs[0].retain)
	var meta Meta
	require.NoError(t, json.Unmarshal(pubs[0].payload, &meta))
	require.Equal(t, NewMeta(1), meta)
	require.Equal(t, byte(7), meta.Frames["light"])

	cancel()
	require.NoError(t, <-errCh)
	pubs = q.take()
	require.Len(t, pubs, 1)
	require.Equal(t, testPub{topic: "node1/meta", retain: true}, pubs[0])
	require.True(t, q.closed)
}

func TestBridgeConnectRetry(t *testing.T) {
	refused := errors.New("connection refused")
	q := &testQueue{connectErrs: []error{refused, refused}}
	b := &Bridge{
		Queue:        q,
		NodeID:       "node1",
		ConnectRetry: time.Millisecond,
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Run(ctx)
	}()
	for deadline := time.Now().Add(time.Second); !q.isConnected(); time.Sleep(5 * time.Millisecond) {
		require.True(t, time.Now().Before(deadline), "not connected")
	}
	cancel()
	require.NoError(t, <-errCh)
	require.Equal(t, 3, q.connects)
	require.True(t, q.closed)
}

func TestBridgeConnectCanceled(t *testing.T) {
	refused := errors.New("connection refused")
	q := &testQueue{connectErrs: []error{refused}}
	b := &Bridge{
		Queue:        q,
		NodeID:       "node1",
		ConnectRetry: time.Hour,
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Run(ctx)
	}()
	for deadline := time.Now().Add(time.Second); ; time.Sleep(5 * time.Millisecond) {
		q.lock.Lock()
		connects := q.connects
		q.lock.Unlock()
		if connects > 0 {
			break
		}
		require.True(t, time.Now().Before(deadline), "no connect attempt")
	}
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bridge not stopped while waiting to reconnect")
	}
	require.False(t, q.isConnected())
	require.True(t, q.closed)
}
