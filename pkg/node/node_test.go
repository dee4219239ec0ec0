package node

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/config"
	"github.com/robotalks/linnode/pkg/ds18b20"
	fx "github.com/robotalks/linnode/pkg/framework"
	"github.com/robotalks/linnode/pkg/light"
	"github.com/robotalks/linnode/pkg/lin"
	"github.com/robotalks/linnode/pkg/onewire/onewiretest"
)

type testADC uint16

func (a testADC) Millivolts() (uint16, error) {
	return uint16(a), nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNode(t *testing.T) {
	cfg := config.NewConfig()
	cfg.NodeID = "test"
	cfg.BoardID = 2
	cfg.Temperature.Interval = 5 * time.Millisecond
	cfg.Light.Interval = 0
	cfg.LoopInterval = 5 * time.Millisecond

	nodeConn, masterConn := net.Pipe()
	defer masterConn.Close()
	dev := onewiretest.NewDS18B20([8]byte{0x91, 0x01, 0x4B, 0x46, 0x7F, 0xFF, 0x0C, 0x10})
	n, err := New(cfg, Transports{LIN: nodeConn, OneWire: dev, ADC: testADC(1650)})
	require.NoError(t, err)
	require.Nil(t, n.Telemetry)
	n.Temperature.Sensor.Sleep = func(context.Context, time.Duration) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- fx.NewLoop().Add(n).Run(ctx)
	}()

	client := &board.Client{Master: lin.NewMaster(masterConn), BoardID: 2}
	require.NoError(t, client.SetColor(board.RGB{R: 10, G: 20, B: 30}))
	require.NoError(t, client.SetIndicators(board.LEDsFromMask(0x9)))
	lamp := n.ColorLamp.(*light.LogLamp)
	waitFor(t, "lamp", func() bool {
		c, leds := lamp.State()
		return c == board.RGB{R: 10, G: 20, B: 30} && leds.Mask() == 0x9
	})

	waitFor(t, "temperature", func() bool {
		raw, err := client.Temperature()
		require.NoError(t, err)
		return raw == ds18b20.RawTemperature(0x0191)
	})
	waitFor(t, "light", func() bool {
		mv, err := client.Light()
		require.NoError(t, err)
		return mv == 1650
	})

	cancel()
	select {
	case err = <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop not stopped")
	}
	require.NotZero(t, dev.Conversions)
	stats := n.Engine.Stats()
	require.EqualValues(t, 2, stats.Commands)
}

func TestNodeOptionalSignals(t *testing.T) {
	cfg := config.NewConfig()
	cfg.NodeID = "test"
	nodeConn, masterConn := net.Pipe()
	defer masterConn.Close()
	defer nodeConn.Close()
	n, err := New(cfg, Transports{LIN: nodeConn})
	require.NoError(t, err)
	require.Nil(t, n.Temperature)
	require.Nil(t, n.Light)
	require.Nil(t, n.Handler.Temperature)
	require.Nil(t, n.Handler.Light)
	_, ok := n.Handler.ExpectedCommandLength(board.FrameID(0, board.FrameRGB))
	require.True(t, ok)
	_, ok = n.Handler.BuildResponse(board.FrameID(0, board.FrameTemperature))
	require.False(t, ok)

	_, err = New(cfg, Transports{})
	require.Error(t, err)
}

func TestNodeSysfsLamp(t *testing.T) {
	cfg := config.NewConfig()
	cfg.NodeID = "test"
	cfg.Lamp.Color = []string{"/sys/class/leds/r", "/sys/class/leds/g", "/sys/class/leds/b"}
	nodeConn, masterConn := net.Pipe()
	defer masterConn.Close()
	defer nodeConn.Close()
	n, err := New(cfg, Transports{LIN: nodeConn})
	require.NoError(t, err)
	lamp, ok := n.ColorLamp.(*light.SysfsLamp)
	require.True(t, ok)
	require.Equal(t, "/sys/class/leds/g", lamp.Color[1])
	require.Empty(t, lamp.Indicators[0])
}
