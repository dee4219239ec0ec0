package board

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/linnode/pkg/ds18b20"
	"github.com/robotalks/linnode/pkg/lin"
)

func TestClient(t *testing.T) {
	slaveConn, masterConn := net.Pipe()
	defer masterConn.Close()
	b := newTestBoard(t, 3)
	engine := lin.NewEngine(slaveConn, b.handler)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)
	require.NoError(t, masterConn.SetDeadline(time.Now().Add(time.Second)))
	client := &Client{Master: lin.NewMaster(masterConn), BoardID: 3}

	mv, err := client.Light()
	require.NoError(t, err)
	require.Equal(t, uint16(0), mv)

	b.light.Publish(3300)
	b.temperature.Publish(-162)
	mv, err = client.Light()
	require.NoError(t, err)
	require.Equal(t, uint16(3300), mv)
	temp, err := client.Temperature()
	require.NoError(t, err)
	require.Equal(t, ds18b20.RawTemperature(-162), temp)

	require.NoError(t, client.SetColor(RGB{R: 10, G: 20, B: 30}))
	require.NoError(t, client.SetIndicators(LEDs{true, true}))
	// a request completes after the preceding commands are handled
	_, err = client.Light()
	require.NoError(t, err)
	color, ok := b.color.TryTake()
	require.True(t, ok)
	require.Equal(t, RGB{R: 10, G: 20, B: 30}, color)
	leds, ok := b.leds.TryTake()
	require.True(t, ok)
	require.Equal(t, LEDs{true, true}, leds)
}

func TestColorSweep(t *testing.T) {
	var s ColorSweep
	var colors []RGB
	for i := 0; i < 11; i++ {
		colors = append(colors, s.Next())
	}
	require.Equal(t, RGB{}, colors[0])
	require.Equal(t, RGB{R: 30}, colors[1])
	require.Equal(t, RGB{R: 240}, colors[8])
	require.Equal(t, RGB{}, colors[9])
	require.Equal(t, RGB{G: 30}, colors[10])

	for i := 0; i < 9*3-11; i++ {
		s.Next()
	}
	require.Equal(t, RGB{}, s.Next())
	require.Equal(t, RGB{R: 30}, s.Next())
}
