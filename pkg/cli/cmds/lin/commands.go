// Package lin registers the board commands of the bench shell.
package lin

import (
	"encoding/hex"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/cli/sh"
)

var (
	// RGBCmd sets the board color.
	RGBCmd = ishell.Cmd{
		Name:    "rgb",
		Aliases: []string{"color"},
		Help:    "R G B | #rrggbb",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			color, err := sh.ParseRGB(c.Args)
			if err != nil {
				c.Err(fmt.Errorf("invalid color: %v", err))
				return
			}
			if err = sh.ClientFrom(c).SetColor(color); err != nil {
				c.Err(err)
			}
		}),
	}

	// LEDsCmd sets the indicators.
	LEDsCmd = ishell.Cmd{
		Name:    "leds",
		Aliases: []string{"led"},
		Help:    "MASK | L0 L1 L2 L3",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			leds, err := sh.ParseLEDs(c.Args)
			if err != nil {
				c.Err(fmt.Errorf("invalid leds: %v", err))
				return
			}
			if err = sh.ClientFrom(c).SetIndicators(leds); err != nil {
				c.Err(err)
			}
		}),
	}

	// LightCmd reads the light sensor.
	LightCmd = ishell.Cmd{
		Name: "light",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			mv, err := sh.ClientFrom(c).Light()
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, mv)
		}),
	}

	// TempCmd reads the temperature.
	TempCmd = ishell.Cmd{
		Name:    "temp",
		Aliases: []string{"t"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			raw, err := sh.ClientFrom(c).Temperature()
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				sh.Print(c, map[string]interface{}{"raw": int16(raw), "celsius": raw.Celsius()})
				return
			}
			c.Println(raw.String())
		}),
	}

	// SendCmd sends a raw command frame.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "ID [BYTES...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ID required"))
				return
			}
			id, err := sh.ParseInt(c.Args[0], 0, 0x3f)
			if err != nil {
				c.Err(fmt.Errorf("invalid ID: %v", err))
				return
			}
			data, err := sh.ParseBytes(c.Args[1:])
			if err != nil {
				c.Err(fmt.Errorf("invalid BYTES: %v", err))
				return
			}
			if err = sh.ClientFrom(c).Master.Send(byte(id), data); err != nil {
				c.Err(err)
			}
		}),
	}

	// RequestCmd requests a raw response frame.
	RequestCmd = ishell.Cmd{
		Name:    "request",
		Aliases: []string{"r"},
		Help:    "ID SIZE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("ID SIZE required"))
				return
			}
			id, err := sh.ParseInt(c.Args[0], 0, 0x3f)
			if err != nil {
				c.Err(fmt.Errorf("invalid ID: %v", err))
				return
			}
			size, err := sh.ParseInt(c.Args[1], 0, 8)
			if err != nil {
				c.Err(fmt.Errorf("invalid SIZE: %v", err))
				return
			}
			data, err := sh.ClientFrom(c).Master.Request(byte(id), size)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, hex.EncodeToString(data))
		}),
	}

	// FramesCmd lists the frame ids of the current board.
	FramesCmd = ishell.Cmd{
		Name: "frames",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			boardID := sh.ClientFrom(c).BoardID
			frames := map[string]byte{
				"rgb":         board.FrameID(boardID, board.FrameRGB),
				"leds":        board.FrameID(boardID, board.FrameLEDs),
				"light":       board.FrameID(boardID, board.FrameLight),
				"temperature": board.FrameID(boardID, board.FrameTemperature),
			}
			sh.Print(c, frames)
		}),
	}
)

func init() {
	sh.AddCmds(
		&RGBCmd,
		&LEDsCmd,
		&LightCmd,
		&TempCmd,
		&SendCmd,
		&RequestCmd,
		&FramesCmd,
	)
}
