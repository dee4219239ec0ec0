package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/cli/sh"

	_ "github.com/robotalks/linnode/pkg/cli/cmds/lin"
)

func newRGBCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rgb R G B | #rrggbb",
		Short: "Set the board color",
		Example: `  linmaster rgb 255 0 0
  linmaster -b 3 rgb '#00ff80'`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, err := sh.ParseRGB(args)
			if err != nil {
				return err
			}
			return flags.open(func(c *board.Client) error {
				return c.SetColor(color)
			})
		},
	}
}

func newLEDsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "leds MASK | L0 L1 L2 L3",
		Short: "Set the indicators",
		Example: `  linmaster leds 0x5
  linmaster leds 1 0 1 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			leds, err := sh.ParseLEDs(args)
			if err != nil {
				return err
			}
			return flags.open(func(c *board.Client) error {
				return c.SetIndicators(leds)
			})
		},
	}
}

func newLightCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "light",
		Short: "Read the light sensor in millivolts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.open(func(c *board.Client) error {
				mv, err := c.Light()
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "%d mV\n", mv)
				return nil
			})
		},
	}
}

func newTempCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "temp",
		Short: "Read the temperature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.open(func(c *board.Client) error {
				raw, err := c.Temperature()
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "%s (raw %d)\n", raw, int16(raw))
				return nil
			})
		},
	}
}

type rawFlags struct {
	request int
}

func newRawCmd(flags *globalFlags) *cobra.Command {
	rf := &rawFlags{}
	cmd := &cobra.Command{
		Use:   "raw ID [BYTES...]",
		Short: "Send a command frame or request a response frame",
		Long: `Send a command frame with the bytes, or with --request SIZE transmit
only the header and print the response.`,
		Example: `  linmaster raw 5 0a 14 1e
  linmaster raw 0x07 --request 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sh.ParseInt(args[0], 0, 0x3f)
			if err != nil {
				return fmt.Errorf("invalid ID: %w", err)
			}
			return flags.open(func(c *board.Client) error {
				if rf.request >= 0 {
					data, err := c.Master.Request(byte(id), rf.request)
					if err != nil {
						return err
					}
					fmt.Fprintln(os.Stdout, hex.EncodeToString(data))
					return nil
				}
				data, err := sh.ParseBytes(args[1:])
				if err != nil {
					return fmt.Errorf("invalid BYTES: %w", err)
				}
				return c.Master.Send(byte(id), data)
			})
		},
	}
	cmd.Flags().IntVar(&rf.request, "request", -1, "Request a response of SIZE bytes")
	return cmd
}

type cycleFlags struct {
	interval time.Duration
	step     int
}

func newCycleCmd(flags *globalFlags) *cobra.Command {
	cf := &cycleFlags{}
	cmd := &cobra.Command{
		Use:   "cycle",
		Short: "Sweep the colors and print the sensors until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			return flags.open(func(c *board.Client) error {
				sweep := &board.ColorSweep{Step: cf.step}
				ticker := time.NewTicker(cf.interval)
				defer ticker.Stop()
				for {
					color := sweep.Next()
					if err := c.SetColor(color); err != nil {
						return err
					}
					mv, err := c.Light()
					if err != nil {
						return err
					}
					raw, err := c.Temperature()
					if err != nil {
						return err
					}
					fmt.Fprintf(os.Stdout, "%s light %d mV temperature %s\n", color, mv, raw)
					select {
					case <-sigCh:
						return nil
					case <-ticker.C:
					}
				}
			})
		},
	}
	cmd.Flags().DurationVar(&cf.interval, "interval", 100*time.Millisecond, "Interval between colors")
	cmd.Flags().IntVar(&cf.step, "step", 30, "Color channel step")
	return cmd
}

type shellFlags struct {
	json bool
}

func newShellCmd(flags *globalFlags) *cobra.Command {
	sf := &shellFlags{}
	cmd := &cobra.Command{
		Use:   "shell [COMMAND...]",
		Short: "Interactive shell, or evaluate a shell command",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := sh.New(true, sf.json)
			s.Echo = flags.echo
			s.Timeout = flags.timeout
			if err := s.Open(flags.device, flags.baud); err != nil {
				return err
			}
			s.SelectBoard(byte(flags.boardID))
			return s.Run(args...)
		},
	}
	cmd.Flags().BoolVar(&sf.json, "json", false, "Print results as JSON")
	return cmd
}
