package main

import (
	goflag "flag"
	"fmt"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/cli/sh"
	"github.com/robotalks/linnode/pkg/lin"
)

type globalFlags struct {
	device  string
	baud    int
	boardID int
	echo    bool
	timeout time.Duration
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "linmaster",
		Short: "LIN master for bench testing nodes",
		Long: `linmaster drives a LIN bus from a serial port to exercise a node:
it sets the lights and reads the sensors of a board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pflags := rootCmd.PersistentFlags()
	pflags.StringVarP(&flags.device, "device", "d", "/dev/ttyUSB0", "Serial device of the LIN bus")
	pflags.IntVar(&flags.baud, "baud", 19200, "LIN baud rate")
	pflags.IntVarP(&flags.boardID, "board", "b", 0, "Board id")
	pflags.BoolVar(&flags.echo, "echo", false, "Transceiver echoes transmitted bytes")
	pflags.DurationVar(&flags.timeout, "timeout", sh.DefaultTimeout, "Wait for response bytes, 0 waits forever")
	pflags.AddGoFlagSet(goflag.CommandLine)

	rootCmd.AddCommand(newRGBCmd(flags))
	rootCmd.AddCommand(newLEDsCmd(flags))
	rootCmd.AddCommand(newLightCmd(flags))
	rootCmd.AddCommand(newTempCmd(flags))
	rootCmd.AddCommand(newRawCmd(flags))
	rootCmd.AddCommand(newCycleCmd(flags))
	rootCmd.AddCommand(newShellCmd(flags))

	goflag.CommandLine.Parse(nil)
	err := rootCmd.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// open opens the bus and runs fn with the board client.
func (f *globalFlags) open(fn func(*board.Client) error) error {
	if f.boardID < 0 || f.boardID > 11 {
		return fmt.Errorf("board id %d out of range 0-11", f.boardID)
	}
	port, err := sh.OpenBus(f.device, f.baud, f.timeout)
	if err != nil {
		return err
	}
	defer port.Close()
	master := lin.NewMaster(port)
	master.Echo = f.echo
	return fn(&board.Client{Master: master, BoardID: byte(f.boardID)})
}
