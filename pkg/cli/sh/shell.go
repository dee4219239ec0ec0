// Package sh provides the interactive shell of the LIN bench tool.
package sh

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/linnode/pkg/board"
	"github.com/robotalks/linnode/pkg/lin"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// Echo is set when the transceiver echoes transmitted bytes.
	Echo bool
	// Timeout bounds the wait for response bytes.
	Timeout time.Duration

	Shell *ishell.Shell
	Conn  *Conn
}

// Conn is an open LIN bus.
type Conn struct {
	Name   string
	Port   io.ReadWriteCloser
	Client *board.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var commands = []*ishell.Cmd{
	&OpenCmd,
	&CloseCmd,
	&BoardCmd,
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(interactive, outputJSON bool) *Shell {
	s := &Shell{
		Interactive: interactive,
		OutputJSON:  outputJSON,
		Timeout:     DefaultTimeout,
		Shell:       ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// ClientFrom gets the board client of the current connection.
func ClientFrom(c *ishell.Context) *board.Client {
	return ShellFrom(c).Conn.Client
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Print prints the result as JSON or as text.
func Print(c *ishell.Context, v interface{}) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(v)
}

// Open opens a serial device.
func (s *Shell) Open(device string, baud int) error {
	port, err := OpenBus(device, baud, s.Timeout)
	if err != nil {
		return err
	}
	s.Attach(device, port)
	return nil
}

// Attach uses an opened transport as the LIN bus.
func (s *Shell) Attach(name string, port io.ReadWriteCloser) {
	s.Close()
	master := lin.NewMaster(port)
	master.Echo = s.Echo
	s.Conn = &Conn{
		Name:   name,
		Port:   port,
		Client: &board.Client{Master: master},
	}
	s.updatePrompt()
}

// Close closes the current connection.
func (s *Shell) Close() {
	if s.Conn != nil {
		s.Conn.Port.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// SelectBoard selects the board of the current connection.
func (s *Shell) SelectBoard(id byte) {
	s.Conn.Client.BoardID = id
	s.updatePrompt()
}

func (s *Shell) updatePrompt() {
	s.Shell.SetPrompt(fmt.Sprintf("%s#%d > ", s.Conn.Name, s.Conn.Client.BoardID))
}

// Run runs the shell. Args are evaluated as a single command.
func (s *Shell) Run(args ...string) error {
	defer s.Close()
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if !s.Interactive {
		return fmt.Errorf("command expected")
	}
	s.Shell.Run()
	return nil
}

var (
	// OpenCmd opens a serial device.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "DEVICE [BAUD]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("DEVICE required"))
				return
			}
			baud := 19200
			if len(c.Args) > 1 {
				val, err := ParseInt(c.Args[1], 1, 1000000)
				if err != nil {
					c.Err(fmt.Errorf("invalid BAUD: %v", err))
					return
				}
				baud = val
			}
			if err := ShellFrom(c).Open(c.Args[0], baud); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes the serial device.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// BoardCmd selects the board.
	BoardCmd = ishell.Cmd{
		Name:    "board",
		Aliases: []string{"b"},
		Help:    "[ID]",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) == 0 {
				Print(c, s.Conn.Client.BoardID)
				return
			}
			id, err := ParseInt(c.Args[0], 0, 11)
			if err != nil {
				c.Err(fmt.Errorf("invalid ID: %v", err))
				return
			}
			s.SelectBoard(byte(id))
		}),
	}
)
