// Package serial provides raw TTY access with runtime baud rate changes,
// as needed by UART driven One-Wire and by LIN transceivers.
package serial

import (
	"errors"
	"time"
)

var (
	// ErrUnsupported is returned on platforms without TTY support.
	ErrUnsupported = errors.New("serial: unsupported platform")
	// ErrBaudRate is returned for rates without a termios speed.
	ErrBaudRate = errors.New("serial: unsupported baud rate")
)

// Config holds serial port configuration.
type Config struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud"`
	// ReadTimeout fails reads taking longer, zero blocks forever.
	ReadTimeout time.Duration `yaml:"read-timeout"`
}
