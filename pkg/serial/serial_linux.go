//go:build linux

package serial

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var speeds = map[int]uint32{
	1200:    unix.B1200,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

func speedOf(baud int) (uint32, error) {
	if speed, ok := speeds[baud]; ok {
		return speed, nil
	}
	return 0, fmt.Errorf("%w %d", ErrBaudRate, baud)
}

// Port is a raw 8N1 serial port. The descriptor is non-blocking underneath
// so a pending Read is interrupted by Close.
type Port struct {
	Config

	file       *os.File
	lock       sync.Mutex
	oldTermios *unix.Termios
}

// Open opens and configures a serial port.
func Open(cfg Config) (*Port, error) {
	speed, err := speedOf(cfg.BaudRate)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Open(cfg.Device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}
	oldTermios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: get termios: %w", err)
	}

	termios := *oldTermios
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	termios.Oflag &^= unix.OPOST
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.PARODD | unix.CSTOPB | unix.CRTSCTS
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0
	setSpeed(&termios, speed)
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &termios); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: set termios: %w", err)
	}
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("serial: flush: %w", err)
	}

	return &Port{
		Config:     cfg,
		file:       os.NewFile(uintptr(fd), cfg.Device),
		oldTermios: oldTermios,
	}, nil
}

func setSpeed(termios *unix.Termios, speed uint32) {
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= speed
	termios.Ispeed = speed
	termios.Ospeed = speed
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	if p.ReadTimeout > 0 {
		if err := p.file.SetReadDeadline(time.Now().Add(p.ReadTimeout)); err != nil {
			return 0, err
		}
	}
	return p.file.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// SetBaudRate changes the baud rate after pending output is transmitted.
func (p *Port) SetBaudRate(baud int) error {
	speed, err := speedOf(baud)
	if err != nil {
		return err
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if baud == p.BaudRate {
		return nil
	}
	err = p.control(func(fd int) error {
		termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
		if err != nil {
			return err
		}
		setSpeed(termios, speed)
		return unix.IoctlSetTermios(fd, unix.TCSETSW, termios)
	})
	if err != nil {
		return fmt.Errorf("serial: set baud rate %d: %w", baud, err)
	}
	p.BaudRate = baud
	return nil
}

// Flush discards received but unread data.
func (p *Port) Flush() error {
	return p.control(func(fd int) error {
		return unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH)
	})
}

// Close restores the original settings and closes the port.
func (p *Port) Close() error {
	p.control(func(fd int) error {
		return unix.IoctlSetTermios(fd, unix.TCSETS, p.oldTermios)
	})
	return p.file.Close()
}

func (p *Port) control(fn func(fd int) error) error {
	conn, err := p.file.SyscallConn()
	if err != nil {
		return err
	}
	var opErr error
	if err := conn.Control(func(fd uintptr) {
		opErr = fn(int(fd))
	}); err != nil {
		return err
	}
	return opErr
}
