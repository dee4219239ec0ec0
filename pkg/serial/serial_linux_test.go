//go:build linux

package serial

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// openPTY returns the master side and the device path of the slave side.
func openPTY(t *testing.T) (*os.File, string) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	t.Cleanup(func() { master.Close() })
	fd := int(master.Fd())
	require.NoError(t, unix.IoctlSetPointerInt(fd, unix.TIOCSPTLCK, 0))
	n, err := unix.IoctlGetUint32(fd, unix.TIOCGPTN)
	require.NoError(t, err)
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

func TestSpeedOf(t *testing.T) {
	speed, err := speedOf(9600)
	require.NoError(t, err)
	require.Equal(t, uint32(unix.B9600), speed)
	speed, err = speedOf(115200)
	require.NoError(t, err)
	require.Equal(t, uint32(unix.B115200), speed)
	_, err = speedOf(12345)
	require.True(t, errors.Is(err, ErrBaudRate))
}

func TestPort(t *testing.T) {
	master, dev := openPTY(t)
	port, err := Open(Config{Device: dev, BaudRate: 19200, ReadTimeout: time.Second})
	require.NoError(t, err)
	defer port.Close()

	_, err = master.Write([]byte{0x00, 0x55, 0x42})
	require.NoError(t, err)
	buf := make([]byte, 3)
	_, err = io.ReadFull(port, buf)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x55, 0x42}, buf)

	_, err = port.Write([]byte{0xf0})
	require.NoError(t, err)
	_, err = io.ReadFull(master, buf[:1])
	require.NoError(t, err)
	require.Equal(t, byte(0xf0), buf[0])

	require.NoError(t, port.SetBaudRate(9600))
	require.Equal(t, 9600, port.BaudRate)
	require.NoError(t, port.SetBaudRate(115200))
	require.Equal(t, 115200, port.BaudRate)
	require.Error(t, port.SetBaudRate(12345))
	require.Equal(t, 115200, port.BaudRate)
}

func TestPortReadTimeout(t *testing.T) {
	_, dev := openPTY(t)
	port, err := Open(Config{Device: dev, BaudRate: 115200, ReadTimeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer port.Close()
	_, err = port.Read(make([]byte, 1))
	require.True(t, errors.Is(err, os.ErrDeadlineExceeded))
}

func TestPortCloseUnblocksRead(t *testing.T) {
	_, dev := openPTY(t)
	port, err := Open(Config{Device: dev, BaudRate: 115200})
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() {
		_, err := port.Read(make([]byte, 1))
		errCh <- err
	}()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, port.Close())
	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("read not interrupted")
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(Config{Device: "/dev/null", BaudRate: 12345})
	require.True(t, errors.Is(err, ErrBaudRate))
	_, err = Open(Config{Device: "/nonexistent/tty", BaudRate: 9600})
	require.Error(t, err)
}
