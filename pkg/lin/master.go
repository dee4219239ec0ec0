package lin

import (
	"io"
	"sync"
)

// Master drives frames from the master side. It's used for bench testing
// a node without a real LIN master.
type Master struct {
	Transport io.ReadWriter
	// Echo should be set when transmitted bytes are received back,
	// like on a LIN transceiver. The echo is discarded.
	Echo bool

	lock sync.Mutex
}

// NewMaster creates a Master.
func NewMaster(rw io.ReadWriter) *Master {
	return &Master{Transport: rw}
}

// Send transmits a command frame with data.
func (m *Master) Send(frameID byte, data []byte) error {
	if len(data) > MaxDataLen {
		return ErrDataLength
	}
	f := Frame{PID: NewPID(frameID), Data: data}
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.write(append(f.Header(), f.Bytes()...))
}

// Request transmits a header and reads a response of size bytes.
func (m *Master) Request(frameID byte, size int) ([]byte, error) {
	if size < 0 || size > MaxDataLen {
		return nil, ErrDataLength
	}
	f := Frame{PID: NewPID(frameID)}
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.write(f.Header()); err != nil {
		return nil, err
	}
	buf := make([]byte, size+1)
	if _, err := io.ReadFull(m.Transport, buf); err != nil {
		return nil, err
	}
	f.Data = buf[:size]
	if err := f.Verify(buf[size]); err != nil {
		return nil, err
	}
	return f.Data, nil
}

func (m *Master) write(p []byte) error {
	if _, err := m.Transport.Write(p); err != nil {
		return err
	}
	if m.Echo {
		_, err := io.ReadFull(m.Transport, make([]byte, len(p)))
		return err
	}
	return nil
}
