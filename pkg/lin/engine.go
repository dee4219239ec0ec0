package lin

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/linnode/pkg/framework"
)

// Handler provides the board specific mapping of frames.
// The Engine calls BuildResponse first, ExpectedCommandLength only when no
// response is built, and HandleCommand only when a command frame passes
// checksum validation.
type Handler interface {
	// BuildResponse prepares the data (0-8 bytes) for a frame this node
	// publishes. It returns false if the node doesn't publish the frame.
	BuildResponse(frameID byte) ([]byte, bool)
	// ExpectedCommandLength returns the data length of a frame the node
	// subscribes to. It returns false if the node doesn't subscribe to the frame.
	ExpectedCommandLength(frameID byte) (int, bool)
	// HandleCommand processes the data of a validated command frame.
	HandleCommand(frameID byte, data []byte)
}

// Stats are counters of processed frame attempts.
type Stats struct {
	Frames         uint64 // headers with a valid PID
	Responses      uint64
	Commands       uint64
	Unknown        uint64
	InvalidSync    uint64
	InvalidPID     uint64
	ChecksumErrors uint64
}

// Engine is the LIN slave frame engine. It owns the transport exclusively.
type Engine struct {
	Transport io.ReadWriter
	Handler   Handler

	scanner Scanner
	buf     [MaxDataLen + 1]byte

	frames, responses, commands, unknown  atomic.Uint64
	invalidSync, invalidPID, checksumErrs atomic.Uint64
}

// NewEngine creates an Engine.
func NewEngine(rw io.ReadWriter, h Handler) *Engine {
	return &Engine{Transport: rw, Handler: h}
}

// Name implements Named.
func (e *Engine) Name() string {
	return "lin"
}

// Stats returns a snapshot of counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Frames:         e.frames.Load(),
		Responses:      e.responses.Load(),
		Commands:       e.commands.Load(),
		Unknown:        e.unknown.Load(),
		InvalidSync:    e.invalidSync.Load(),
		InvalidPID:     e.invalidPID.Load(),
		ChecksumErrors: e.checksumErrs.Load(),
	}
}

// Run implements Runnable. Cancelling ctx closes the transport if it's
// an io.Closer, which is the only way to interrupt a pending read.
func (e *Engine) Run(ctx context.Context) error {
	closer, _ := e.Transport.(io.Closer)
	return fx.RunWithContextCloser(ctx, closer, func() error {
		for {
			if err := e.Step(); err != nil {
				return err
			}
		}
	})
}

// Step processes one frame attempt: it reads until a header is recognized
// or dropped, then responds, receives or drops the frame. Only transport
// errors are returned.
func (e *Engine) Step() error {
	e.scanner.Reset()
	for {
		if _, err := io.ReadFull(e.Transport, e.buf[:1]); err != nil {
			return err
		}
		r := e.scanner.Scan(e.buf[0])
		switch {
		case r.Err == ErrInvalidSync:
			e.invalidSync.Add(1)
			glog.V(3).Infof("lin: drop %02x: %v", e.buf[0], r.Err)
			return nil
		case r.Err != nil:
			e.invalidPID.Add(1)
			glog.Infof("lin: drop %02x: %v", e.buf[0], r.Err)
			return nil
		case r.Header:
			return e.dispatch(r.PID)
		}
	}
}

func (e *Engine) dispatch(pid PID) error {
	e.frames.Add(1)
	id := pid.ID()
	if data, ok := e.Handler.BuildResponse(id); ok {
		if len(data) > MaxDataLen {
			glog.Errorf("lin: frame %d response of %d bytes dropped: %v", id, len(data), ErrDataLength)
			return nil
		}
		frame := Frame{PID: pid, Data: data}
		if _, err := e.Transport.Write(frame.Bytes()); err != nil {
			return err
		}
		e.responses.Add(1)
		glog.V(2).Infof("lin: frame %d response [% x]", id, data)
		return nil
	}
	if n, ok := e.Handler.ExpectedCommandLength(id); ok {
		if n < 0 || n > MaxDataLen {
			glog.Errorf("lin: frame %d expects %d bytes: %v", id, n, ErrDataLength)
			return nil
		}
		buf := e.buf[:n+1]
		if _, err := io.ReadFull(e.Transport, buf); err != nil {
			return err
		}
		frame := Frame{PID: pid, Data: buf[:n]}
		if err := frame.Verify(buf[n]); err != nil {
			e.checksumErrs.Add(1)
			glog.Infof("lin: drop [% x]: %v", buf, err)
			return nil
		}
		e.commands.Add(1)
		glog.V(2).Infof("lin: frame %d command [% x]", id, frame.Data)
		data := make([]byte, n)
		copy(data, frame.Data)
		e.Handler.HandleCommand(id, data)
		return nil
	}
	e.unknown.Add(1)
	glog.V(2).Infof("lin: frame %d unknown, dropped", id)
	return nil
}
