//go:build !linux

package serial

// Port is unavailable on this platform.
type Port struct {
	Config
}

// Open always fails with ErrUnsupported.
func Open(cfg Config) (*Port, error) {
	return nil, ErrUnsupported
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	return 0, ErrUnsupported
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return 0, ErrUnsupported
}

// SetBaudRate is unsupported.
func (p *Port) SetBaudRate(baud int) error {
	return ErrUnsupported
}

// Flush is unsupported.
func (p *Port) Flush() error {
	return ErrUnsupported
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return nil
}
