// Package lin provides the slave side of the LIN protocol.
package lin

// LIN frames are sent by a single master on a half-duplex bus. Every frame
// starts with a header (break, sync, PID) from the master, the payload and the
// checksum come either from the master (a command) or from one slave (a response).
//
// This package doesn't rely on hardware break detection. A break is expected
// to be received as a single 0x00 byte by the UART, so the header is recognized
// from the raw byte stream and any unexpected byte just means "this wasn't the
// start of a frame". The stream is never considered broken and the scanner
// always resynchronizes on the next break.
//
// Only the enhanced checksum (PID included) is supported, for all frames.
