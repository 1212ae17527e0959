package pzem

import "io"

// Port is the abstract half-duplex byte stream the driver talks over.
// The driver never sees a concrete transport type; anything that can
// write a frame, hand out single bytes without blocking indefinitely
// and discard stale input will do.
type Port interface {
	// Write transmits the frame bytes.
	Write(p []byte) (int, error)
	// TryReadByte attempts a non-blocking single-byte read. The
	// second return value is false when no data is available.
	TryReadByte() (byte, bool)
	// Flush discards any unread bytes left on the transport.
	Flush()
	// Tag identifies the transport for display ("Hw", "Sw", ...).
	Tag() string
}

// SerialPort adapts a serial connection (github.com/hootrhino/goserial
// or anything else exposing io.ReadWriteCloser) to the Port interface.
// The underlying port must be opened with a short read timeout, a
// timed-out read is how "no data available" is observed.
type SerialPort struct {
	rw  io.ReadWriteCloser
	tag string
	one [1]byte
}

// NewSerialPort wraps an open serial connection.
func NewSerialPort(rw io.ReadWriteCloser, tag string) *SerialPort {
	return &SerialPort{rw: rw, tag: tag}
}

func (p *SerialPort) Write(b []byte) (int, error) {
	return p.rw.Write(b)
}

// TryReadByte treats every read failure, timeouts included, as "no
// data". Persistent transport faults then surface as a short response
// on the transaction, which is the only error the protocol layer can
// act on anyway.
func (p *SerialPort) TryReadByte() (byte, bool) {
	n, err := p.rw.Read(p.one[:])
	if err != nil || n == 0 {
		return 0, false
	}
	return p.one[0], true
}

func (p *SerialPort) Flush() {
	for {
		if _, ok := p.TryReadByte(); !ok {
			return
		}
	}
}

func (p *SerialPort) Tag() string {
	return p.tag
}

// Close closes the underlying serial connection.
func (p *SerialPort) Close() error {
	return p.rw.Close()
}
