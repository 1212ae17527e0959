package pzem

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Driver executes single Modbus-RTU transactions against one device on
// one transport. Transactions are strictly serial: Execute runs to
// completion (or timeout) before control returns, there is never more
// than one outstanding request. A transport must not be shared between
// driver instances, responses carry no sequence id and are correlated
// by address and function code only.
type Driver struct {
	port        Port
	address     uint8
	readTimeout time.Duration
	logger      io.Writer
	now         func() time.Time
}

// NewDriver creates a driver for the device at the given slave address.
// A zero address selects the factory default 0xF8, a zero timeout the
// default read timeout.
func NewDriver(port Port, address uint8, readTimeout time.Duration) *Driver {
	if address == 0 {
		address = DefaultAddress
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Driver{
		port:        port,
		address:     address,
		readTimeout: readTimeout,
		now:         time.Now,
	}
}

// SetLogger sets the writer for diagnostic output. A nil writer
// disables logging.
func (d *Driver) SetLogger(w io.Writer) {
	d.logger = w
}

// Address returns the slave address used to build requests and
// validate responses.
func (d *Driver) Address() uint8 {
	return d.address
}

// Execute writes the finalized frame and reads back its reply.
//
// The read loop is bounded by a wall-clock deadline and resynchronizes
// byte by byte: nothing is buffered until the expected device address
// shows up, so stray bytes left over from a previous garbled exchange
// are skipped without needing a framing delimiter. The second byte
// must be the request's function code or its error-masked variant; the
// latter revises the expected length to the fixed exception reply.
//
// On success the full validated ADU is returned, including address,
// function code and CRC. A nil, nil return means the function code
// expects no reply at all.
func (d *Driver) Execute(f *Frame) ([]byte, error) {
	if !f.Finalized() {
		return nil, ErrNotFinalized
	}

	if _, err := d.port.Write(f.Bytes()); err != nil {
		return nil, fmt.Errorf("pzem: transport write failed: %w", err)
	}

	expect := f.ExpectedResponseLength()
	if expect == 0 {
		return nil, nil
	}

	code := f.Code()
	errCode := ErrorMask | code

	buf := make([]byte, 0, expect)
	deadline := d.now().Add(d.readTimeout)

	for len(buf) < expect && d.now().Before(deadline) {
		c, ok := d.port.TryReadByte()
		if !ok {
			continue
		}

		if len(buf) == 0 && c != d.address {
			continue
		}

		if len(buf) == 1 {
			if c == errCode {
				expect = ExceptionResponseLength
			} else if c != code {
				// Not our frame after all. Restart the
				// address search, dropping this byte too.
				buf = buf[:0]
				continue
			}
		}

		buf = append(buf, c)
	}

	if len(buf) > 0 && d.logger != nil {
		fmt.Fprintf(d.logger, "DEBUG: pzem: received %s (%d bytes)\n", formatHex(buf), len(buf))
	}

	if len(buf) != expect {
		return nil, fmt.Errorf("pzem: expected %d bytes, got %d: %w", expect, len(buf), ErrShortResponse)
	}

	got := uint16(buf[len(buf)-1])<<8 | uint16(buf[len(buf)-2])
	want := CRC16(buf[:len(buf)-2])
	if want != got {
		return nil, &CRCError{Want: want, Got: got}
	}

	if buf[1]&ErrorMask != 0 {
		return nil, &ExceptionError{Code: buf[2]}
	}

	return buf, nil
}

// formatHex renders a byte slice as space-separated hex pairs for
// diagnostic output.
func formatHex(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}
