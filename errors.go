package pzem

import (
	"errors"
	"fmt"
)

// ErrNotFinalized is returned when a frame is handed to the executor
// before its CRC was appended.
var ErrNotFinalized = errors.New("pzem: frame not finalized")

// ErrShortResponse is the generic transport failure: the read deadline
// elapsed before the expected number of bytes arrived.
var ErrShortResponse = errors.New("pzem: response timeout or short read")

// CRCError reports a response whose trailing CRC did not match the
// checksum computed over the received bytes.
type CRCError struct {
	Want uint16 // computed
	Got  uint16 // received
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("pzem: CRC mismatch: computed %04X, received %04X", e.Want, e.Got)
}

// ExceptionError is a protocol-level negative acknowledgement: the
// device understood the request and refused it. It is a valid reply,
// not a transport fault.
type ExceptionError struct {
	Code uint8
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("pzem: device exception 0x%02X: %s", e.Code, exceptionMessage(e.Code))
}

// exceptionMessage translates a Modbus exception code to a
// human-readable reason.
func exceptionMessage(code uint8) string {
	switch code {
	case 0x01:
		return "Illegal function"
	case 0x02:
		return "Illegal data address"
	case 0x03:
		return "Illegal data value"
	case 0x04:
		return "Device failure"
	case 0x05:
		return "Acknowledged"
	case 0x06:
		return "Busy"
	case 0x08:
		return "Memory parity error"
	default:
		return "Unknown"
	}
}
