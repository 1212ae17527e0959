package pzem

import "time"

// The PZEM-004T v3.0 speaks Modbus-RTU and implements only a small
// subset of function codes:
//   - 0x04 Read Input Register (measurement readout)
//   - 0x06 Write Single Register (set device address)
//   - 0x42 Reset Energy (vendor-specific, resets the counter to zero)
const (
	FuncCodeReadInput   uint8 = 0x04
	FuncCodeWriteSingle uint8 = 0x06
	FuncCodeResetEnergy uint8 = 0x42
)

// ErrorMask is set on the function code byte of an exception response.
const ErrorMask uint8 = 0x80

// FrameSize is the fixed ADU capacity. The Modbus serial line maximum
// is 256 bytes, but the largest exchange with this peripheral is the
// 10-register readout: 1 address + 1 function + 1 byte count + 20 data
// + 2 CRC.
const FrameSize = 25

// ExceptionResponseLength is address + error function code + exception
// code + 2 CRC bytes.
const ExceptionResponseLength = 5

// DefaultAddress is the factory default slave address. It cannot be
// used with multiple devices on the same line.
const DefaultAddress uint8 = 0xF8

// AddressRegister is the holding register that stores the slave
// address, written via FuncCodeWriteSingle.
const AddressRegister uint16 = 2

// MeasurementRegisters is the full input register map of the meter.
// The layout is fixed by the peripheral, there is nothing else to read.
const MeasurementRegisters uint16 = 10

// Baudrate is the only rate the peripheral supports.
const Baudrate = 9600

// The PZEM manual does not specify timing, these match what the meter
// is known to handle comfortably.
const (
	DefaultReadTimeout  = 200 * time.Millisecond
	DefaultPollInterval = 200 * time.Millisecond
)

// EnergyMax is the ceiling of the cumulative energy counter in kWh.
// The counter wraps to zero past it rather than growing unbounded.
const EnergyMax = 10000.0
