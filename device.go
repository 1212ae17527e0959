package pzem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// Magnitude identifies one of the device's measurement channels, in
// the fixed order a host framework enumerates them.
type Magnitude int

const (
	MagnitudeVoltage Magnitude = iota
	MagnitudeFrequency
	MagnitudeCurrent
	MagnitudePowerActive
	MagnitudePowerFactor
	MagnitudeEnergyDelta
	MagnitudeEnergy
)

// Magnitudes lists every measurement channel in display order.
var Magnitudes = []Magnitude{
	MagnitudeVoltage,
	MagnitudeFrequency,
	MagnitudeCurrent,
	MagnitudePowerActive,
	MagnitudePowerFactor,
	MagnitudeEnergyDelta,
	MagnitudeEnergy,
}

func (m Magnitude) String() string {
	switch m {
	case MagnitudeVoltage:
		return "voltage"
	case MagnitudeFrequency:
		return "frequency"
	case MagnitudeCurrent:
		return "current"
	case MagnitudePowerActive:
		return "power_active"
	case MagnitudePowerFactor:
		return "power_factor"
	case MagnitudeEnergyDelta:
		return "energy_delta"
	case MagnitudeEnergy:
		return "energy"
	}
	return "unknown"
}

// DeviceConfig carries the per-device settings. Zero values select
// the defaults.
type DeviceConfig struct {
	Address      uint8         // slave address, default 0xF8
	ReadTimeout  time.Duration // per-transaction read deadline
	PollInterval time.Duration // minimum spacing between readouts
	Logger       io.Writer     // diagnostic output, nil disables
}

// Device is the poll controller for a single energy meter. It owns its
// transport exclusively and caches the latest decoded reading plus the
// energy used since the reading before it.
//
// All methods must be called from a single goroutine; the protocol is
// strictly one request, one reply.
type Device struct {
	drv          *Driver
	pollInterval time.Duration
	logger       io.Writer
	now          func() time.Time

	lastUpdate   time.Time
	resetPending bool

	lastReading Reading
	energyDelta float64 // watt-seconds
	err         error
}

// NewDevice creates a poll controller over the given transport. Create
// one Device per (transport, address) pair.
func NewDevice(port Port, cfg DeviceConfig) *Device {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	drv := NewDriver(port, cfg.Address, cfg.ReadTimeout)
	drv.SetLogger(cfg.Logger)

	d := &Device{
		drv:          drv,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
		now:          time.Now,
	}
	// Backdate so the first Poll reads immediately.
	d.lastUpdate = d.now().Add(-cfg.PollInterval)
	return d
}

// RequestEnergyReset queues an energy counter reset. The transaction
// itself runs at the start of the next Poll, keeping the decision of
// when to talk to the bus with the poll schedule.
func (d *Device) RequestEnergyReset() {
	d.resetPending = true
}

// Poll is one scheduler tick: drain the transport, service a pending
// energy reset, then read measurements if the poll interval elapsed.
// The timestamp advances regardless of the read outcome, a failed poll
// waits a full interval before the next attempt.
func (d *Device) Poll() {
	d.drv.port.Flush()

	if d.resetPending {
		ok := d.resetEnergy()
		if d.logger != nil {
			status := "OK"
			if !ok {
				status = "FAIL"
			}
			fmt.Fprintf(d.logger, "INFO: pzem: energy reset - %s\n", status)
		}
		d.resetPending = false
		d.drv.port.Flush()
	}

	if d.now().Sub(d.lastUpdate) > d.pollInterval {
		d.readValues()
		d.lastUpdate = d.now()
	}
}

// readValues performs the full measurement readout: registers 0..9 in
// one ReadInput transaction.
func (d *Device) readValues() {
	d.err = nil

	req := NewFrame(d.drv.address, FuncCodeReadInput).
		AddWord(0).
		AddWord(MeasurementRegisters).
		Finalize()

	resp, err := d.drv.Execute(req)
	if err != nil {
		var exc *ExceptionError
		if errors.As(err, &exc) {
			// The device understood us and said no. Not a
			// transport fault, so the error status stays clear.
			if d.logger != nil {
				fmt.Fprintf(d.logger, "WARNING: %v\n", err)
			}
			return
		}
		d.err = err
		if d.logger != nil {
			fmt.Fprintf(d.logger, "ERROR: %v\n", err)
		}
		return
	}

	reading := ParseReading(resp)
	if !reading.OK {
		if d.logger != nil {
			fmt.Fprintf(d.logger, "WARNING: pzem: could not parse latest reading\n")
		}
		return
	}

	// No delta on the very first successful reading, there is no
	// baseline to diff against.
	if d.lastReading.OK {
		d.energyDelta = EnergyDelta(d.lastReading.EnergyActive, reading.EnergyActive)
	}
	d.lastReading = reading
}

// resetEnergy issues the vendor reset command. The function takes no
// parameters and, per the manual, a successful slave returns the data
// which was sent from the master.
func (d *Device) resetEnergy() bool {
	req := NewFrame(d.drv.address, FuncCodeResetEnergy).Finalize()

	resp, err := d.drv.Execute(req)
	if err != nil {
		if d.logger != nil {
			fmt.Fprintf(d.logger, "ERROR: pzem: energy reset: %v\n", err)
		}
		return false
	}

	return bytes.Equal(resp, req.Bytes())
}

// ChangeAddress writes a new slave address to the device, verified by
// verbatim echo. Only needed with multiple devices on the line; note
// the factory default 0xF8 would address all of them at once.
func (d *Device) ChangeAddress(to uint8) error {
	if d.drv.address == to {
		return nil
	}

	d.drv.port.Flush()

	req := NewFrame(d.drv.address, FuncCodeWriteSingle).
		AddWord(AddressRegister).
		AddWord(uint16(to)).
		Finalize()

	resp, err := d.drv.Execute(req)
	if err != nil {
		return err
	}
	if !bytes.Equal(resp, req.Bytes()) {
		return errors.New("pzem: address change not acknowledged")
	}

	// The local copy validates every subsequent response, it has to
	// move together with the committed change.
	d.drv.address = to
	return nil
}

// LastReading returns the latest decoded snapshot. OK is false until
// the first successful readout.
func (d *Device) LastReading() Reading {
	return d.lastReading
}

// EnergyDelta returns the energy used between the last two readings,
// in watt-seconds.
func (d *Device) EnergyDelta() float64 {
	return d.energyDelta
}

// Err returns the transport error of the current poll cycle, if any.
// It is cleared at the start of the next read attempt. Protocol
// exceptions and decode skips do not set it.
func (d *Device) Err() error {
	return d.err
}

// Value returns the current value of one measurement channel.
func (d *Device) Value(m Magnitude) float64 {
	switch m {
	case MagnitudeVoltage:
		return d.lastReading.Voltage
	case MagnitudeFrequency:
		return d.lastReading.Frequency
	case MagnitudeCurrent:
		return d.lastReading.Current
	case MagnitudePowerActive:
		return d.lastReading.PowerActive
	case MagnitudePowerFactor:
		return d.lastReading.PowerFactor
	case MagnitudeEnergyDelta:
		return d.energyDelta
	case MagnitudeEnergy:
		return d.lastReading.EnergyActive
	}
	return 0
}

// Alarm reports the meter's power alarm flag from the last reading.
func (d *Device) Alarm() bool {
	return d.lastReading.Alarm
}

// Address returns the slave address as a display string.
func (d *Device) Address() string {
	return fmt.Sprintf("%02x", d.drv.address)
}

// Description identifies the device and its transport for display.
func (d *Device) Description() string {
	return fmt.Sprintf("PZEM004T V3.0 @ %sSerial, 0x%02x", d.drv.port.Tag(), d.drv.address)
}
