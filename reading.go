package pzem

// Measuring ranges per the PZEM-004T v3.0 datasheet:
// (name, range, resolution, accuracy)
//  1. Voltage         80~260V       0.1V      0.5%
//  2. Current         0~10A/0~100A  0.001A    0.5%
//  3. Active power    0~2.3kW/23kW  0.1W      0.5%
//  4. Active energy   0~9999.99kWh  1Wh       0.5%
//  5. Frequency       45~65Hz       0.1Hz     0.5%
//  6. Power factor    0.00~1.00     0.01      1%

// Reading is a decoded measurement snapshot. OK stays false until a
// full readout was decoded successfully.
type Reading struct {
	Voltage      float64 // V
	Current      float64 // A
	PowerActive  float64 // W
	EnergyActive float64 // kWh
	Frequency    float64 // Hz
	PowerFactor  float64 // %
	Alarm        bool
	OK           bool
}

// fullReadoutSize is the complete measurement reply: address +
// function + byte count + 10 registers + CRC.
const fullReadoutSize = 3 + 2*int(MeasurementRegisters) + 2

// ParseReading decodes a validated full-readout ADU into calibrated
// physical values. Anything other than the exact full-readout length
// yields Reading{OK: false} and the caller keeps its previous snapshot.
//
// Registers are big-endian 16-bit words. The four-byte quantities
// (current, power, energy) are word-swapped on the wire: low word
// first, high word second, each word itself big-endian.
func ParseReading(buf []byte) Reading {
	var out Reading

	if len(buf) != fullReadoutSize {
		return out
	}

	data := buf[3 : len(buf)-2]
	word := func(i int) uint32 {
		return uint32(data[i])<<8 | uint32(data[i+1])
	}
	dword := func(i int) uint32 {
		return word(i+2)<<16 | word(i)
	}

	out.Voltage = float64(word(0)) / 10        // 0.1 V units
	out.Current = float64(dword(2)) / 1000     // 0.001 A units
	out.PowerActive = float64(dword(6)) / 10   // 0.1 W units
	out.EnergyActive = float64(dword(10)) / 1000 // Wh units, kept as kWh
	out.Frequency = float64(word(14)) / 10     // 0.1 Hz units
	out.PowerFactor = float64(word(16))        // already a percentage

	// The manual leaves the alarm word undocumented; observed values
	// are 0xFFFF for on and 0x0000 for off. Anything else is treated
	// as off, which is an assumption rather than a verified contract.
	out.Alarm = data[18] == 0xFF && data[19] == 0xFF

	out.OK = true
	return out
}

// EnergyDelta computes the increase of the cumulative energy counter
// between two polls, in watt-seconds. The counter wraps at EnergyMax,
// so a current value below the previous one means wraparound, not a
// reset.
func EnergyDelta(last, current float64) float64 {
	var kwh float64
	if last > current {
		kwh = current + (EnergyMax - last)
	} else {
		kwh = current - last
	}
	return kwh * 3600 * 1000
}
