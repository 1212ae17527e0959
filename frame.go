package pzem

// Frame is an outgoing application data unit, built incrementally as
// [address, function, ...payload bytes..., crc_lo, crc_hi]. A fresh
// Frame is created for every transaction and never reused.
type Frame struct {
	buf    [FrameSize]byte
	size   int
	locked bool
}

// NewFrame starts a frame for the given slave address and function code.
func NewFrame(address, code uint8) *Frame {
	f := &Frame{size: 2}
	f.buf[0] = address
	f.buf[1] = code
	return f
}

// AddByte appends a single byte. Writes after Finalize or past the
// frame capacity are dropped silently, the builder never panics.
func (f *Frame) AddByte(value uint8) *Frame {
	if !f.locked && f.size < len(f.buf) {
		f.buf[f.size] = value
		f.size++
	}
	return f
}

// AddWord appends a 16-bit value, high byte first.
func (f *Frame) AddWord(value uint16) *Frame {
	if !f.locked && f.size+1 < len(f.buf) {
		f.buf[f.size] = uint8(value >> 8)
		f.buf[f.size+1] = uint8(value)
		f.size += 2
	}
	return f
}

// Finalize appends the CRC16 over everything written so far and locks
// the frame. Note the CRC order is reversed in comparison to every
// other multi-byte field: low byte first.
func (f *Frame) Finalize() *Frame {
	if !f.locked && f.size+2 <= len(f.buf) {
		crc := CRC16(f.buf[:f.size])
		f.buf[f.size] = uint8(crc)
		f.buf[f.size+1] = uint8(crc >> 8)
		f.size += 2
		f.locked = true
	}
	return f
}

// Bytes returns the frame contents written so far.
func (f *Frame) Bytes() []byte {
	return f.buf[:f.size]
}

// Address returns the slave address the frame was built for.
func (f *Frame) Address() uint8 {
	return f.buf[0]
}

// Code returns the frame's function code.
func (f *Frame) Code() uint8 {
	return f.buf[1]
}

// Finalized reports whether the CRC has been appended.
func (f *Frame) Finalized() bool {
	return f.locked
}

// ExpectedResponseLength predicts the exact reply size for the frame's
// function code, or 0 when no reply should be read. The frame must be
// finalized first.
//
// A ReadInput reply is address + function + byte count + two bytes per
// requested register + CRC; the register count sits in the request's
// last payload word. WriteSingle and ResetEnergy are echoed verbatim
// by the device, so the reply length equals the request length.
func (f *Frame) ExpectedResponseLength() int {
	if !f.locked {
		return 0
	}

	switch f.buf[1] {
	case FuncCodeReadInput:
		if f.size >= 6 {
			count := int(f.buf[4])<<8 | int(f.buf[5])
			return 3 + 2*count + 2
		}
		return 0
	case FuncCodeWriteSingle, FuncCodeResetEnergy:
		return f.size
	default:
		return 0
	}
}
