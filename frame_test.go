package pzem

import (
	"bytes"
	"testing"
)

func TestFrameBuild(t *testing.T) {
	f := NewFrame(DefaultAddress, FuncCodeReadInput).
		AddWord(0).
		AddWord(MeasurementRegisters).
		Finalize()

	b := f.Bytes()
	if len(b) != 8 {
		t.Fatalf("read request should be 8 bytes, got %d", len(b))
	}
	if !f.Finalized() {
		t.Error("frame should be locked after Finalize")
	}

	want := []byte{0xF8, 0x04, 0x00, 0x00, 0x00, 0x0A}
	if !bytes.Equal(b[:6], want) {
		t.Errorf("frame header mismatch: got % X, want % X", b[:6], want)
	}

	crc := CRC16(b[:6])
	if b[6] != uint8(crc) || b[7] != uint8(crc>>8) {
		t.Errorf("CRC not appended low byte first: got % X for crc %#04x", b[6:], crc)
	}
}

func TestFrameWordOrder(t *testing.T) {
	f := NewFrame(0x01, FuncCodeWriteSingle).AddWord(0x1234)
	b := f.Bytes()
	if b[2] != 0x12 || b[3] != 0x34 {
		t.Errorf("words must be appended big-endian, got % X", b[2:4])
	}
}

func TestFrameLockedAfterFinalize(t *testing.T) {
	f := NewFrame(0x01, FuncCodeResetEnergy).Finalize()
	size := len(f.Bytes())

	f.AddByte(0xAA).AddWord(0xBBCC).Finalize()
	if len(f.Bytes()) != size {
		t.Errorf("writes after Finalize must be dropped: size grew from %d to %d", size, len(f.Bytes()))
	}
}

func TestFrameCapacity(t *testing.T) {
	f := NewFrame(0x01, FuncCodeReadInput)
	for i := 0; i < 100; i++ {
		f.AddByte(uint8(i))
	}
	if len(f.Bytes()) > FrameSize {
		t.Fatalf("frame exceeded its capacity: %d bytes", len(f.Bytes()))
	}

	// A frame too full to still fit the CRC never locks, and a frame
	// that never locked predicts no reply.
	f.Finalize()
	if f.Finalized() {
		t.Error("overfull frame should not finalize")
	}
	if got := f.ExpectedResponseLength(); got != 0 {
		t.Errorf("unfinalized frame should expect no reply, got %d", got)
	}
}

func TestExpectedResponseLength(t *testing.T) {
	testCases := []struct {
		name  string
		frame *Frame
		want  int
	}{
		{
			name:  "read 10 registers",
			frame: NewFrame(0xF8, FuncCodeReadInput).AddWord(0).AddWord(10).Finalize(),
			want:  25, // 3 + 2*10 + 2
		},
		{
			name:  "read 1 register",
			frame: NewFrame(0xF8, FuncCodeReadInput).AddWord(0).AddWord(1).Finalize(),
			want:  7,
		},
		{
			name:  "write single register echoes the request",
			frame: NewFrame(0xF8, FuncCodeWriteSingle).AddWord(2).AddWord(0x10).Finalize(),
			want:  8,
		},
		{
			name:  "reset energy echoes the request",
			frame: NewFrame(0xF8, FuncCodeResetEnergy).Finalize(),
			want:  4,
		},
		{
			name:  "unknown function code",
			frame: NewFrame(0xF8, 0x41).Finalize(),
			want:  0,
		},
		{
			name:  "read without a register count word",
			frame: NewFrame(0xF8, FuncCodeReadInput).Finalize(),
			want:  0,
		},
		{
			name:  "not finalized",
			frame: NewFrame(0xF8, FuncCodeReadInput).AddWord(0).AddWord(10),
			want:  0,
		},
	}

	for _, tc := range testCases {
		if got := tc.frame.ExpectedResponseLength(); got != tc.want {
			t.Errorf("%s: expected length %d, got %d", tc.name, tc.want, got)
		}
	}
}
