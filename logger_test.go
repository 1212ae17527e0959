package pzem

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	var out bytes.Buffer
	logger := NewSimpleLogger(&out, LevelWarning, "TEST")
	defer logger.Close()

	logger.Write([]byte("DEBUG: filtered"))
	logger.Write([]byte("INFO: filtered too"))
	logger.Write([]byte("WARNING: shown"))
	logger.Write([]byte("ERROR: shown as well"))
	logger.Write([]byte("unprefixed counts as info"))

	got := out.String()
	if strings.Contains(got, "filtered") {
		t.Errorf("messages below WARNING should be dropped, got:\n%s", got)
	}
	if !strings.Contains(got, "shown") || !strings.Contains(got, "shown as well") {
		t.Errorf("WARNING and ERROR messages missing, got:\n%s", got)
	}
	if !strings.Contains(got, "<TEST>") {
		t.Errorf("tag missing from output, got:\n%s", got)
	}
}

func TestLoggerLevelNone(t *testing.T) {
	var out bytes.Buffer
	logger := NewSimpleLogger(&out, LevelNone, "TEST")
	defer logger.Close()

	logger.Write([]byte("ERROR: still dropped"))
	if out.Len() != 0 {
		t.Errorf("LevelNone must drop everything, got:\n%s", out.String())
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "Warning", want: LevelWarning},
		{in: "ERROR", want: LevelError},
		{in: "none", want: LevelNone},
		{in: "verbose", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := ParseLevel(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
