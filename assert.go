package pzem

import (
	"math"
	"testing"
)

// assertFloatEqual checks two float64 values with a small tolerance.
func assertFloatEqual(t *testing.T, expected, actual float64) {
	t.Helper()
	if math.Abs(expected-actual) > 1e-6 {
		t.Errorf("Expected %v, but got %v", expected, actual)
	}
}
