package envelope

import (
	"math"
	"testing"
)

func TestApplyFadeEndpointsNearZero(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 1.0
	}
	ApplyFade(samples, 8000, 10)
	if math.Abs(samples[0]) > 1e-9 {
		t.Fatalf("samples[0] = %v, want ~0", samples[0])
	}
	if math.Abs(samples[len(samples)-1]) > 1e-9 {
		t.Fatalf("last sample = %v, want ~0", samples[len(samples)-1])
	}
	mid := len(samples) / 2
	if samples[mid] < 0.99 {
		t.Fatalf("midpoint sample = %v, want ~1", samples[mid])
	}
}

func TestApplyFadeNoOpWhenTooLong(t *testing.T) {
	samples := []float64{1, 1, 1}
	before := append([]float64{}, samples...)
	ApplyFade(samples, 8000, 1000)
	for i := range samples {
		if samples[i] != before[i] {
			t.Fatalf("ApplyFade modified samples when fade exceeds buffer length")
		}
	}
}

func TestApplyFadeZeroMs(t *testing.T) {
	samples := []float64{1, 1, 1, 1}
	before := append([]float64{}, samples...)
	ApplyFade(samples, 8000, 0)
	for i := range samples {
		if samples[i] != before[i] {
			t.Fatalf("ApplyFade(0ms) should be a no-op")
		}
	}
}
