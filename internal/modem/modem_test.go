package modem

import "testing"

const testSampleRate = 8000.0

func TestAFSKRoundTrip(t *testing.T) {
	tones := []int{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1}
	samples := AFSKToSamples(tones, testSampleRate, 1200, 1200, 2200, -3, 10)
	got := DemodAFSK(samples, testSampleRate, 1200, 0, 1200, 2200)
	if len(got) < len(tones) {
		t.Fatalf("got %d tones, want at least %d", len(got), len(tones))
	}
	for i, want := range tones {
		if got[i] != want {
			t.Fatalf("tone %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestGFSKRoundTrip(t *testing.T) {
	tones := []int{1, 1, 0, 0, 1, 0, 1, 0, 0, 1, 1, 1}
	samples := GFSKToSamples(tones, testSampleRate, 1200, 880, 1320, -3, 20, 1.0, 4)
	got := DemodAFSK(samples, testSampleRate, 1200, 0, 880, 1320)
	if len(got) < len(tones) {
		t.Fatalf("got %d tones, want at least %d", len(got), len(tones))
	}
	for i, want := range tones {
		if got[i] != want {
			t.Fatalf("tone %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestMFSKRoundTrip(t *testing.T) {
	bits := []int{1, 0, 0, 1, 1, 1, 0, 0, 1, 0}
	tones := []float64{600, 900, 1200, 1500}
	samples, err := MFSKToSamples(bits, testSampleRate, 600, tones, 2, -3, 20)
	if err != nil {
		t.Fatalf("MFSKToSamples: %v", err)
	}
	got := DemodMFSK(samples, testSampleRate, 600, 0, tones, 2)
	if len(got) < len(bits) {
		t.Fatalf("got %d bits, want at least %d", len(got), len(bits))
	}
	for i, want := range bits {
		if got[i] != want {
			t.Fatalf("bit %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestMFSKRejectsTooFewTones(t *testing.T) {
	_, err := MFSKToSamples([]int{1, 0}, testSampleRate, 600, []float64{600, 900}, 2, -3, 0)
	if err == nil {
		t.Fatalf("expected error for insufficient tone table")
	}
}
