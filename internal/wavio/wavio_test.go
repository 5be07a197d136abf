package wavio

import (
	"math"
	"testing"
)

func TestPCM16RoundTrip(t *testing.T) {
	samples := []float64{0, 0.5, -0.5, 1, -1, 0.25}
	wav := EncodeSamples(samples, 8000, PCM16)
	data, err := DecodeSamples(wav)
	if err != nil {
		t.Fatalf("DecodeSamples: %v", err)
	}
	if data.SampleRate != 8000 || data.Channels != 1 || data.Format != PCM16 {
		t.Fatalf("unexpected metadata: %+v", data)
	}
	if len(data.Samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(data.Samples), len(samples))
	}
	for i, want := range samples {
		if math.Abs(data.Samples[i]-want) > 1e-3 {
			t.Fatalf("sample %d = %v, want ~%v", i, data.Samples[i], want)
		}
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	samples := []float64{0, 0.123, -0.456, 0.999}
	wav := EncodeSamples(samples, 44100, Float32)
	data, err := DecodeSamples(wav)
	if err != nil {
		t.Fatalf("DecodeSamples: %v", err)
	}
	if data.Format != Float32 {
		t.Fatalf("format = %s, want float32", data.Format)
	}
	for i, want := range samples {
		if math.Abs(data.Samples[i]-want) > 1e-6 {
			t.Fatalf("sample %d = %v, want ~%v", i, data.Samples[i], want)
		}
	}
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	if _, err := DecodeSamples([]byte("not a wav")); err != ErrInvalidHeader {
		t.Fatalf("err = %v, want ErrInvalidHeader", err)
	}
}

func TestDecodeAveragesChannels(t *testing.T) {
	buf := EncodeSamples([]float64{1, -1}, 8000, PCM16)
	buf[22] = 2 // channels = 2, one stereo frame of the same two samples

	data, err := DecodeSamples(buf)
	if err != nil {
		t.Fatalf("DecodeSamples: %v", err)
	}
	if data.Channels != 2 {
		t.Fatalf("Channels = %d, want 2", data.Channels)
	}
	if len(data.Samples) != 1 {
		t.Fatalf("got %d frames, want 1", len(data.Samples))
	}
	if math.Abs(data.Samples[0]) > 1e-3 {
		t.Fatalf("averaged sample = %v, want ~0", data.Samples[0])
	}
}
