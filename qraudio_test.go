package qraudio

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"

	"github.com/Hello10/qraudio-go/internal/profile"
)

func boolPtr(b bool) *bool { return &b }

// S1 Roundtrip (afsk-bell).
func TestRoundtripAFSKBell(t *testing.T) {
	payload := map[string]interface{}{
		"__type": "link",
		"url":    "https://example.com",
		"meta":   map[string]interface{}{"show": "QRA", "ep": float64(1)},
	}
	result, err := Encode(payload, EncodeOptions{
		SampleRate: 48000,
		Profile:    profile.AFSKBell,
		Gzip:       GzipNever,
		FEC:        boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if result.Profile != profile.AFSKBell {
		t.Fatalf("Profile = %s", result.Profile)
	}

	decoded, err := Decode(result.Samples, DecodeOptions{
		SampleRate: result.SampleRate,
		Profile:    profile.AFSKBell,
		HasProfile: true,
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Profile != profile.AFSKBell {
		t.Fatalf("decoded.Profile = %s", decoded.Profile)
	}
	assertJSONEqual(t, payload, decoded.JSON)
}

// S2 Roundtrip (mfsk).
func TestRoundtripMFSK(t *testing.T) {
	payload := map[string]interface{}{
		"__type": "link",
		"url":    "https://example.com",
		"meta":   map[string]interface{}{"show": "QRA", "ep": float64(1)},
	}
	result, err := Encode(payload, EncodeOptions{
		SampleRate: 48000,
		Profile:    profile.MFSK,
		Gzip:       GzipNever,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(result.Samples, DecodeOptions{
		SampleRate: result.SampleRate,
		Profile:    profile.MFSK,
		HasProfile: true,
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	assertJSONEqual(t, payload, decoded.JSON)
}

// Property 4: round trip for every profile, with and without gzip.
func TestRoundTripAllProfiles(t *testing.T) {
	payloads := []map[string]interface{}{
		{"message": "hello", "n": float64(42), "nested": map[string]interface{}{"ok": true}},
		{"__type": "noise", "value": float64(1)},
	}

	for _, prof := range profile.All {
		for _, payload := range payloads {
			for _, gzipMode := range []GzipMode{GzipNever, GzipAlways} {
				result, err := Encode(payload, EncodeOptions{Profile: prof, Gzip: gzipMode})
				if err != nil {
					t.Fatalf("Encode(%s): %v", prof, err)
				}
				decoded, err := Decode(result.Samples, DecodeOptions{
					SampleRate: result.SampleRate,
					Profile:    prof,
					HasProfile: true,
				})
				if err != nil {
					t.Fatalf("Decode(%s): %v", prof, err)
				}
				assertJSONEqual(t, payload, decoded.JSON)
			}
		}
	}
}

// Property 5: scanner locates payloads sandwiched in silence.
func TestScanFindsPayloadInSilence(t *testing.T) {
	payload := map[string]interface{}{"hello": "world"}
	result, err := Encode(payload, EncodeOptions{Profile: profile.AFSKBell})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	silence := make([]float64, round(float64(result.SampleRate)*0.2))
	combined := append(append(append([]float64{}, silence...), result.Samples...), silence...)

	results, err := Scan(combined, DecodeOptions{SampleRate: result.SampleRate, Profile: profile.AFSKBell, HasProfile: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one detection")
	}
	assertJSONEqual(t, payload, results[0].JSON)

	samplesPerBit := float64(result.SampleRate) / profile.Get(profile.AFSKBell).Baud
	if float64(results[0].StartSample) < float64(len(silence))-samplesPerBit {
		t.Fatalf("StartSample %d too early", results[0].StartSample)
	}
}

func lcgNoise(seed uint32) func() float64 {
	state := seed
	return func() float64 {
		state = 1664525*state + 1013904223
		return float64(state) / float64(0xFFFFFFFF)
	}
}

func addWhiteNoise(samples []float64, snrDB float64, seed uint32) []float64 {
	rand := lcgNoise(seed)
	energy := 0.0
	for _, s := range samples {
		energy += s * s
	}
	signalRMS := math.Sqrt(energy / float64(len(samples)))
	noiseRMS := signalRMS / math.Pow(10, snrDB/20)

	out := make([]float64, len(samples))
	for i, s := range samples {
		noise := (rand()*2 - 1) * noiseRMS
		out[i] = s + noise
	}
	return out
}

// S5 / Property 6: noise tolerance with a fixed LCG seed.
func TestScanToleratesNoise(t *testing.T) {
	payload := map[string]interface{}{"__type": "noise", "value": float64(1)}
	result, err := Encode(payload, EncodeOptions{Profile: profile.AFSKBell})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	noisy := addWhiteNoise(result.Samples, 15, 42)

	silence := make([]float64, round(float64(result.SampleRate)*0.2))
	combined := append(append(append([]float64{}, silence...), noisy...), silence...)

	results, err := Scan(combined, DecodeOptions{SampleRate: result.SampleRate, Profile: profile.AFSKBell, HasProfile: true})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one detection under noise")
	}
	assertJSONEqual(t, payload, results[0].JSON)
}

func TestDecodeReturnsErrNoValidFrameOnSilence(t *testing.T) {
	silence := make([]float64, 48000)
	_, err := Decode(silence, DecodeOptions{})
	if err != ErrNoValidFrame {
		t.Fatalf("err = %v, want ErrNoValidFrame", err)
	}
}

func TestScanReturnsEmptyOnSilence(t *testing.T) {
	silence := make([]float64, 48000)
	results, err := Scan(silence, DecodeOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}

func assertJSONEqual(t *testing.T, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(normalizeJSON(want), normalizeJSON(got)) {
		t.Fatalf("json mismatch: got %#v, want %#v", got, want)
	}
}

// normalizeJSON round-trips a value through JSON so both sides share the
// same representation (float64 numbers, string map keys) before
// comparison.
func normalizeJSON(v interface{}) interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		panic(err)
	}
	return out
}
