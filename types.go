// Package qraudio implements the QRAudio acoustic modem: encoding
// arbitrary JSON payloads into audio samples and recovering them again,
// with forward error correction and a blind multi-profile scanner.
package qraudio

import "github.com/Hello10/qraudio-go/internal/profile"

// GzipMode controls whether Encode compresses the JSON payload before
// framing it.
type GzipMode int

const (
	// GzipAuto compresses only when it saves enough bytes to be worth
	// the GZIP flag overhead (see EncodeOptions.GzipMinSavingsBytes/Pct).
	GzipAuto GzipMode = iota
	// GzipAlways always compresses.
	GzipAlways
	// GzipNever never compresses.
	GzipNever
)

// EncodeOptions configures Encode. The zero value selects sane defaults:
// default sample rate and profile, FEC on, gzip in auto mode.
type EncodeOptions struct {
	SampleRate int
	Profile    profile.Name

	FEC  *bool
	Gzip GzipMode

	GzipMinSavingsBytes int
	GzipMinSavingsPct   float64

	PreambleMs *float64
	FadeMs     *float64
	LevelDB    *float64

	LeadIn       *bool
	LeadInToneMs *float64
	LeadInGapMs  *float64

	TailOut     *bool
	TailToneMs  *float64
	TailGapMs   *float64
}

// EncodeResult is the output of Encode.
type EncodeResult struct {
	SampleRate   int
	Profile      profile.Name
	Samples      []float64
	DurationMs   float64
	PayloadBytes int
}

// DecodeOptions configures Decode and Scan.
type DecodeOptions struct {
	SampleRate    int
	Profile       profile.Name
	HasProfile    bool
	MinConfidence float64
}

// DecodeResult is one recovered payload, produced by Decode or Scan.
type DecodeResult struct {
	JSON interface{}

	Profile     profile.Name
	StartSample int
	EndSample   int
	Confidence  float64

	// DetectionID is an opaque identifier stamped on each detection, useful
	// for correlating log lines and UI rows across a batch scan; it carries
	// no wire-format meaning.
	DetectionID string
}

// WavFormat names a WAV sample encoding understood by EncodeWav/DecodeWav.
type WavFormat string

const (
	WavPCM16   WavFormat = "pcm16"
	WavFloat32 WavFormat = "float32"
)

// EncodeWavResult is the output of EncodeWav.
type EncodeWavResult struct {
	EncodeResult
	Wav []byte
}

// PrependWavResult is the output of PrependPayloadToWav.
type PrependWavResult struct {
	Wav        []byte
	Payload    EncodeResult
	SampleRate int
}
