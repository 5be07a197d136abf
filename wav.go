package qraudio

import (
	"errors"
	"fmt"

	"github.com/Hello10/qraudio-go/internal/wavio"
)

// ErrSampleRateMismatch is returned by PrependPayloadToWav when the
// requested sample rate differs from the input WAV's; resampling is out
// of scope.
var ErrSampleRateMismatch = errors.New("qraudio: sample rate mismatch, resampling not supported")

func toWavFormat(f WavFormat) wavio.Format {
	if f == WavFloat32 {
		return wavio.Float32
	}
	return wavio.PCM16
}

// EncodeWav encodes payload and wraps the resulting samples in a WAV
// container.
func EncodeWav(payload interface{}, opts EncodeOptions, format WavFormat) (*EncodeWavResult, error) {
	result, err := Encode(payload, opts)
	if err != nil {
		return nil, err
	}
	wav := wavio.EncodeSamples(result.Samples, result.SampleRate, toWavFormat(format))
	return &EncodeWavResult{EncodeResult: *result, Wav: wav}, nil
}

// DecodeWav decodes a WAV file's samples and returns the first detected
// payload.
func DecodeWav(wavBytes []byte, opts DecodeOptions) (*DecodeResult, error) {
	data, err := wavio.DecodeSamples(wavBytes)
	if err != nil {
		return nil, err
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = data.SampleRate
	}
	return Decode(data.Samples, opts)
}

// ScanWav decodes a WAV file's samples and returns every detected
// payload.
func ScanWav(wavBytes []byte, opts DecodeOptions) ([]DecodeResult, error) {
	data, err := wavio.DecodeSamples(wavBytes)
	if err != nil {
		return nil, err
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = data.SampleRate
	}
	return Scan(data.Samples, opts)
}

// PrependPadding controls the silence padding PrependPayloadToWav inserts
// around the newly-encoded payload.
type PrependPadding struct {
	PadSeconds     float64
	PrePadSeconds  *float64
	PostPadSeconds *float64
}

// PrependPayloadToWav encodes payload and splices it, surrounded by
// silence padding, before the audio already in wavBytes. Useful for
// building test fixtures and demo recordings that carry a real signal
// ahead of captured noise.
func PrependPayloadToWav(wavBytes []byte, payload interface{}, padding PrependPadding, opts EncodeOptions, format WavFormat) (*PrependWavResult, error) {
	input, err := wavio.DecodeSamples(wavBytes)
	if err != nil {
		return nil, err
	}

	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = input.SampleRate
	}
	if sampleRate != input.SampleRate {
		return nil, fmt.Errorf("%w: input %d Hz, requested %d Hz", ErrSampleRateMismatch, input.SampleRate, sampleRate)
	}

	payloadOpts := opts
	payloadOpts.SampleRate = sampleRate
	payloadResult, err := Encode(payload, payloadOpts)
	if err != nil {
		return nil, err
	}

	padSeconds := padding.PadSeconds
	prePad := padSeconds
	if padding.PrePadSeconds != nil {
		prePad = *padding.PrePadSeconds
	}
	postPad := padSeconds
	if padding.PostPadSeconds != nil {
		postPad = *padding.PostPadSeconds
	}

	preSamples := secondsToSamples(sampleRate, prePad)
	postSamples := secondsToSamples(sampleRate, postPad)

	combined := make([]float64, preSamples+len(payloadResult.Samples)+postSamples+len(input.Samples))
	copy(combined[preSamples:], payloadResult.Samples)
	offset := preSamples + len(payloadResult.Samples) + postSamples
	copy(combined[offset:], input.Samples)

	wavOut := wavio.EncodeSamples(combined, sampleRate, toWavFormat(format))
	return &PrependWavResult{Wav: wavOut, Payload: *payloadResult, SampleRate: sampleRate}, nil
}

func secondsToSamples(sampleRate int, seconds float64) int {
	n := round(seconds * float64(sampleRate))
	if n < 1 {
		n = 1
	}
	return n
}
