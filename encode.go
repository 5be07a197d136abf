package qraudio

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/Hello10/qraudio-go/internal/hdlc"
	"github.com/Hello10/qraudio-go/internal/modem"
	"github.com/Hello10/qraudio-go/internal/nrzi"
	"github.com/Hello10/qraudio-go/internal/profile"
	"github.com/Hello10/qraudio-go/internal/qrframe"
	"github.com/Hello10/qraudio-go/internal/reedsolomon"
	"github.com/Hello10/qraudio-go/internal/tone"
)

const (
	defaultSampleRate = 48000
	defaultLevelDB    = -6.0
)

// Encode renders payload as an audio sample buffer per opts.
func Encode(payload interface{}, opts EncodeOptions) (*EncodeResult, error) {
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}
	prof := profile.Normalize(string(opts.Profile), profile.Default)
	settings := profile.Get(prof)

	jsonBytes, err := encodeJSON(payload)
	if err != nil {
		return nil, err
	}

	minSavingsBytes := opts.GzipMinSavingsBytes
	if minSavingsBytes == 0 {
		minSavingsBytes = 8
	}
	minSavingsPct := opts.GzipMinSavingsPct
	if minSavingsPct == 0 {
		minSavingsPct = 0.08
	}

	encodedPayload := jsonBytes
	usedGzip := false
	if opts.Gzip != GzipNever {
		compressed, err := gzipCompress(jsonBytes)
		if err != nil {
			return nil, err
		}
		savingsBytes := len(jsonBytes) - len(compressed)
		savingsPct := 0.0
		if len(jsonBytes) > 0 {
			savingsPct = float64(savingsBytes) / float64(len(jsonBytes))
		}
		shouldUse := opts.Gzip == GzipAlways ||
			(opts.Gzip == GzipAuto && (savingsBytes >= minSavingsBytes || savingsPct >= minSavingsPct))
		if shouldUse {
			encodedPayload = compressed
			usedGzip = true
		}
	}

	fecEnabled := true
	if opts.FEC != nil {
		fecEnabled = *opts.FEC
	}
	var payloadWithFEC []byte
	if fecEnabled {
		payloadWithFEC = reedsolomon.Encode(encodedPayload)
	} else {
		payloadWithFEC = encodedPayload
	}

	flags := profile.FlagBits(prof)
	if usedGzip {
		flags |= qrframe.FlagGzip
	}
	if fecEnabled {
		flags |= qrframe.FlagFEC
	}

	frame := qrframe.Build(payloadWithFEC, len(encodedPayload), flags)

	preambleMs := settings.PreambleMs
	if opts.PreambleMs != nil {
		preambleMs = *opts.PreambleMs
	}
	fadeMs := settings.FadeMs
	if opts.FadeMs != nil {
		fadeMs = *opts.FadeMs
	}
	levelDB := defaultLevelDB
	if opts.LevelDB != nil {
		levelDB = *opts.LevelDB
	}

	bitstream := hdlc.BuildBitstream(frame, preambleMs, settings.Baud)
	var encodedBits []int
	if settings.Modulation == profile.ModMFSK {
		encodedBits = bitstream
	} else {
		encodedBits = nrzi.Encode(bitstream)
	}

	var samples []float64
	switch settings.Modulation {
	case profile.ModGFSK:
		samples = modem.GFSKToSamples(encodedBits, float64(sampleRate), settings.Baud,
			settings.MarkFreq, settings.SpaceFreq, levelDB, fadeMs, settings.BT, settings.SpanSymbols)
	case profile.ModMFSK:
		tones := settings.Tones
		if len(tones) == 0 {
			tones = []float64{settings.MarkFreq, settings.SpaceFreq}
		}
		bitsPerSymbol := settings.BitsPerSymbol
		if bitsPerSymbol == 0 {
			bitsPerSymbol = 1
		}
		samples, err = modem.MFSKToSamples(encodedBits, float64(sampleRate), settings.Baud,
			tones, bitsPerSymbol, levelDB, fadeMs)
		if err != nil {
			return nil, err
		}
	default:
		samples = modem.AFSKToSamples(encodedBits, float64(sampleRate), settings.Baud,
			settings.MarkFreq, settings.SpaceFreq, levelDB, fadeMs)
	}

	leadInEnabled := opts.LeadIn
	wantLeadIn := settings.LeadInToneMs > 0 || settings.LeadInGapMs > 0
	if leadInEnabled != nil {
		wantLeadIn = *leadInEnabled
	}
	if wantLeadIn {
		leadToneMs := settings.LeadInToneMs
		if opts.LeadInToneMs != nil {
			leadToneMs = *opts.LeadInToneMs
		}
		leadGapMs := settings.LeadInGapMs
		if opts.LeadInGapMs != nil {
			leadGapMs = *opts.LeadInGapMs
		}
		if leadToneMs > 0 {
			chime := buildChime(float64(sampleRate), levelDB, fadeMs, leadToneMs, leadGapMs,
				settings.MarkFreq, settings.SpaceFreq)
			samples = append(chime, samples...)
		}
	}

	tailOutEnabled := opts.TailOut
	wantTailOut := settings.TailToneMs > 0 || settings.TailGapMs > 0
	if tailOutEnabled != nil {
		wantTailOut = *tailOutEnabled
	}
	if wantTailOut {
		tailToneMs := settings.TailToneMs
		if opts.TailToneMs != nil {
			tailToneMs = *opts.TailToneMs
		}
		tailGapMs := settings.TailGapMs
		if opts.TailGapMs != nil {
			tailGapMs = *opts.TailGapMs
		}
		if tailToneMs > 0 {
			chime := buildChime(float64(sampleRate), levelDB, fadeMs, tailToneMs, tailGapMs,
				settings.SpaceFreq, settings.MarkFreq)
			samples = append(samples, chime...)
		}
	}

	durationMs := (float64(len(samples)) / float64(sampleRate)) * 1000.0

	return &EncodeResult{
		SampleRate:   sampleRate,
		Profile:      prof,
		Samples:      samples,
		DurationMs:   durationMs,
		PayloadBytes: len(encodedPayload),
	}, nil
}

func buildChime(sampleRate, levelDB, fadeMs, toneMs, gapMs, firstFreq, secondFreq float64) []float64 {
	first := tone.ToSamples(firstFreq, sampleRate, toneMs, levelDB, fadeMs)
	var gapSamples []float64
	if gapMs > 0 {
		n := round(gapMs / 1000.0 * sampleRate)
		if n < 1 {
			n = 1
		}
		gapSamples = make([]float64, n)
	}
	second := tone.ToSamples(secondFreq, sampleRate, toneMs, levelDB, fadeMs)

	out := make([]float64, 0, len(first)+len(gapSamples)+len(second))
	out = append(out, first...)
	out = append(out, gapSamples...)
	out = append(out, second...)
	return out
}

func encodeJSON(payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	// json.Encoder.Encode always appends a trailing newline; strip it to
	// match the compact, no-extraneous-whitespace wire format.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func round(x float64) int {
	if x < 0 {
		return -round(-x)
	}
	return int(x + 0.5)
}
