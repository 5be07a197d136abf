package qraudio

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/Hello10/qraudio-go/internal/crc16x25"
	"github.com/Hello10/qraudio-go/internal/hdlc"
	"github.com/Hello10/qraudio-go/internal/modem"
	"github.com/Hello10/qraudio-go/internal/nrzi"
	"github.com/Hello10/qraudio-go/internal/profile"
	"github.com/Hello10/qraudio-go/internal/qrframe"
	"github.com/Hello10/qraudio-go/internal/reedsolomon"
)

// ErrNoValidFrame is returned by Decode when Scan finds no detection.
var ErrNoValidFrame = errors.New("qraudio: no valid frame found")

// Decode returns the first (lowest start-sample) detection in samples.
func Decode(samples []float64, opts DecodeOptions) (*DecodeResult, error) {
	if opts.MinConfidence == 0 {
		opts.MinConfidence = 0.9
	}
	results, err := Scan(samples, opts)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoValidFrame
	}
	return &results[0], nil
}

// Scan searches samples for every decodable QRAudio frame across every
// candidate profile and sub-symbol offset, deduplicating detections of the
// same profile whose start samples round to the same half-bit bucket.
func Scan(samples []float64, opts DecodeOptions) ([]DecodeResult, error) {
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}
	minConfidence := opts.MinConfidence
	if minConfidence == 0 {
		minConfidence = 0.8
	}

	var profiles []profile.Name
	if opts.HasProfile {
		profiles = []profile.Name{profile.Normalize(string(opts.Profile), profile.Default)}
	} else {
		profiles = profile.All
	}

	var results []DecodeResult
	seenKeys := map[string]bool{}

	for _, currentProfile := range profiles {
		settings := profile.Get(currentProfile)
		baud := settings.Baud
		samplesPerBit := float64(sampleRate) / baud
		bitsPerSymbol := settings.BitsPerSymbol
		if bitsPerSymbol == 0 {
			bitsPerSymbol = 1
		}
		samplesPerSymbol := samplesPerBit * float64(bitsPerSymbol)
		offsetStep := round(samplesPerSymbol / 8)
		if offsetStep < 1 {
			offsetStep = 1
		}

		for offset := 0.0; offset < samplesPerSymbol; offset += float64(offsetStep) {
			var dataBits []int
			if settings.Modulation == profile.ModMFSK {
				tones := settings.Tones
				if len(tones) == 0 {
					tones = []float64{settings.MarkFreq, settings.SpaceFreq}
				}
				dataBits = modem.DemodMFSK(samples, float64(sampleRate), baud, int(offset), tones, bitsPerSymbol)
			} else {
				toneBits := modem.DemodAFSK(samples, float64(sampleRate), baud, int(offset), settings.MarkFreq, settings.SpaceFreq)
				dataBits = nrzi.Decode(toneBits)
			}

			frames := hdlc.ExtractFrames(dataBits)
			for _, frame := range frames {
				decoded := decodeFrame(frame.Bytes)
				if decoded == nil || decoded.profile != currentProfile {
					continue
				}
				startSample := round(offset + float64(frame.StartBit)*samplesPerBit)
				endSample := round(offset + float64(frame.EndBit)*samplesPerBit)
				confidence := 1.0
				if confidence < minConfidence {
					continue
				}
				dedupDivisor := samplesPerBit / 2
				if dedupDivisor < 1 {
					dedupDivisor = 1
				}
				key := fmt.Sprintf("%s:%d", currentProfile, round(float64(startSample)/dedupDivisor))
				if seenKeys[key] {
					continue
				}
				seenKeys[key] = true

				results = append(results, DecodeResult{
					JSON:        decoded.json,
					Profile:     decoded.profile,
					StartSample: startSample,
					EndSample:   endSample,
					Confidence:  confidence,
					DetectionID: uuid.NewString(),
				})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].StartSample < results[j].StartSample })
	return results, nil
}

type decodedFrame struct {
	json    interface{}
	profile profile.Name
}

func decodeFrame(data []byte) *decodedFrame {
	parsed, err := qrframe.Parse(data)
	if err != nil {
		return nil
	}

	header := parsed.Header
	payloadWithFEC := parsed.PayloadWithFEC
	crcOK := parsed.CRCExpected == parsed.CRCActual

	var payload []byte
	if header.FECEnabled {
		decoded, err := reedsolomon.Decode(payloadWithFEC, int(header.PayloadLength))
		if err != nil {
			return nil
		}
		payload = decoded
		if !crcOK {
			correctedPayloadWithFEC := reedsolomon.Encode(payload)
			correctedFrame := append(append([]byte{}, parsed.Raw[:8]...), correctedPayloadWithFEC...)
			correctedCRC := crc16x25.Checksum(correctedFrame)
			crcOK = correctedCRC == parsed.CRCExpected
		}
	} else {
		if !crcOK {
			return nil
		}
		payload = payloadWithFEC
	}

	if !crcOK {
		return nil
	}

	if len(payload) < int(header.PayloadLength) {
		return nil
	}
	payload = payload[:header.PayloadLength]

	if header.GzipEnabled {
		decompressed, err := gzipDecompress(payload)
		if err != nil {
			return nil
		}
		payload = decompressed
	}

	var value interface{}
	if err := json.Unmarshal(payload, &value); err != nil {
		return nil
	}

	return &decodedFrame{json: value, profile: header.Profile}
}
