package modem

import (
	"errors"
	"fmt"
	"math"

	"github.com/Hello10/qraudio-go/internal/envelope"
	"github.com/Hello10/qraudio-go/internal/goertzel"
)

// ErrBadBitsPerSymbol is returned when bitsPerSymbol is not positive.
var ErrBadBitsPerSymbol = errors.New("modem: bitsPerSymbol must be >= 1")

// MFSKToSamples renders 4-ary (or more generally 2^bitsPerSymbol-ary) FSK:
// bitsPerSymbol bits select one of len(tones) frequencies per symbol
// period.
func MFSKToSamples(bits []int, sampleRate, baud float64, tones []float64, bitsPerSymbol int, levelDB, fadeMs float64) ([]float64, error) {
	if bitsPerSymbol <= 0 {
		return nil, ErrBadBitsPerSymbol
	}
	requiredTones := 1 << uint(bitsPerSymbol)
	if len(tones) < requiredTones {
		return nil, fmt.Errorf("modem: MFSK requires %d tones (got %d)", requiredTones, len(tones))
	}

	symbolCount := int(math.Ceil(float64(len(bits)) / float64(bitsPerSymbol)))
	if symbolCount < 1 {
		symbolCount = 1
	}
	samplesPerBit := sampleRate / baud
	samplesPerSymbol := samplesPerBit * float64(bitsPerSymbol)
	totalSamples := int(math.Ceil(float64(symbolCount) * samplesPerSymbol))
	out := make([]float64, totalSamples)
	amplitude := math.Pow(10, levelDB/20.0)

	phase := 0.0
	sampleIndex := 0
	boundary := samplesPerSymbol
	symbolMask := (1 << uint(bitsPerSymbol)) - 1

	for symbolIndex := 0; symbolIndex < symbolCount; symbolIndex++ {
		symbol := 0
		bitOffset := symbolIndex * bitsPerSymbol
		for i := 0; i < bitsPerSymbol; i++ {
			bit := 0
			if bitOffset+i < len(bits) {
				bit = bits[bitOffset+i]
			}
			symbol |= (bit & 1) << uint(i)
		}
		symbol &= symbolMask
		freq := tones[0]
		if symbol < len(tones) {
			freq = tones[symbol]
		}
		phaseStep := (2 * math.Pi * freq) / sampleRate

		for float64(sampleIndex) < boundary && sampleIndex < totalSamples {
			phase += phaseStep
			if phase > math.Pi*2 {
				phase -= math.Pi * 2
			}
			out[sampleIndex] = math.Sin(phase) * amplitude
			sampleIndex++
		}
		boundary += samplesPerSymbol
	}

	if fadeMs > 0 {
		fadeSamples := round(fadeMs / 1000.0 * sampleRate)
		if fadeSamples > 0 {
			padded := append(out, make([]float64, fadeSamples)...)
			envelope.ApplyFade(padded, sampleRate, fadeMs)
			return padded, nil
		}
	}

	envelope.ApplyFade(out, sampleRate, fadeMs)
	return out, nil
}

// DemodMFSK slices samples into successive symbol windows starting at
// offset and decides each symbol by picking the tone with the highest
// Goertzel energy, emitting its bits LSB-first.
func DemodMFSK(samples []float64, sampleRate, baud float64, offset int, tones []float64, bitsPerSymbol int) []int {
	if bitsPerSymbol <= 0 {
		return nil
	}
	requiredTones := 1 << uint(bitsPerSymbol)
	if len(tones) < requiredTones {
		return nil
	}

	samplesPerBit := sampleRate / baud
	samplesPerSymbol := samplesPerBit * float64(bitsPerSymbol)
	var bits []int

	start := float64(offset)
	boundary := start + samplesPerSymbol

	for boundary <= float64(len(samples)) {
		end := int(math.Floor(boundary))
		length := end - int(start)
		if length <= 1 {
			start = float64(end)
			boundary += samplesPerSymbol
			continue
		}

		bestIndex := 0
		bestEnergy := -1.0
		for idx := 0; idx < requiredTones; idx++ {
			energy := goertzel.Energy(samples, int(start), length, tones[idx], sampleRate)
			if energy > bestEnergy {
				bestEnergy = energy
				bestIndex = idx
			}
		}

		for bit := 0; bit < bitsPerSymbol; bit++ {
			bits = append(bits, (bestIndex>>uint(bit))&1)
		}

		start = float64(end)
		boundary += samplesPerSymbol
	}

	return bits
}
