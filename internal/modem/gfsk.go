package modem

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Hello10/qraudio-go/internal/envelope"
)

// GFSKToSamples renders Gaussian-shaped binary FSK: a bipolar NRZ waveform
// is convolved with a truncated Gaussian kernel, then the shaped signal
// drives continuous-phase frequency modulation between markFreq and
// spaceFreq.
func GFSKToSamples(tones []int, sampleRate, baud, markFreq, spaceFreq, levelDB, fadeMs, bt float64, spanSymbols int) []float64 {
	samplesPerBit := sampleRate / baud
	totalSamples := int(math.Ceil(float64(len(tones)) * samplesPerBit))

	nrz := make([]float64, totalSamples)
	sampleIndex := 0
	boundary := samplesPerBit
	for _, bit := range tones {
		level := -1.0
		if bit == 1 {
			level = 1.0
		}
		for float64(sampleIndex) < boundary && sampleIndex < totalSamples {
			nrz[sampleIndex] = level
			sampleIndex++
		}
		boundary += samplesPerBit
	}

	shaped := gaussianFilter(nrz, samplesPerBit, bt, spanSymbols)

	amplitude := math.Pow(10, levelDB/20.0)
	centerFreq := (markFreq + spaceFreq) / 2.0
	deviation := (markFreq - spaceFreq) / 2.0

	out := make([]float64, totalSamples)
	phase := 0.0
	for i := 0; i < totalSamples; i++ {
		freq := centerFreq + deviation*shaped[i]
		phase += (2 * math.Pi * freq) / sampleRate
		if phase > math.Pi*2 {
			phase -= math.Pi * 2
		}
		out[i] = math.Sin(phase) * amplitude
	}

	if fadeMs > 0 {
		fadeSamples := round(fadeMs / 1000.0 * sampleRate)
		if fadeSamples > 0 {
			padded := append(out, make([]float64, fadeSamples)...)
			envelope.ApplyFade(padded, sampleRate, fadeMs)
			return padded
		}
	}

	return out
}

// gaussianFilter convolves samples with a normalised Gaussian kernel sized
// from samplesPerBit, bt and spanSymbols, clamping indices at both edges.
func gaussianFilter(samples []float64, samplesPerBit, bt float64, spanSymbols int) []float64 {
	if bt <= 0 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}
	sigma := (samplesPerBit * math.Sqrt(math.Log(2))) / (2 * math.Pi * bt)
	kernelLength := round(float64(spanSymbols) * samplesPerBit)
	if kernelLength < 3 {
		kernelLength = 3
	}
	size := kernelLength
	if size%2 == 0 {
		size++
	}
	half := size / 2

	kernel := make([]float64, size)
	for i := 0; i < size; i++ {
		x := float64(i - half)
		kernel[i] = math.Exp(-0.5 * (x / sigma) * (x / sigma))
	}
	total := floats.Sum(kernel)
	floats.Scale(1.0/total, kernel)

	out := make([]float64, len(samples))
	for i := range samples {
		acc := 0.0
		for k := 0; k < size; k++ {
			idx := i + k - half
			if idx < 0 {
				idx = 0
			} else if idx >= len(samples) {
				idx = len(samples) - 1
			}
			acc += samples[idx] * kernel[k]
		}
		out[i] = acc
	}
	return out
}

func round(x float64) int {
	if x < 0 {
		return -round(-x)
	}
	return int(x + 0.5)
}
