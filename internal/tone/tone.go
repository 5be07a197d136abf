// Package tone generates pure sinusoidal tones with a fade envelope,
// used for the AFSK/GFSK lead-in and tail-out chimes.
package tone

import (
	"math"

	"github.com/Hello10/qraudio-go/internal/envelope"
)

// ToSamples renders a single sine tone at freq for durationMs at the
// given amplitude (expressed in dB relative to full scale), with
// fadeMs of raised-cosine fade applied at both ends.
func ToSamples(freq, sampleRate, durationMs, levelDB, fadeMs float64) []float64 {
	sampleCount := round(durationMs / 1000.0 * sampleRate)
	if sampleCount < 1 {
		sampleCount = 1
	}
	amplitude := math.Pow(10, levelDB/20.0)
	phaseStep := (2 * math.Pi * freq) / sampleRate

	out := make([]float64, sampleCount)
	phase := 0.0
	for i := 0; i < sampleCount; i++ {
		phase += phaseStep
		if phase > math.Pi*2 {
			phase -= math.Pi * 2
		}
		out[i] = math.Sin(phase) * amplitude
	}
	envelope.ApplyFade(out, sampleRate, fadeMs)
	return out
}

func round(x float64) int {
	if x < 0 {
		return -round(-x)
	}
	return int(x + 0.5)
}
