// Package envelope applies raised-cosine fade-in/fade-out windows to
// sample buffers.
package envelope

import "math"

// ApplyFade raises the first fadeSamples and lowers the last fadeSamples
// of samples with a raised-cosine (Hann) window, in place. No-op if the
// computed fade length is zero or would overlap itself.
func ApplyFade(samples []float64, sampleRate, fadeMs float64) {
	fadeSamples := round(fadeMs / 1000.0 * sampleRate)
	if fadeSamples <= 0 || fadeSamples*2 > len(samples) {
		return
	}
	for i := 0; i < fadeSamples; i++ {
		t := float64(i) / float64(fadeSamples)
		gain := 0.5 * (1 - math.Cos(math.Pi*t))
		samples[i] *= gain
		samples[len(samples)-1-i] *= gain
	}
}

func round(x float64) int {
	if x < 0 {
		return -round(-x)
	}
	return int(x + 0.5)
}
