// Package goertzel implements the single-bin Goertzel energy detector
// used to estimate how much energy a sample window carries at one
// target frequency, with no windowing applied.
package goertzel

import "math"

// Energy returns the Goertzel power estimate for samples[start:start+length]
// at freq, given sampleRate.
func Energy(samples []float64, start, length int, freq, sampleRate float64) float64 {
	omega := (2 * math.Pi * freq) / sampleRate
	coeff := 2 * math.Cos(omega)
	var s0, s1, s2 float64
	end := start + length
	for i := start; i < end; i++ {
		s0 = samples[i] + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	return s1*s1 + s2*s2 - coeff*s1*s2
}
