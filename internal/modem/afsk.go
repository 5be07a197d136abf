// Package modem implements the three interchangeable waveform families
// QRAudio can transmit over: binary AFSK, Gaussian-shaped binary FSK,
// and 4-ary MFSK, each paired with a Goertzel-based symbol detector.
package modem

import (
	"math"

	"github.com/Hello10/qraudio-go/internal/envelope"
	"github.com/Hello10/qraudio-go/internal/goertzel"
)

// AFSKToSamples renders a phase-continuous binary FSK waveform: tones[i]==1
// emits markFreq for one bit period, tones[i]==0 emits spaceFreq.
func AFSKToSamples(tones []int, sampleRate, baud, markFreq, spaceFreq, levelDB, fadeMs float64) []float64 {
	samplesPerBit := sampleRate / baud
	totalSamples := int(math.Ceil(float64(len(tones)) * samplesPerBit))
	out := make([]float64, totalSamples)
	amplitude := math.Pow(10, levelDB/20.0)

	phase := 0.0
	sampleIndex := 0
	boundary := samplesPerBit

	for _, tone := range tones {
		freq := spaceFreq
		if tone == 1 {
			freq = markFreq
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
		boundary += samplesPerBit
	}

	envelope.ApplyFade(out, sampleRate, fadeMs)
	return out
}

// DemodAFSK slices samples into successive bit windows starting at offset
// and decides each bit by comparing mark vs. space Goertzel energy.
func DemodAFSK(samples []float64, sampleRate, baud float64, offset int, markFreq, spaceFreq float64) []int {
	samplesPerBit := sampleRate / baud
	var tones []int

	start := float64(offset)
	boundary := start + samplesPerBit

	for boundary <= float64(len(samples)) {
		end := int(math.Floor(boundary))
		length := end - int(start)
		if length <= 1 {
			start = float64(end)
			boundary += samplesPerBit
			continue
		}
		markEnergy := goertzel.Energy(samples, int(start), length, markFreq, sampleRate)
		spaceEnergy := goertzel.Energy(samples, int(start), length, spaceFreq, sampleRate)
		if markEnergy >= spaceEnergy {
			tones = append(tones, 1)
		} else {
			tones = append(tones, 0)
		}
		start = float64(end)
		boundary += samplesPerBit
	}

	return tones
}
