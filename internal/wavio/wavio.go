// Package wavio reads and writes the minimal RIFF/WAVE container
// QRAudio uses to carry its sample buffers on disk: a single fmt chunk
// (PCM16 or float32) and a single data chunk, one or more channels
// averaged down to mono on read.
package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Format names a WAV sample encoding.
type Format string

const (
	PCM16   Format = "pcm16"
	Float32 Format = "float32"
)

const (
	fmtTagPCM   = 1
	fmtTagFloat = 3
)

// ErrInvalidHeader is returned when the RIFF/WAVE container markers are
// missing or malformed.
var ErrInvalidHeader = errors.New("wavio: invalid WAV header")

// ErrMissingChunk is returned when the required fmt or data chunk is
// absent.
var ErrMissingChunk = errors.New("wavio: WAV missing fmt or data chunk")

// ErrUnsupportedFormat is returned for any fmt tag/bit depth combination
// other than PCM16 or IEEE float32.
var ErrUnsupportedFormat = errors.New("wavio: unsupported WAV format")

// Data is a decoded WAV file: samples are mono, normalised to [-1, 1].
type Data struct {
	SampleRate int
	Channels   int
	Format     Format
	Samples    []float64
}

// EncodeSamples renders samples as a complete WAV file at sampleRate in
// the requested format.
func EncodeSamples(samples []float64, sampleRate int, format Format) []byte {
	const numChannels = 1
	bitsPerSample := 16
	if format == Float32 {
		bitsPerSample = 32
	}
	bytesPerSample := bitsPerSample / 8
	blockAlign := numChannels * bytesPerSample
	byteRate := sampleRate * blockAlign
	dataSize := len(samples) * bytesPerSample
	const headerSize = 44

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	fmtTag := uint16(fmtTagPCM)
	if format == Float32 {
		fmtTag = fmtTagFloat
	}
	binary.LittleEndian.PutUint16(buf[20:22], fmtTag)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bitsPerSample))

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	offset := headerSize
	if format == Float32 {
		for _, s := range samples {
			binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(float32(clamp(s))))
			offset += 4
		}
	} else {
		for _, s := range samples {
			value := int16(roundFloat(clamp(s) * 32767))
			binary.LittleEndian.PutUint16(buf[offset:offset+2], uint16(value))
			offset += 2
		}
	}
	return buf
}

// DecodeSamples parses a WAV file, averaging multi-channel frames to
// mono.
func DecodeSamples(wavBytes []byte) (*Data, error) {
	if len(wavBytes) < 12 {
		return nil, ErrInvalidHeader
	}
	if string(wavBytes[0:4]) != "RIFF" || string(wavBytes[8:12]) != "WAVE" {
		return nil, ErrInvalidHeader
	}

	offset := 12
	var fmtTag uint16
	haveFmt := false
	channels := 0
	sampleRate := 0
	bitsPerSample := 0
	dataOffset := 0
	dataSize := 0

	for offset+8 <= len(wavBytes) {
		chunkID := string(wavBytes[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(wavBytes[offset+4 : offset+8]))
		chunkDataOffset := offset + 8

		switch chunkID {
		case "fmt ":
			fmtTag = binary.LittleEndian.Uint16(wavBytes[chunkDataOffset : chunkDataOffset+2])
			channels = int(binary.LittleEndian.Uint16(wavBytes[chunkDataOffset+2 : chunkDataOffset+4]))
			sampleRate = int(binary.LittleEndian.Uint32(wavBytes[chunkDataOffset+4 : chunkDataOffset+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(wavBytes[chunkDataOffset+14 : chunkDataOffset+16]))
			haveFmt = true
		case "data":
			dataOffset = chunkDataOffset
			dataSize = chunkSize
		}

		offset = chunkDataOffset + chunkSize + (chunkSize % 2)
	}

	if !haveFmt || dataOffset == 0 {
		return nil, ErrMissingChunk
	}
	if channels < 1 {
		return nil, ErrInvalidHeader
	}

	bytesPerSample := bitsPerSample / 8
	totalFrames := dataSize / (bytesPerSample * channels)
	samples := make([]float64, 0, totalFrames)

	var format Format
	switch {
	case fmtTag == fmtTagPCM && bitsPerSample == 16:
		frameOffset := dataOffset
		for i := 0; i < totalFrames; i++ {
			total := 0.0
			for c := 0; c < channels; c++ {
				value := int16(binary.LittleEndian.Uint16(wavBytes[frameOffset : frameOffset+2]))
				total += float64(value) / 32768.0
				frameOffset += 2
			}
			samples = append(samples, total/float64(channels))
		}
		format = PCM16
	case fmtTag == fmtTagFloat && bitsPerSample == 32:
		frameOffset := dataOffset
		for i := 0; i < totalFrames; i++ {
			total := 0.0
			for c := 0; c < channels; c++ {
				bits := binary.LittleEndian.Uint32(wavBytes[frameOffset : frameOffset+4])
				total += float64(math.Float32frombits(bits))
				frameOffset += 4
			}
			samples = append(samples, total/float64(channels))
		}
		format = Float32
	default:
		return nil, fmt.Errorf("%w: tag %d at %d bits", ErrUnsupportedFormat, fmtTag, bitsPerSample)
	}

	return &Data{SampleRate: sampleRate, Channels: channels, Format: format, Samples: samples}, nil
}

func clamp(value float64) float64 {
	if value > 1.0 {
		return 1.0
	}
	if value < -1.0 {
		return -1.0
	}
	return value
}

func roundFloat(x float64) float64 {
	if x < 0 {
		return -roundFloat(-x)
	}
	return math.Floor(x + 0.5)
}
