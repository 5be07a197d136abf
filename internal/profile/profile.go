// Package profile holds the four named modem parameter bundles and the
// 2-bit tag that identifies each one on the wire.
package profile

import "fmt"

// Name identifies one of the four fixed modem profiles.
type Name string

const (
	AFSKBell  Name = "afsk-bell"
	AFSKFifth Name = "afsk-fifth"
	GFSKFifth Name = "gfsk-fifth"
	MFSK      Name = "mfsk"
)

// Default is the profile used when none is specified.
const Default = AFSKBell

// All lists every profile in registry order, the order the scanner tries
// them in when no profile hint is given.
var All = []Name{AFSKBell, AFSKFifth, GFSKFifth, MFSK}

// Modulation identifies the waveform family a profile uses.
type Modulation string

const (
	ModAFSK Modulation = "afsk"
	ModGFSK Modulation = "gfsk"
	ModMFSK Modulation = "mfsk"
)

// Settings is the immutable parameter bundle for one profile.
type Settings struct {
	Modulation Modulation
	Baud       float64
	MarkFreq   float64
	SpaceFreq  float64
	PreambleMs float64
	FadeMs     float64

	// GFSK-only.
	BT          float64
	SpanSymbols int

	// MFSK-only.
	Tones         []float64
	BitsPerSymbol int

	// Lead-in / tail-out chime defaults (applied unless an encode call
	// overrides them). All four profiles use the same values in the
	// reference implementation: a 150ms tone with no gap.
	LeadInToneMs float64
	LeadInGapMs  float64
	TailToneMs   float64
	TailGapMs    float64
}

var registry = map[Name]Settings{
	AFSKBell: {
		Modulation: ModAFSK, Baud: 1200, MarkFreq: 1200, SpaceFreq: 2200,
		PreambleMs: 500, FadeMs: 10,
		LeadInToneMs: 150, TailToneMs: 150,
	},
	AFSKFifth: {
		Modulation: ModAFSK, Baud: 1200, MarkFreq: 880, SpaceFreq: 1320,
		PreambleMs: 250, FadeMs: 20,
		LeadInToneMs: 150, TailToneMs: 150,
	},
	GFSKFifth: {
		Modulation: ModGFSK, Baud: 1200, MarkFreq: 880, SpaceFreq: 1320,
		PreambleMs: 250, FadeMs: 20, BT: 1.0, SpanSymbols: 4,
		LeadInToneMs: 150, TailToneMs: 150,
	},
	MFSK: {
		Modulation: ModMFSK, Baud: 600, MarkFreq: 900, SpaceFreq: 1200,
		Tones: []float64{600, 900, 1200, 1500}, BitsPerSymbol: 2,
		PreambleMs: 300, FadeMs: 20,
		LeadInToneMs: 150, TailToneMs: 150,
	},
}

// flag values occupying bits 2-3 of the frame flags byte.
const (
	flagClassic = 0 // afsk-bell
	flagChord   = 1 // mfsk
	flagChime   = 2 // afsk-fifth
	flagSmooth  = 3 // gfsk-fifth
	flagShift   = 2
	flagMask    = 0x03 << flagShift
)

// IsValid reports whether s names one of the four registered profiles.
func IsValid(s string) bool {
	_, ok := registry[Name(s)]
	return ok
}

// Normalize maps a string (possibly empty) to a Name, falling back to
// fallback when value is empty or unrecognized.
func Normalize(value string, fallback Name) Name {
	if value == "" {
		return fallback
	}
	if _, ok := registry[Name(value)]; ok {
		return Name(value)
	}
	return fallback
}

// Get returns the Settings for name. Panics if name is not registered,
// which indicates a programming error (callers should validate with
// IsValid or go through Normalize first).
func Get(name Name) Settings {
	s, ok := registry[name]
	if !ok {
		panic(fmt.Sprintf("profile: unknown profile %q", name))
	}
	return s
}

// FlagBits returns the 2-bit profile tag (already shifted into position)
// for the flags byte.
func FlagBits(name Name) byte {
	switch name {
	case AFSKBell:
		return flagClassic << flagShift
	case MFSK:
		return flagChord << flagShift
	case AFSKFifth:
		return flagChime << flagShift
	case GFSKFifth:
		return flagSmooth << flagShift
	default:
		return flagClassic << flagShift
	}
}

// FromFlags extracts the profile named by the flags byte's bits 2-3.
// All four 2-bit values are assigned to a profile, so ok is true for every
// flags byte; the ok=false branch is defensive.
func FromFlags(flags byte) (Name, bool) {
	switch (flags & flagMask) >> flagShift {
	case flagClassic:
		return AFSKBell, true
	case flagChord:
		return MFSK, true
	case flagChime:
		return AFSKFifth, true
	case flagSmooth:
		return GFSKFifth, true
	default:
		return "", false
	}
}
