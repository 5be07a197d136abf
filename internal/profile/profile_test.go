package profile

import "testing"

func TestFlagRoundTrip(t *testing.T) {
	for _, name := range All {
		flags := FlagBits(name)
		got, ok := FromFlags(flags)
		if !ok {
			t.Fatalf("FromFlags(%#02x) not ok", flags)
		}
		if got != name {
			t.Fatalf("FromFlags(FlagBits(%s)) = %s", name, got)
		}
	}
}

func TestNormalizeFallback(t *testing.T) {
	if got := Normalize("bogus", Default); got != Default {
		t.Fatalf("Normalize(bogus) = %s, want default", got)
	}
	if got := Normalize("mfsk", Default); got != MFSK {
		t.Fatalf("Normalize(mfsk) = %s, want mfsk", got)
	}
}

func TestSettingsTableValues(t *testing.T) {
	s := Get(MFSK)
	if s.Baud != 600 || s.BitsPerSymbol != 2 || len(s.Tones) != 4 {
		t.Fatalf("unexpected mfsk settings: %+v", s)
	}
	g := Get(GFSKFifth)
	if g.BT != 1.0 || g.SpanSymbols != 4 {
		t.Fatalf("unexpected gfsk-fifth settings: %+v", g)
	}
}
