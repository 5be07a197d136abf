package reedsolomon

import (
	"bytes"
	"testing"
)

func sampleMessage(n int) []byte {
	m := make([]byte, n)
	for i := range m {
		m[i] = byte(i)
	}
	return m
}

func TestRoundTripNoErrors(t *testing.T) {
	msg := sampleMessage(120)
	enc := Encode(msg)
	if len(enc) != BlockLen {
		t.Fatalf("encoded length = %d, want %d", len(enc), BlockLen)
	}
	dec, err := Decode(enc, len(msg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec, msg) {
		t.Fatalf("decoded %v, want %v", dec, msg)
	}
}

// S4: payload = bytes 0..119, flip 10 leading bytes of the block with 0xFF.
func TestCorrectsTenLeadingByteFlips(t *testing.T) {
	msg := sampleMessage(120)
	enc := Encode(msg)
	corrupt := append([]byte(nil), enc...)
	for i := 0; i < 10; i++ {
		corrupt[i] ^= 0xFF
	}
	dec, err := Decode(corrupt, len(msg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec, msg) {
		t.Fatalf("decoded %v, want %v", dec, msg)
	}
}

func TestCorrectsUpToSixteenScatteredErrors(t *testing.T) {
	msg := sampleMessage(223)
	enc := Encode(msg)
	corrupt := append([]byte(nil), enc...)
	for i := 0; i < 16; i++ {
		corrupt[i*15] ^= 0xAA
	}
	dec, err := Decode(corrupt, len(msg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec, msg) {
		t.Fatal("16 scattered byte errors should be fully correctable")
	}
}

func TestFailsOverCapacity(t *testing.T) {
	msg := sampleMessage(223)
	enc := Encode(msg)
	corrupt := append([]byte(nil), enc...)
	for i := 0; i < 17; i++ {
		corrupt[i] ^= 0xFF
	}
	if _, err := Decode(corrupt, len(msg)); err == nil {
		t.Fatal("expected decode to fail with 17 adjacent byte errors")
	}
}

func TestEncodeChunksAcrossBlocks(t *testing.T) {
	msg := sampleMessage(500)
	enc := Encode(msg)
	wantBlocks := (len(msg) + DataLen - 1) / DataLen
	if len(enc) != wantBlocks*BlockLen {
		t.Fatalf("encoded length = %d, want %d", len(enc), wantBlocks*BlockLen)
	}
	dec, err := Decode(enc, len(msg))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(dec, msg) {
		t.Fatal("multi-block round trip mismatch")
	}
}

func TestInvalidLength(t *testing.T) {
	if _, err := Decode(make([]byte, BlockLen-1), 10); err == nil {
		t.Fatal("expected ErrInvalidLength")
	}
}
