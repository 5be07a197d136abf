package nrzi

import (
	"reflect"
	"testing"
)

// Property 8: nrziDecode(nrziEncode(bits)) equals [1, bits[1:]...]
// because the differential scheme cannot recover the very first bit.
func TestDecodeEncodeInvolution(t *testing.T) {
	bits := []int{0, 1, 1, 0, 1, 0, 0, 1, 1, 1}
	encoded := Encode(bits)
	decoded := Decode(encoded)

	want := append([]int{1}, bits[1:]...)
	if !reflect.DeepEqual(decoded, want) {
		t.Fatalf("Decode(Encode(%v)) = %v, want %v", bits, decoded, want)
	}
}

func TestEncodeHoldsOnOne(t *testing.T) {
	got := Encode([]int{1, 1, 1})
	want := []int{1, 1, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode(1,1,1) = %v, want %v", got, want)
	}
}

func TestEncodeTogglesOnZero(t *testing.T) {
	got := Encode([]int{0, 0, 0})
	want := []int{0, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Encode(0,0,0) = %v, want %v", got, want)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if got := Decode(nil); got != nil {
		t.Fatalf("Decode(nil) = %v, want nil", got)
	}
}
