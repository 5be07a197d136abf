// Package reedsolomon implements the systematic RS(255,223) block codec
// over GF(256) used as the wire-level forward error correction for QRAudio
// frames: 223 data bytes followed by 32 parity bytes per block, correcting
// up to 16 byte errors per block.
package reedsolomon

import (
	"errors"
	"fmt"

	"github.com/Hello10/qraudio-go/internal/gf256"
)

const (
	// DataLen is the number of message bytes per RS block.
	DataLen = 223
	// ParityLen is the number of parity bytes appended per block.
	ParityLen = 32
	// BlockLen is DataLen+ParityLen, the full size of one RS codeword.
	BlockLen = DataLen + ParityLen
)

// ErrTooManyErrors is returned when a block carries more byte errors than
// the code can correct, or the correction could not be verified.
var ErrTooManyErrors = errors.New("reedsolomon: too many errors to correct")

// ErrSingularMatrix is returned when the error-magnitude linear system is
// singular and cannot be solved (implies an error pattern that should have
// already been rejected by the root-count check, but guarded defensively).
var ErrSingularMatrix = errors.New("reedsolomon: singular error-magnitude matrix")

// ErrInvalidLength is returned when decode input is not a whole number of
// RS blocks.
var ErrInvalidLength = errors.New("reedsolomon: payload length is not a multiple of the block size")

var gf = gf256.Shared()

var generator = buildGenerator()

// buildGenerator computes g(x) = prod_{i=0}^{31} (x - alpha^i), alpha=0x02.
func buildGenerator() []byte {
	gen := []byte{1}
	for i := 0; i < ParityLen; i++ {
		gen = polyMul(gen, []byte{1, gf.Exp(i)})
	}
	return gen
}

// Encode RS-encodes payload by chunking it into DataLen-byte blocks
// (the final chunk zero-padded) and appending ParityLen parity bytes to
// each, returning blocks*BlockLen bytes. An empty payload still yields
// one all-zero-data block.
func Encode(payload []byte) []byte {
	blocks := (len(payload) + DataLen - 1) / DataLen
	if blocks == 0 {
		blocks = 1
	}
	out := make([]byte, blocks*BlockLen)
	for b := 0; b < blocks; b++ {
		start := b * DataLen
		end := start + DataLen
		if end > len(payload) {
			end = len(payload)
		}
		data := make([]byte, DataLen)
		copy(data, payload[start:end])

		parity := computeParity(data)
		blockStart := b * BlockLen
		copy(out[blockStart:blockStart+DataLen], data)
		copy(out[blockStart+DataLen:blockStart+BlockLen], parity)
	}
	return out
}

// computeParity runs the streaming LFSR division of data*x^32 by the
// generator polynomial, yielding the ParityLen remainder bytes.
func computeParity(data []byte) []byte {
	parity := make([]byte, ParityLen)
	for _, v := range data {
		feedback := v ^ parity[0]
		copy(parity, parity[1:])
		parity[ParityLen-1] = 0
		if feedback != 0 {
			for j := 0; j < ParityLen; j++ {
				parity[j] ^= gf.Mul(generator[j+1], feedback)
			}
		}
	}
	return parity
}

// Decode RS-decodes an encoded byte stream (a multiple of BlockLen bytes)
// and returns the first decodedLength bytes of the concatenated,
// error-corrected data chunks.
func Decode(encoded []byte, decodedLength int) ([]byte, error) {
	if len(encoded)%BlockLen != 0 {
		return nil, ErrInvalidLength
	}
	blocks := len(encoded) / BlockLen
	out := make([]byte, blocks*DataLen)
	for b := 0; b < blocks; b++ {
		start := b * BlockLen
		block := encoded[start : start+BlockLen]
		decoded, err := decodeBlock(block)
		if err != nil {
			return nil, err
		}
		copy(out[b*DataLen:(b+1)*DataLen], decoded)
	}
	if decodedLength > len(out) {
		decodedLength = len(out)
	}
	return out[:decodedLength], nil
}

func decodeBlock(block []byte) ([]byte, error) {
	synd := calcSyndromes(block)
	if allZero(synd) {
		out := make([]byte, DataLen)
		copy(out, block[:DataLen])
		return out, nil
	}

	errLoc := findErrorLocator(synd)
	if len(errLoc)-1 > ParityLen/2 {
		return nil, ErrTooManyErrors
	}

	errPos, ok := findErrorPositions(errLoc, len(block))
	if !ok {
		return nil, ErrTooManyErrors
	}

	corrected, err := correctErrors(block, synd, errPos)
	if err != nil {
		return nil, err
	}

	after := calcSyndromes(corrected)
	if !allZero(after) {
		return nil, ErrTooManyErrors
	}
	return corrected[:DataLen], nil
}

// calcSyndromes returns a (ParityLen+1)-length slice where synd[0] is
// unused and synd[i+1] = M(alpha^i) for i in [0, ParityLen).
func calcSyndromes(msg []byte) []byte {
	synd := make([]byte, ParityLen+1)
	for i := 0; i < ParityLen; i++ {
		synd[i+1] = polyEval(msg, gf.Exp(i))
	}
	return synd
}

func allZero(vs []byte) bool {
	for _, v := range vs {
		if v != 0 {
			return false
		}
	}
	return true
}

// findErrorLocator runs Berlekamp-Massey over the syndromes to find the
// error-locator polynomial, returned in the evaluation order Chien search
// expects (leading coefficient first after stripping leading zeros and
// reversing the internal representation).
func findErrorLocator(synd []byte) []byte {
	errLoc := []byte{1}
	oldLoc := []byte{1}

	for i := 0; i < ParityLen; i++ {
		delta := synd[i+1]
		for j := 1; j < len(errLoc); j++ {
			delta ^= gf.Mul(errLoc[len(errLoc)-1-j], synd[i+1-j])
		}
		oldLoc = append(oldLoc, 0)
		if delta != 0 {
			if len(oldLoc) > len(errLoc) {
				newLoc := polyScale(oldLoc, delta)
				oldLoc = polyScale(errLoc, gf.Inv(delta))
				errLoc = newLoc
			}
			errLoc = polyAdd(errLoc, polyScale(oldLoc, delta))
		}
	}

	for len(errLoc) > 1 && errLoc[0] == 0 {
		errLoc = errLoc[1:]
	}
	normalized := reverseBytes(errLoc)
	for len(normalized) > 1 && normalized[0] == 0 {
		normalized = normalized[1:]
	}
	return normalized
}

// findErrorPositions runs Chien search: root i of errLoc(alpha^i) maps to
// message position msgLen-1-i. Fails unless the root count matches the
// locator's degree exactly.
func findErrorPositions(errLoc []byte, msgLen int) ([]int, bool) {
	var positions []int
	for i := 0; i < msgLen; i++ {
		x := gf.Exp(i)
		if polyEval(errLoc, x) == 0 {
			positions = append(positions, msgLen-1-i)
		}
	}
	if len(positions) != len(errLoc)-1 {
		return nil, false
	}
	return positions, true
}

func correctErrors(msg []byte, synd []byte, errPos []int) ([]byte, error) {
	out := make([]byte, len(msg))
	copy(out, msg)
	magnitudes, err := solveErrorMagnitudes(errPos, synd, len(msg))
	if err != nil {
		return nil, err
	}
	for i, pos := range errPos {
		out[pos] ^= magnitudes[i]
	}
	return out, nil
}

// solveErrorMagnitudes solves A*e = S for the error magnitudes via Gaussian
// elimination in GF(256), where A[r][c] = alpha^((msgLen-1-errPos[c])*r)
// for r>=1 and the top row is all ones, and S[r] = synd[r+1].
func solveErrorMagnitudes(errPos []int, synd []byte, msgLen int) ([]byte, error) {
	t := len(errPos)
	a := make([][]byte, t)
	b := make([]byte, t)
	for row := 0; row < t; row++ {
		a[row] = make([]byte, t)
		b[row] = synd[row+1]
		for col := 0; col < t; col++ {
			if row == 0 {
				a[row][col] = 1
			} else {
				power := (msgLen - 1 - errPos[col]) * row
				a[row][col] = gf.Pow(power)
			}
		}
	}

	for col := 0; col < t; col++ {
		pivot := col
		for pivot < t && a[pivot][col] == 0 {
			pivot++
		}
		if pivot == t {
			return nil, fmt.Errorf("%w", ErrSingularMatrix)
		}
		if pivot != col {
			a[pivot], a[col] = a[col], a[pivot]
			b[pivot], b[col] = b[col], b[pivot]
		}

		inv := gf.Div(1, a[col][col])
		for j := col; j < t; j++ {
			a[col][j] = gf.Mul(a[col][j], inv)
		}
		b[col] = gf.Mul(b[col], inv)

		for row := 0; row < t; row++ {
			if row == col {
				continue
			}
			factor := a[row][col]
			if factor == 0 {
				continue
			}
			for j := col; j < t; j++ {
				a[row][j] ^= gf.Mul(factor, a[col][j])
			}
			b[row] ^= gf.Mul(factor, b[col])
		}
	}
	return b, nil
}

func polyAdd(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		ai := len(a) - n + i
		bi := len(b) - n + i
		var av, bv byte
		if ai >= 0 {
			av = a[ai]
		}
		if bi >= 0 {
			bv = b[bi]
		}
		out[i] = av ^ bv
	}
	return out
}

func polyScale(p []byte, x byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[i] = gf.Mul(c, x)
	}
	return out
}

func polyMul(a, b []byte) []byte {
	out := make([]byte, len(a)+len(b)-1)
	for i := range a {
		for j := range b {
			out[i+j] ^= gf.Mul(a[i], b[j])
		}
	}
	return out
}

func polyEval(p []byte, x byte) byte {
	y := p[0]
	for i := 1; i < len(p); i++ {
		y = gf.Mul(y, x) ^ p[i]
	}
	return y
}

func reverseBytes(p []byte) []byte {
	out := make([]byte, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}
