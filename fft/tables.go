// tables.go: twiddle and bit-reversal table generation
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package fft

import "math"

// maxN/maxM bound the two supported real-transform sizes; twiddle
// tables are generated once for the largest size and shared by
// smaller sizes via a stride modifier, exactly as spec §4.3.1
// describes ("twidCoefRModifier = max_N/N").
const (
	maxN = 8192
	maxM = maxN / 2
)

// rfftSupportedSizes is spec §4.3.1's explicit size contract.
var rfftSupportedSizes = map[int]bool{4096: true, 8192: true}

// cfftTwiddle holds, for idx in [0, maxM/2), the triple
// (W_maxM^idx, W_maxM^2idx, W_maxM^3idx) at cfftTwiddle[3*idx:3*idx+3].
// This is the single shared table every CFFT butterfly stage, at any
// supported size, indexes into via a modifier stride (modifier =
// maxM/M), per spec §4.3.2's "the modifier stride lets smaller
// transforms share the same table."
var cfftTwiddle []cq15

// rfftTwidA/rfftTwidB are the real-FFT driver's twiddle coefficients:
// for k in [0, maxN/2], rfftTwidA[k] = cos(2*pi*k/maxN) and
// rfftTwidB[k] = -sin(2*pi*k/maxN), i.e. together they encode
// W_maxN^k = rfftTwidA[k] + i*rfftTwidB[k]. Smaller N share this table
// via modifier = maxN/N, matching spec §4.3.1.
var rfftTwidA, rfftTwidB []Q15

func init() {
	cfftTwiddle = make([]cq15, 3*(maxM/2))
	for idx := 0; idx < maxM/2; idx++ {
		cfftTwiddle[3*idx+0] = twiddleAt(maxM, idx)
		cfftTwiddle[3*idx+1] = twiddleAt(maxM, 2*idx)
		cfftTwiddle[3*idx+2] = twiddleAt(maxM, 3*idx)
	}

	rfftTwidA = make([]Q15, maxN/2+1)
	rfftTwidB = make([]Q15, maxN/2+1)
	for k := 0; k <= maxN/2; k++ {
		w := twiddleAt(maxN, k)
		rfftTwidA[k] = w.re
		rfftTwidB[k] = w.im
	}
}

// twiddleAt returns W_size^k = e^{-i*2*pi*k/size} in Q15, for the
// forward-transform sign convention used throughout this package.
func twiddleAt(size, k int) cq15 {
	angle := -2 * math.Pi * float64(k%size) / float64(size)
	return cq15{re: FromFloat(math.Cos(angle)), im: FromFloat(math.Sin(angle))}
}

// bitReversePairs generates the permutation table for spec §4.3.5: the
// list of (i, r) complex-sample index pairs where r = bit-reverse(i)
// within log2(size) bits and r > i (so each pair is only listed once;
// applying the swap for every listed pair is its own inverse, which is
// the required involution property). The table is returned flattened
// as (a0,b0,a1,b1,...).
func bitReversePairs(size int) []uint16 {
	bits := 0
	for s := size; s > 1; s >>= 1 {
		bits++
	}
	var pairs []uint16
	for i := 0; i < size; i++ {
		r := reverseBits(i, bits)
		if r > i {
			pairs = append(pairs, uint16(i), uint16(r))
		}
	}
	return pairs
}

func reverseBits(v, bits int) int {
	r := 0
	for b := 0; b < bits; b++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}
