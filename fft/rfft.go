// rfft.go: real-input FFT driver (pre/post-process around CFFT)
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package fft

import "fmt"

// RFFTInstance describes a real-input FFT of length N, per spec
// §4.3.1/§3: forward/inverse flag (forward-only in this rendition, per
// spec §6), bit-reversal flag, the twiddle stride shared with the
// package-level A/B coefficient tables, and the companion CFFT
// instance of length N/2.
type RFFTInstance struct {
	N                 int
	forward           bool
	bitReverse        bool
	twidCoefRModifier int
	cfft              *CFFTInstance
}

// NewRFFT builds the real-FFT instance for size n, selecting the
// twiddle modifier and the N/2-length CFFT sub-instance, per spec
// §4.3.1. Only N ∈ {4096, 8192} are supported.
func NewRFFT(n int) (*RFFTInstance, error) {
	if !rfftSupportedSizes[n] {
		return nil, newErr("NewRFFT", InvalidSize, fmt.Errorf("unsupported size %d (want 4096 or 8192)", n))
	}
	return &RFFTInstance{
		N:                 n,
		forward:           true,
		bitReverse:        true,
		twidCoefRModifier: maxN / n,
		cfft:              newCFFT(n / 2),
	}, nil
}

// rfftCache holds one pre-built RFFTInstance per supported size, built
// once at package init. FindTopBins (and any other caller that does
// not need its own instance) uses this instead of re-running NewRFFT
// (and regenerating the bit-reversal table) on every invocation.
var rfftCache = map[int]*RFFTInstance{}

func init() {
	for n := range rfftSupportedSizes {
		inst, err := NewRFFT(n)
		if err != nil {
			panic(err) // unreachable: n is drawn from rfftSupportedSizes itself
		}
		rfftCache[n] = inst
	}
}

func cachedRFFT(n int) *RFFTInstance { return rfftCache[n] }

// Forward runs the real FFT: src has length N, dst has length 2*(N/2+1)
// (interleaved [r0,i0,r1,i1,...,r_{N/2},i_{N/2}]).
//
// Technique: pack src directly as an N/2-length complex sequence
// z[n] = src[2n] + i*src[2n+1] (this packing is exactly src's own
// interleaving, so no repacking copy is needed beyond taking a working
// copy), run the complex FFT on it, then recombine each pair of
// conjugate-symmetric complex bins Z[k], Z[(M-k) mod M] into the real
// input's true spectral bin k via the standard even/odd decimation
// identity:
//
//	E[k] = (Z[k] + conj(Z[(M-k) mod M])) / 2   (spectrum of the even samples)
//	O[k] = -i*(Z[k] - conj(Z[(M-k) mod M])) / 2 (spectrum of the odd samples)
//	X[k] = E[k] + W_N^k * O[k],  k = 0..N/2
//
// This is the textbook "two reals via one complex FFT" decomposition,
// generalized to one real sequence split into even/odd halves; it
// reproduces exactly the N/2+1-bin output layout and the DC/Nyquist
// zero-imaginary guarantee spec §4.3.3 names, using the A/B twiddle
// coefficient tables for the W_N^k term.
func (r *RFFTInstance) Forward(src, dst []Q15) error {
	const op = "RFFTInstance.Forward"
	if src == nil || dst == nil {
		return newErr(op, Invalid, fmt.Errorf("nil buffer"))
	}
	if len(src) != r.N {
		return newErr(op, InvalidSize, fmt.Errorf("src length %d, want %d", len(src), r.N))
	}
	wantDst := 2 * (r.N/2 + 1)
	if len(dst) != wantDst {
		return newErr(op, InvalidSize, fmt.Errorf("dst length %d, want %d", len(dst), wantDst))
	}

	m := r.N / 2
	z := make([]Q15, len(src))
	copy(z, src)

	if err := r.cfft.Transform(z, false, r.bitReverse); err != nil {
		return newErr(op, Invalid, err)
	}

	for k := 0; k <= m; k++ {
		kk := (m - k) % m
		zk := loadC(z, k%m)
		zkk := conjC(loadC(z, kk))

		e := shrC(addC(zk, zkk), 1)
		o := shrC(negJC(subC(zk, zkk)), 1)

		idx := k * r.twidCoefRModifier
		w := cq15{re: rfftTwidA[idx], im: rfftTwidB[idx]}
		x := addC(e, mulC(o, w))
		storeC(dst, k, x)
	}
	return nil
}
