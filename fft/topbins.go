// topbins.go: top-N magnitude-squared bin selector
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package fft

import "fmt"

// TopBin is a single entry of a find-top-bins result: the bin index
// and its magnitude squared (a 32-bit unsigned value, computed from
// 32-bit intermediates — each term fits in 31 bits, so no overflow is
// possible, per spec §4.3.4).
type TopBin struct {
	Bin   uint16
	MagSq uint32
}

// topBinsState holds the static working buffers spec §4.3.4 calls for
// ("not reentrant, uses static buffers"): one working Q15 buffer per
// supported size and one spectrum buffer per supported size, reused
// across calls instead of being allocated fresh every time.
type topBinsState struct {
	work     map[int][]Q15
	spectrum map[int][]Q15
}

var topBins = &topBinsState{
	work:     make(map[int][]Q15),
	spectrum: make(map[int][]Q15),
}

func (t *topBinsState) buffers(n int) (work, spectrum []Q15) {
	work = t.work[n]
	if work == nil {
		work = make([]Q15, n)
		t.work[n] = work
	}
	spectrum = t.spectrum[n]
	if spectrum == nil {
		spectrum = make([]Q15, 2*(n/2+1))
		t.spectrum[n] = spectrum
	}
	return work, spectrum
}

// FindTopBins implements spec §4.3.4: run a real FFT of size n over
// src, then select the k bins (excluding the DC bin) with the largest
// magnitude squared, writing their indices into out in descending
// magnitude order.
//
// FindTopBins is not reentrant: concurrent callers must serialize
// access (e.g. one call per consumer worker iteration), matching the
// static-buffer behavior spec §4.3.4 documents.
func FindTopBins(n, k int, src []Q15, out []uint16) error {
	const op = "FindTopBins"
	if !rfftSupportedSizes[n] {
		return newErr(op, InvalidSize, fmt.Errorf("unsupported size %d", n))
	}
	if src == nil || out == nil {
		return newErr(op, Invalid, fmt.Errorf("nil buffer"))
	}
	if len(src) != n {
		return newErr(op, InvalidSize, fmt.Errorf("src length %d, want %d", len(src), n))
	}
	if k < 1 || k > n/2 || len(out) != k {
		return newErr(op, InvalidSize, fmt.Errorf("invalid k=%d (out length %d), want 1<=k<=%d and len(out)==k", k, len(out), n/2))
	}

	work, spectrum := topBins.buffers(n)
	copy(work, src)

	inst := cachedRFFT(n)
	if err := inst.Forward(work, spectrum); err != nil {
		return newErr(op, Invalid, err)
	}

	records := make([]TopBin, 0, k)
	for b := 1; b <= n/2; b++ {
		re := int32(spectrum[2*b])
		im := int32(spectrum[2*b+1])
		magSq := uint32(re*re + im*im)

		if len(records) < k {
			records = insertSorted(records, TopBin{Bin: uint16(b), MagSq: magSq})
			continue
		}
		if magSq > records[len(records)-1].MagSq {
			records = insertSorted(records[:k-1], TopBin{Bin: uint16(b), MagSq: magSq})
		}
	}

	for i := range out {
		if i < len(records) {
			out[i] = records[i].Bin
		}
	}
	return nil
}

// insertSorted inserts rec into recs (kept sorted descending by
// MagSq), growing recs by one element.
func insertSorted(recs []TopBin, rec TopBin) []TopBin {
	recs = append(recs, rec)
	for i := len(recs) - 1; i > 0 && recs[i].MagSq > recs[i-1].MagSq; i-- {
		recs[i], recs[i-1] = recs[i-1], recs[i]
	}
	return recs
}
