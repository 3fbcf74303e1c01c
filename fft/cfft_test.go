package fft

import (
	"testing"
)

func TestNewCFFTSelectsRadixPath(t *testing.T) {
	pure := newCFFT(4096) // 4^6: pure radix-4 path
	mixed := newCFFT(2048) // 2*4^5: radix-4-by-2 path
	if !isPow4(pure.M) {
		t.Errorf("M=%d expected to take the pure radix-4 path", pure.M)
	}
	if isPow4(mixed.M) {
		t.Errorf("M=%d expected to take the radix-4-by-2 path", mixed.M)
	}
}

// TestTransformImpulseIsFlatSpectrum verifies that an impulse at index 0
// transforms to a (near-)constant-magnitude spectrum across all bins,
// for both the pure radix-4 path (M=4096) and the radix-4-by-2 path
// (M=2048) — the classic FFT-of-a-delta-function sanity check.
func TestTransformImpulseIsFlatSpectrum(t *testing.T) {
	for _, m := range []int{2048, 4096} {
		c := newCFFT(m)
		buf := make([]Q15, 2*m)
		buf[0] = FromFloat(0.9)

		if err := c.Transform(buf, false, true); err != nil {
			t.Fatalf("M=%d: %v", m, err)
		}

		var min, max int64 = -1, -1
		for i := 0; i < m; i++ {
			re := int64(buf[2*i])
			im := int64(buf[2*i+1])
			mag := re*re + im*im
			if min == -1 || mag < min {
				min = mag
			}
			if mag > max {
				max = mag
			}
		}
		if min == 0 {
			t.Fatalf("M=%d: some bin has zero magnitude, want flat nonzero spectrum", m)
		}
		// Allow generous fixed-point quantization slack: max should not
		// exceed a small multiple of min for a true impulse response.
		if max > min*4 {
			t.Errorf("M=%d: spectrum not flat enough, min=%d max=%d", m, min, max)
		}
	}
}

func TestTransformInverseNotImplemented(t *testing.T) {
	c := newCFFT(4096)
	buf := make([]Q15, 2*4096)
	if err := c.Transform(buf, true, true); err == nil {
		t.Error("expected error for inverse=true")
	}
}

func TestTransformWrongBufferLength(t *testing.T) {
	c := newCFFT(4096)
	if err := c.Transform(make([]Q15, 10), false, true); err == nil {
		t.Error("expected error for wrong buffer length")
	}
}

func TestIsPow4(t *testing.T) {
	cases := map[int]bool{
		1: true, 4: true, 16: true, 4096: true,
		2: false, 8: false, 2048: false, 0: false, -4: false,
	}
	for n, want := range cases {
		if got := isPow4(n); got != want {
			t.Errorf("isPow4(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestBitReversePreservesMultiset(t *testing.T) {
	const m = 64
	c := newCFFT(m)
	buf := make([]Q15, 2*m)
	for i := 0; i < m; i++ {
		buf[2*i] = Q15(i)
	}
	before := append([]Q15(nil), buf...)
	BitReverse(buf, c.bitRev)

	seen := make(map[Q15]int)
	for i := 0; i < m; i++ {
		seen[buf[2*i]]++
	}
	for i := 0; i < m; i++ {
		seen[before[2*i]]--
	}
	for v, count := range seen {
		if count != 0 {
			t.Errorf("value %d count mismatch after bit-reversal permutation: %d", v, count)
		}
	}
}
