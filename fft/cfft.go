// cfft.go: in-place radix-4 / radix-4-by-2 complex Q15 FFT
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package fft

import "fmt"

// CFFTInstance describes a complex Q15 FFT of length M, per spec
// §4.3's data model: a complex length, a shared twiddle table
// (addressed through modifier, since every supported size shares the
// single package-level table generated for maxM), and a bit-reversal
// index table. Instances are value types built once by newCFFT and
// never mutated afterward.
type CFFTInstance struct {
	M        int
	modifier int
	bitRev   []uint16
}

// newCFFT builds the CFFT instance for complex length m (m must be a
// power of two: either a power of four, or twice a power of four — the
// two shapes spec §4.3.2 names).
func newCFFT(m int) *CFFTInstance {
	return &CFFTInstance{
		M:        m,
		modifier: maxM / m,
		bitRev:   bitReversePairs(m),
	}
}

// Transform runs the complex FFT in place on buf (length 2*M,
// interleaved [r,i,r,i,...]). Only the forward transform is
// implemented: the RFFT driver (the only caller in this package) never
// requests an inverse transform, per spec §6's "rfft... forward only
// in the core spec." bitReverse, when true, applies the final
// natural-order permutation (spec §4.3.2 step 3).
func (c *CFFTInstance) Transform(buf []Q15, inverse, bitReverse bool) error {
	if inverse {
		return newErr("CFFTInstance.Transform", Invalid, fmt.Errorf("inverse transform not implemented"))
	}
	if len(buf) != 2*c.M {
		return newErr("CFFTInstance.Transform", InvalidSize, fmt.Errorf("buffer length %d, want %d", len(buf), 2*c.M))
	}

	if isPow4(c.M) {
		radix4Pure(buf, c.M, c.modifier)
	} else {
		radix4By2(buf, c.M, c.modifier)
	}

	if bitReverse {
		BitReverse(buf, c.bitRev)
	}
	return nil
}

func isPow4(n int) bool {
	if n <= 0 || n&(n-1) != 0 {
		return false
	}
	// Power of two with an even number of trailing zero bits is a
	// power of four (0b1, 0b100, 0b10000, ...).
	trailing := 0
	for v := n; v&1 == 0; v >>= 1 {
		trailing++
	}
	return trailing%2 == 0
}

// radix4Pure runs the standard decimation-in-frequency radix-4
// butterfly over a pure power-of-four length m, in log4(m) stages.
// Each stage right-shifts its combine sums by 2 (the documented 1/4
// scaling, spec §4.3.2) before the twiddle multiply. modifier is the
// stride into the shared maxM-sized twiddle table (modifier =
// maxM/m initially; it multiplies by 4 every stage, matching the
// stage's shrinking node count).
func radix4Pure(buf []Q15, m, modifier int) {
	n1 := m
	mod := modifier
	for n1 > 1 {
		n2 := n1
		n1 /= 4
		for blockStart := 0; blockStart < m; blockStart += n2 {
			for j := 0; j < n1; j++ {
				i0 := blockStart + j
				i1 := i0 + n1
				i2 := i1 + n1
				i3 := i2 + n1

				a := loadC(buf, i0)
				b := loadC(buf, i1)
				cc := loadC(buf, i2)
				d := loadC(buf, i3)

				t0 := shrC(addC(a, cc), 2)
				t1 := shrC(subC(a, cc), 2)
				t2 := shrC(addC(b, d), 2)
				t3 := shrC(subC(b, d), 2)

				x0 := addC(t0, t2)
				x2 := subC(t0, t2)
				x1 := addC(t1, negJC(t3))
				x3 := addC(t1, posJC(t3))

				// X2 goes to the i1 slot and X1 to the i2 slot, so the
				// output ends up in binary bit-reversed (not base-4
				// digit-reversed) order, which BitReverse undoes.
				storeC(buf, i0, x0)
				if j == 0 {
					storeC(buf, i1, x2)
					storeC(buf, i2, x1)
					storeC(buf, i3, x3)
				} else {
					idx := mod * j
					storeC(buf, i1, mulC(x2, cfftTwiddle[3*idx+1]))
					storeC(buf, i2, mulC(x1, cfftTwiddle[3*idx+0]))
					storeC(buf, i3, mulC(x3, cfftTwiddle[3*idx+2]))
				}
			}
		}
		mod *= 4
	}
}

// radix4By2 handles lengths m = 2*4^k, per spec §4.3.2 step 2: a
// radix-2-shaped preprocessing pass that folds the sequence into two
// independent m/2-length halves (with a twiddle multiply on the
// difference half), two independent pure radix-4 transforms on those
// halves, then a final post-scale by 2 across the whole buffer.
func radix4By2(buf []Q15, m, modifier int) {
	half := m / 2
	for j := 0; j < half; j++ {
		a := loadC(buf, j)
		b := loadC(buf, j+half)

		sum := addC(a, b)
		diff := subC(a, b)
		twiddled := mulC(diff, cfftTwiddle[3*(modifier*j)+0])

		storeC(buf, j, sum)
		storeC(buf, j+half, twiddled)
	}

	radix4Pure(buf[:2*half], half, 2*modifier)
	radix4Pure(buf[2*half:], half, 2*modifier)

	for i := 0; i < m; i++ {
		buf[i] = shlQ15(buf[i], 1)
	}
}

// BitReverse applies the permutation table generated by
// bitReversePairs: each pair (a, b) names two complex-sample indices
// whose (real, imaginary) words are swapped. Applying it twice to any
// buffer is the identity (spec property 9), since every pair is listed
// exactly once and a swap is its own inverse.
func BitReverse(buf []Q15, table []uint16) {
	for p := 0; p+1 < len(table); p += 2 {
		a, b := int(table[p]), int(table[p+1])
		buf[2*a], buf[2*b] = buf[2*b], buf[2*a]
		buf[2*a+1], buf[2*b+1] = buf[2*b+1], buf[2*a+1]
	}
}
