package fft

import (
	"math/rand"
	"testing"
)

// TestBitReverseInvolution exercises property 9: applying the
// bit-reversal permutation twice to any buffer returns the original
// contents.
func TestBitReverseInvolution(t *testing.T) {
	for _, size := range []int{8, 64, 1024, 2048, 4096} {
		table := bitReversePairs(size)
		buf := make([]Q15, 2*size)
		r := rand.New(rand.NewSource(int64(size)))
		for i := range buf {
			buf[i] = Q15(r.Intn(65536) - 32768)
		}
		orig := append([]Q15(nil), buf...)

		BitReverse(buf, table)
		BitReverse(buf, table)

		for i := range buf {
			if buf[i] != orig[i] {
				t.Fatalf("size=%d: bit-reversal not an involution at index %d: got %d want %d", size, i, buf[i], orig[i])
			}
		}
	}
}

func TestBitReverseKnownPermutation(t *testing.T) {
	// size=8: index -> 3-bit reversal. 1(001)->4(100), 2(010)->2(010) fixed,
	// 3(011)->6(110), 5(101)->5(101) fixed, 0 and 7 are fixed points too.
	table := bitReversePairs(8)
	buf := make([]Q15, 16)
	for i := 0; i < 8; i++ {
		buf[2*i] = Q15(i)
	}
	BitReverse(buf, table)
	want := []int{0, 4, 2, 6, 1, 5, 3, 7}
	for i, w := range want {
		if int(buf[2*i]) != w {
			t.Errorf("index %d: got %d, want %d", i, buf[2*i], w)
		}
	}
}
