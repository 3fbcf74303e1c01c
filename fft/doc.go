// Package fft implements the Q15 fixed-point real-FFT pipeline used by
// duocore producers that transform samples before committing a buffer:
// a radix-4-based complex FFT operating in place on interleaved Q15
// data, a real-FFT driver that pre/post-processes around it, bit
// reversal, and a top-N magnitude-bin selector.
//
// Supported real-transform sizes are N ∈ {4096, 8192}, matching the
// two sizes named by the protocol design. Twiddle and bit-reversal
// tables are generated once, at package init, from closed-form
// formulas (cosine/negative-sine, index bit-reversal) rather than
// vendored as data — there are no generated-table files in this repo.
//
// Scaling discipline: every radix-4 butterfly stage right-shifts its
// sums by 2 before the twiddle multiply (a factor of 1/4 per stage),
// so a forward transform's output is attenuated relative to a
// textbook, unscaled DFT. This mirrors the scaling convention used by
// fixed-point DSP libraries for exactly the same overflow-avoidance
// reason; callers comparing relative bin magnitudes (as
// FindTopBins does) are unaffected by the constant scale factor.
package fft
