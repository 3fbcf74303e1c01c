// region.go: typed view over the shared memory window
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package duocore

// Region is the safe typed view the spec's design notes (§9) demand in
// place of raw shared-memory offsets: "Encapsulate this in a single
// shared region abstraction with safe typed views; do not leak raw
// addresses into higher-level code." It stands in for the three
// fixed-offset segments of spec §6 (buffer 0 body, buffer 1 body,
// control block) without exposing any address arithmetic to callers.
//
// A build targeting real cross-core SRAM would replace NewRegion with
// a constructor that slices views into a mapped window at
// Config.SharedMemBase instead of allocating Go-managed memory; no
// other package would need to change.
type Region struct {
	// Buffers holds the two fixed-size buffer bodies, addressed by id
	// ∈ {0,1}. Exactly two exist, per spec; this field is never resized
	// after NewRegion returns.
	Buffers [2][]byte

	// Control is the single shared Control Block.
	Control *ControlBlock
}

// NewRegion allocates both buffer bodies and an initialized Control
// Block sized per cfg. This plays the role of "Control Block is
// created once at consumer startup" (spec §3 lifecycles).
func NewRegion(cfg Config) *Region {
	r := &Region{
		Buffers: [2][]byte{
			make([]byte, cfg.BufferSize),
			make([]byte, cfg.BufferSize),
		},
		Control: newControlBlock(cfg.BufferSize, cfg.Timeout.Milliseconds()),
	}
	return r
}
