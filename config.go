// config.go: IPC core configuration
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package duocore

import (
	"fmt"
	"time"
)

// Config carries the build-time constants of spec §3/§6: buffer size,
// acquire timeout, and the (unused by this Go rendition, but recorded)
// shared-memory base a real cross-core build would map at. Two
// different SHARED_MEM_BASE constants were observed in the corpus this
// spec was distilled from (0x20010000 and 0x2F000000); this rendition
// treats the base purely as configuration carried for parity with a
// real-hardware build and does not dereference it anywhere — see
// DESIGN.md for the resolution of that open question.
type Config struct {
	// BufferSize is the fixed size in bytes of each of the two data
	// buffers. Default 65536 (64 KiB), per spec §3.
	BufferSize int

	// Timeout is the window Producer.Run gives each of its
	// AcquireForWrite calls. BufferManager's acquire methods do not
	// read it: they are bounded only by the context the caller passes.
	Timeout time.Duration

	// BackoffInterval is the polling back-off between CAS retries
	// while waiting for a slot. Spec §4.1 calls for "short back-off,
	// on the order of ~100us".
	BackoffInterval time.Duration

	// RoundRobinSeed selects which buffer id AcquireForWrite tries
	// first on a fresh BufferManager: the first acquisition targets
	// (RoundRobinSeed+1) mod 2. Spec §4.1 only requires that the
	// sequence alternate (property 3); which id starts it is not
	// specified, so this is exposed as configuration rather than
	// hardcoded. Must be 0 or 1.
	RoundRobinSeed int

	// SharedMemBase is recorded configuration only; see doc comment
	// above. Not read by any code path in this package.
	SharedMemBase uint64
}

// DefaultConfig returns the spec's defaults: a 64 KiB buffer, a 1s
// acquire timeout (the value the producer loop in spec §4.4 uses), and
// a 100us back-off.
func DefaultConfig() Config {
	return Config{
		BufferSize:      64 * 1024,
		Timeout:         time.Second,
		BackoffInterval: 100 * time.Microsecond,
		RoundRobinSeed:  1,
		SharedMemBase:   0x20010000,
	}
}

// Validate checks that cfg is usable, returning an *Error with Kind
// Invalid if not.
func (cfg Config) Validate() error {
	if cfg.BufferSize <= 0 {
		return newErr("Config.Validate", Invalid, fmt.Errorf("buffer size must be positive, got %d", cfg.BufferSize))
	}
	if cfg.Timeout < 0 {
		return newErr("Config.Validate", Invalid, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout))
	}
	if cfg.BackoffInterval <= 0 {
		return newErr("Config.Validate", Invalid, fmt.Errorf("backoff interval must be positive, got %s", cfg.BackoffInterval))
	}
	if cfg.RoundRobinSeed != 0 && cfg.RoundRobinSeed != 1 {
		return newErr("Config.Validate", Invalid, fmt.Errorf("round robin seed must be 0 or 1, got %d", cfg.RoundRobinSeed))
	}
	return nil
}
