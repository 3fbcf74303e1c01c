// clock.go: free-running monotonic millisecond clock
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package duocore

import (
	"time"

	"github.com/agilira/go-timecache"
)

// clock is the Go rendition of the spec's time.monotonic_ms(): a
// free-running, independent-per-side clock. It wraps go-timecache the
// same way the teacher wires timecache.NewWithResolution, trading a
// small amount of timestamp resolution for near-zero overhead on a
// hot acquire/commit/release path.
type clock struct {
	cache *timecache.TimeCache
	start time.Time
}

func newClock() *clock {
	return &clock{
		cache: timecache.NewWithResolution(time.Millisecond),
		start: time.Now(),
	}
}

// nowMS returns milliseconds elapsed since the clock was constructed.
// Two clocks (producer-side, consumer-side) are never compared against
// each other's absolute value in this package; only deltas within a
// single side's timestamps are meaningful, per spec.
func (c *clock) nowMS() uint64 {
	return uint64(c.cache.CachedTime().Sub(c.start).Milliseconds())
}
