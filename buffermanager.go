// buffermanager.go: four-state ping-pong ownership protocol
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package duocore

import (
	"context"
	"sync/atomic"
	"time"
)

// BufferHandle is returned by AcquireForWrite/AcquireForRead. It
// carries the buffer's id and a direct slice over its body — callers
// read/write the region directly (zero-copy), exactly as spec §4.1
// describes: "Handles carry a raw pointer to the data region and the
// buffer size."
type BufferHandle struct {
	ID   int
	data []byte
}

// Bytes returns the buffer body. Valid only between the acquire call
// that produced this handle and the matching Commit/Release call.
func (h *BufferHandle) Bytes() []byte { return h.data }

// Statistics is the snapshot stats() returns: spec §4.1 calls for "all
// counters and derived averages" without naming the averages, so this
// rendition adds AvgProducerIntervalMS/AvgConsumerIntervalMS and
// Utilization (see SPEC_FULL.md §10).
type Statistics struct {
	WriteCount    [2]uint32
	ReadCount     [2]uint32
	OverrunCount  uint32
	TimeoutCount  uint32
	LastWriteTSMS [2]uint64
	LastReadTSMS  [2]uint64

	AvgProducerIntervalMS float64
	AvgConsumerIntervalMS float64
	Utilization           float64
}

// BufferManager enforces the ownership state machine of spec §4.1 over
// a Region's two buffers, using only atomic CAS and fetch-add — no
// mutex ever guards the acquire/commit/release path.
type BufferManager struct {
	region   *Region
	notifier *Notifier
	cfg      Config

	producerClock *clock
	consumerClock *clock

	// lastUsed is producer-local round-robin state (spec §4.1: "producer-local");
	// only the producer goroutine touches it, so a plain field suffices.
	lastUsed int

	// producerWake/consumerWake let a doorbell break a back-off loop
	// early instead of spinning for the full interval (spec §5:
	// "implementation may break the back-off early").
	producerWake chan struct{}
	consumerWake chan struct{}

	// immediateAcquires/totalAcquires back Statistics.Utilization.
	immediateAcquires atomic.Uint64
	totalAcquires      atomic.Uint64
}

// NewBufferManager builds a BufferManager over region, wiring wake-up
// callbacks into notifier so that a commit's consumer doorbell (or a
// release's producer doorbell) can break a peer's back-off loop early.
// Construction performs the spec's initialize(): both states IDLE,
// consumerReady raised, which newControlBlock already guarantees.
func NewBufferManager(region *Region, notifier *Notifier, cfg Config) *BufferManager {
	bm := &BufferManager{
		region:        region,
		notifier:      notifier,
		cfg:           cfg,
		producerClock: newClock(),
		consumerClock: newClock(),
		lastUsed:      cfg.RoundRobinSeed,
		producerWake:  make(chan struct{}, 1),
		consumerWake:  make(chan struct{}, 1),
	}
	_ = notifier.OnProducerDoorbell(bm.wakeProducer)
	_ = notifier.OnConsumerDoorbell(bm.wakeConsumer)
	return bm
}

// Initialize re-zeroes the Control Block. Idempotent: spec property 8.
func (bm *BufferManager) Initialize() error {
	bm.region.Control.reinitialize()
	bm.lastUsed = bm.cfg.RoundRobinSeed
	return nil
}

func (bm *BufferManager) wakeProducer() {
	select {
	case bm.producerWake <- struct{}{}:
	default:
	}
}

func (bm *BufferManager) wakeConsumer() {
	select {
	case bm.consumerWake <- struct{}{}:
	default:
	}
}

// AcquireForWrite implements spec §4.1's acquire_for_write: round-robin
// starting from (lastUsed+1) mod 2, CAS IDLE→WRITING, overrun-at-most-
// once-per-call accounting, back-off until a slot frees or ctx is done.
func (bm *BufferManager) AcquireForWrite(ctx context.Context) (*BufferHandle, error) {
	const op = "BufferManager.AcquireForWrite"
	cb := bm.region.Control

	overrunCounted := false
	for {
		bm.totalAcquires.Add(1)
		start := (bm.lastUsed + 1) % 2
		bothBusy := true
		for i := 0; i < 2; i++ {
			id := (start + i) % 2
			if cb.cas(id, stateIdle, stateWriting) {
				bm.lastUsed = id
				if i == 0 {
					bm.immediateAcquires.Add(1)
				}
				return &BufferHandle{ID: id, data: bm.region.Buffers[id]}, nil
			}
			if cb.state(id) != stateIdle {
				continue
			}
			bothBusy = false
		}

		if bothBusy && !overrunCounted {
			cb.overrunCount.Add(1)
			overrunCounted = true
		}

		if err := bm.backoff(ctx, bm.producerWake); err != nil {
			cb.timeoutCount.Add(1)
			return nil, newErr(op, Timeout, err)
		}
	}
}

// Commit implements spec §4.1's commit: CAS WRITING→READY, bump
// write_count, record last_write_ts, fence, notify consumer.
// A notification failure is discarded: it is not logged, and it never
// fails the commit — the state is already READY.
func (bm *BufferManager) Commit(h *BufferHandle) error {
	const op = "BufferManager.Commit"
	cb := bm.region.Control

	if !cb.cas(h.ID, stateWriting, stateReady) {
		return newErr(op, WrongState, nil)
	}

	cb.writeCount[h.ID].Add(1)
	cb.lastWriteTS[h.ID].Store(bm.producerClock.nowMS())
	fullFence()
	_ = bm.notifier.NotifyConsumer()
	return nil
}

// AcquireForRead implements spec §4.1's acquire_for_read: scan both
// slots, pick the READY slot with the smallest last_write_ts
// (ascending-id tie-break), CAS READY→READING.
func (bm *BufferManager) AcquireForRead(ctx context.Context) (*BufferHandle, error) {
	const op = "BufferManager.AcquireForRead"
	cb := bm.region.Control

	for {
		bm.totalAcquires.Add(1)
		id, found := bm.selectReady(cb)
		if found {
			if cb.cas(id, stateReady, stateReading) {
				bm.immediateAcquires.Add(1)
				return &BufferHandle{ID: id, data: bm.region.Buffers[id]}, nil
			}
			// Lost the race (should not happen with a single consumer,
			// but the protocol does not assume it can't); retry the
			// scan immediately rather than waiting out a back-off.
			continue
		}

		if err := bm.backoff(ctx, bm.consumerWake); err != nil {
			cb.timeoutCount.Add(1)
			return nil, newErr(op, Timeout, err)
		}
	}
}

// selectReady returns the FIFO-first READY slot (smallest
// last_write_ts, ties broken by ascending id).
func (bm *BufferManager) selectReady(cb *ControlBlock) (int, bool) {
	best := -1
	var bestTS uint64
	for id := 0; id < 2; id++ {
		if cb.state(id) != stateReady {
			continue
		}
		ts := cb.lastWriteTS[id].Load()
		if best == -1 || ts < bestTS {
			best = id
			bestTS = ts
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// Release implements spec §4.1's release: CAS READING→IDLE, bump
// read_count, record last_read_ts, fence, notify producer. As in
// Commit, a notification failure is discarded and never fails the
// release.
func (bm *BufferManager) Release(h *BufferHandle) error {
	const op = "BufferManager.Release"
	cb := bm.region.Control

	if !cb.cas(h.ID, stateReading, stateIdle) {
		return newErr(op, WrongState, nil)
	}

	cb.readCount[h.ID].Add(1)
	cb.lastReadTS[h.ID].Store(bm.consumerClock.nowMS())
	fullFence()
	_ = bm.notifier.NotifyProducer()
	return nil
}

// State returns the current state of buffer id (for tests/diagnostics).
func (bm *BufferManager) State(id int) BufferState {
	return BufferState(bm.region.Control.state(id))
}

// BufferState is the exported mirror of the internal bufferState enum.
type BufferState uint32

const (
	StateIdle    BufferState = BufferState(stateIdle)
	StateWriting BufferState = BufferState(stateWriting)
	StateReady   BufferState = BufferState(stateReady)
	StateReading BufferState = BufferState(stateReading)
)

func (s BufferState) String() string { return bufferState(s).String() }

// Stats snapshots every counter plus the derived averages and
// utilization described in SPEC_FULL.md §10.
func (bm *BufferManager) Stats() Statistics {
	cb := bm.region.Control
	var s Statistics
	for i := 0; i < 2; i++ {
		s.WriteCount[i] = cb.writeCount[i].Load()
		s.ReadCount[i] = cb.readCount[i].Load()
		s.LastWriteTSMS[i] = cb.lastWriteTS[i].Load()
		s.LastReadTSMS[i] = cb.lastReadTS[i].Load()
	}
	s.OverrunCount = cb.overrunCount.Load()
	s.TimeoutCount = cb.timeoutCount.Load()

	totalWrites := uint64(s.WriteCount[0]) + uint64(s.WriteCount[1])
	if totalWrites > 1 {
		span := float64(bm.producerClock.nowMS())
		s.AvgProducerIntervalMS = span / float64(totalWrites)
	}
	totalReads := uint64(s.ReadCount[0]) + uint64(s.ReadCount[1])
	if totalReads > 1 {
		span := float64(bm.consumerClock.nowMS())
		s.AvgConsumerIntervalMS = span / float64(totalReads)
	}

	if total := bm.totalAcquires.Load(); total > 0 {
		s.Utilization = float64(bm.immediateAcquires.Load()) / float64(total)
	}
	return s
}

// backoff sleeps for the configured back-off interval, waking early if
// wake fires or ctx is done. It returns ctx.Err() once ctx is done,
// and nil otherwise (meaning: try the scan again).
func (bm *BufferManager) backoff(ctx context.Context, wake <-chan struct{}) error {
	timer := time.NewTimer(bm.cfg.BackoffInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-wake:
		return nil
	case <-timer.C:
		return nil
	}
}
