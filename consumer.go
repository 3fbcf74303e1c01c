// consumer.go: minimal-ISR doorbell dispatch and consumer worker
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package duocore

import (
	"context"
	"errors"
	"time"
)

// FrameSink consumes a released buffer body — validating a known
// pattern, or draining FFT output, depending on the caller. Out of
// scope for the core itself (spec §1), named here only as the
// interface the consumer worker drives.
type FrameSink interface {
	Consume(buf []byte) error
}

// Consumer implements the two halves of spec §4.4's consumer side: a
// minimal doorbell callback (ack + schedule, never processes in place)
// and a long-lived Worker goroutine that actually drains buffers.
//
// A missed doorbell is self-healing by construction: the worker simply
// finds no READY buffer on that pass and loops; the next commit's
// doorbell (or the next scheduled poll) restores progress (spec §4.4,
// property/scenario E3).
type Consumer struct {
	mgr  *BufferManager
	sink FrameSink
	log  Logger

	work chan struct{}
}

// NewConsumer builds a Consumer over mgr, draining each acquired
// buffer via sink.
func NewConsumer(mgr *BufferManager, sink FrameSink, log Logger) *Consumer {
	if log == nil {
		log = nopLogger{}
	}
	return &Consumer{mgr: mgr, sink: sink, log: log, work: make(chan struct{}, 1)}
}

// Doorbell is the minimal ISR body: it acks (implicitly, by returning)
// and schedules the worker by posting to a depth-1 work channel.
// Spurious/duplicate calls coalesce into a single pending work item,
// which is exactly the tolerance spec §4.2 requires.
func (c *Consumer) Doorbell() {
	select {
	case c.work <- struct{}{}:
	default:
	}
}

// Worker drains ready buffers until ctx is done. Each wake drains every
// currently-READY buffer (AcquireForRead with timeout=0, i.e. a
// context that is never blocked on) before going back to sleep,
// matching spec §4.4's non-blocking acquire_for_read(timeout=0). A
// scheduled poll at the manager's back-off interval runs alongside the
// doorbell wake-up, so a doorbell lost to a consumer restart (scenario
// E3) is recovered on the next poll tick rather than stranding data
// indefinitely.
func (c *Consumer) Worker(ctx context.Context) {
	ticker := time.NewTicker(c.mgr.cfg.BackoffInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.work:
			c.drain(ctx)
		case <-ticker.C:
			c.drain(ctx)
		}
	}
}

// drain pulls every immediately-available READY buffer and consumes
// it, stopping as soon as AcquireForRead reports Timeout (no buffer
// currently ready) — spec's non-blocking acquire_for_read(timeout=0).
func (c *Consumer) drain(ctx context.Context) {
	for {
		nonBlocking, cancel := context.WithTimeout(ctx, 0)
		h, err := c.mgr.AcquireForRead(nonBlocking)
		cancel()
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				return
			}
			c.log.Errorf("acquire_for_read: %v", err)
			return
		}

		if err := c.sink.Consume(h.Bytes()); err != nil {
			c.log.Errorf("consume: %v", err)
		}

		if err := c.mgr.Release(h); err != nil {
			if errors.Is(err, ErrWrongState) {
				panic(err)
			}
			c.log.Errorf("release: %v", err)
		}
	}
}
