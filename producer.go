// producer.go: producer main loop
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package duocore

import (
	"context"
	"errors"
)

// FrameSource fills a buffer body with the current frame, raw or
// already FFT-transformed by the caller. It is the "sample acquisition
// from an analog front-end" collaborator the spec declares out of
// scope for the core (spec §1) — named here only as the interface the
// core consumes.
type FrameSource interface {
	Fill(buf []byte) error
}

// Logger is the minimal logging collaborator: non-fatal acquire
// timeouts, fill/consume failures and non-WrongState commit/release
// errors are reported through it instead of being silently dropped,
// mirroring the teacher's ErrorCallback(operation, err) field on
// Logger. Doorbell notification failures do not reach it: the
// BufferManager discards them.
type Logger interface {
	Errorf(format string, args ...any)
}

// nopLogger discards everything; NewProducer/NewConsumer substitute it
// for a nil Logger so their log field is never nil.
type nopLogger struct{}

func (nopLogger) Errorf(string, ...any) {}

// Producer drives the main loop of spec §4.4: acquire_for_write → fill
// → commit, looping on Timeout and treating WrongState as fatal.
type Producer struct {
	mgr    *BufferManager
	source FrameSource
	log    Logger
}

// NewProducer builds a Producer over mgr, filling each acquired buffer
// via source.
func NewProducer(mgr *BufferManager, source FrameSource, log Logger) *Producer {
	if log == nil {
		log = nopLogger{}
	}
	return &Producer{mgr: mgr, source: source, log: log}
}

// Run executes the producer loop until ctx is done. Spec §4.4's
// acquire timeout (1s by default, Config.Timeout here) bounds each
// individual AcquireForWrite call rather than the whole run: a Timeout
// from one acquire is logged and the loop continues (spec: "normal
// back-pressure signal"), while cancellation of the caller-supplied
// ctx itself ends Run. A WrongState error is a programming bug and is
// fatal — Run panics, matching spec §7's "should halt the offending
// side in debug builds."
func (p *Producer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		acquireCtx, cancel := context.WithTimeout(ctx, p.mgr.cfg.Timeout)
		h, err := p.mgr.AcquireForWrite(acquireCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Errorf("acquire_for_write: %v", err)
			continue
		}

		// A fill failure still must commit: the buffer is already in
		// WRITING and only this goroutine can move it out of that state.
		// Leaving it uncommitted would strand the slot forever, one CAS
		// retry away from deadlocking the whole ping-pong (only one slot
		// would ever remain acquirable again).
		if err := p.source.Fill(h.Bytes()); err != nil {
			p.log.Errorf("fill: %v", err)
		}

		if err := p.mgr.Commit(h); err != nil {
			if errors.Is(err, ErrWrongState) {
				panic(err)
			}
			p.log.Errorf("commit: %v", err)
		}
	}
}
