package duocore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// failingMailbox is a Mailbox whose Enable always fails, used to
// exercise Notifier.Initialize's Init-kind error path.
type failingMailbox struct{}

func (failingMailbox) Enable() error                 { return errors.New("doorbell hardware absent") }
func (failingMailbox) Send() error                   { return nil }
func (failingMailbox) RegisterCallback(func()) error { return nil }

// TestNotifierInitializeWrapsMailboxFailure exercises spec §4.2's
// initialization precondition: a doorbell that cannot be armed must
// surface as an Init-kind *Error, not a bare passthrough.
func TestNotifierInitializeWrapsMailboxFailure(t *testing.T) {
	notifier := NewNotifier(failingMailbox{}, NewChannelMailbox())
	err := notifier.Initialize()
	if err == nil {
		t.Fatal("expected error when toConsumer mailbox fails to enable")
	}
	if !errors.Is(err, ErrInit) {
		t.Errorf("got %v, want Init", err)
	}
}

// TestNotifyConsumerAfterCommit exercises property 4: the consumer
// doorbell fires only after (never before) the producer's commit has
// made the buffer observably READY — a callback racing ahead of the
// state transition would see a buffer that isn't actually ready yet.
func TestNotifyConsumerAfterCommit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = 64
	region := NewRegion(cfg)
	toConsumer := NewChannelMailbox()
	toProducer := NewChannelMailbox()
	notifier := NewNotifier(toConsumer, toProducer)
	if err := notifier.Initialize(); err != nil {
		t.Fatal(err)
	}
	bm := NewBufferManager(region, notifier, cfg)

	var sawReady atomic.Bool
	var ringID atomic.Int32
	ringID.Store(-1)
	if err := notifier.OnConsumerDoorbell(func() {
		for id := 0; id < 2; id++ {
			if bm.State(id) == StateReady {
				sawReady.Store(true)
				ringID.Store(int32(id))
			}
		}
	}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	h, err := bm.AcquireForWrite(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sawReady.Load() {
		t.Fatal("doorbell fired before commit")
	}

	if err := bm.Commit(h); err != nil {
		t.Fatal(err)
	}
	if !sawReady.Load() {
		t.Fatal("doorbell callback did not observe a READY buffer after commit")
	}
	if int(ringID.Load()) != h.ID {
		t.Errorf("doorbell observed id %d, want %d", ringID.Load(), h.ID)
	}
}

// TestNotifyProducerAfterRelease mirrors the consumer side: the
// producer doorbell fires only after release has made the buffer IDLE
// again.
func TestNotifyProducerAfterRelease(t *testing.T) {
	bm := newTestManager(t)
	ctx := context.Background()

	rang := make(chan struct{}, 1)
	if err := bm.notifier.OnProducerDoorbell(func() {
		select {
		case rang <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatal(err)
	}

	h, err := bm.AcquireForWrite(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := bm.Commit(h); err != nil {
		t.Fatal(err)
	}
	rh, err := bm.AcquireForRead(ctx)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-rang:
		t.Fatal("producer doorbell fired before release")
	default:
	}

	if err := bm.Release(rh); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rang:
	case <-time.After(time.Second):
		t.Fatal("producer doorbell never fired after release")
	}
}

// TestMailboxCoalescesSpuriousSends exercises spec §4.2's required
// tolerance: multiple Send calls before the peer drains collapse into
// a single pending wake-up, and the registered callback must still be
// idempotent-safe to invoke on every one of them.
func TestMailboxCoalescesSpuriousSends(t *testing.T) {
	m := NewChannelMailbox()
	if err := m.Enable(); err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	if err := m.RegisterCallback(func() { calls.Add(1) }); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if err := m.Send(); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 5 {
		t.Errorf("callback invocations = %d, want 5 (callback fires every Send)", calls.Load())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := m.Wait(ctx); err != nil {
		t.Fatal(err)
	}
}
