// mailbox.go: doorbell mailbox collaborator contract
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package duocore

import "context"

// Mailbox is the abstract collaborator contract of spec §6: the core
// consumes only send, enable, and async-callback-registration — it
// never assumes a specific interrupt controller or transport. Real
// hardware doorbell drivers (out of scope for this repo, per spec §1)
// implement this interface directly; ChannelMailbox below is the
// userspace stand-in used by tests, the demo CLI, and any host-side
// simulation of the protocol.
type Mailbox interface {
	// Enable arms the channel to start delivering callbacks.
	Enable() error
	// Send triggers the doorbell. It carries no payload — the peer
	// infers meaning by scanning the Control Block. Send is
	// fire-and-forget: BufferManager discards a failure here, and it
	// never fails the commit or release that triggered it.
	Send() error
	// RegisterCallback registers the peer's wake-up function. Spurious
	// invocations are legal; fn must be idempotent.
	RegisterCallback(fn func()) error
}

// ChannelMailbox is a buffered-capacity-1, non-blocking-send mailbox:
// the userspace doorbell. Its edge-coalesced semantics are grounded on
// the shmring reference design's readable/writable channels ("buffered
// size 1; always re-check state after waking") — exactly the spurious-
// interrupt tolerance spec §4.2 requires, and exactly the pattern a
// hardware doorbell latch exhibits (multiple triggers before the peer
// drains collapse into one wake-up).
type ChannelMailbox struct {
	doorbell chan struct{}
	callback func()
	enabled  bool
}

// NewChannelMailbox returns a ChannelMailbox that is not yet enabled:
// Send fills the doorbell channel, but the registered callback is only
// invoked once Enable has been called.
func NewChannelMailbox() *ChannelMailbox {
	return &ChannelMailbox{doorbell: make(chan struct{}, 1)}
}

// Enable arms delivery. Safe to call multiple times.
func (m *ChannelMailbox) Enable() error {
	m.enabled = true
	return nil
}

// Send is fire-and-forget: a full channel means a notification is
// already pending, which is exactly the coalesced semantics the
// protocol tolerates.
func (m *ChannelMailbox) Send() error {
	select {
	case m.doorbell <- struct{}{}:
	default:
	}
	if m.enabled && m.callback != nil {
		m.callback()
	}
	return nil
}

// RegisterCallback stores fn, invoked synchronously from Send once the
// mailbox is enabled. fn must be idempotent and must not block — the
// spec mandates minimal ISR bodies (ack + schedule only).
func (m *ChannelMailbox) RegisterCallback(fn func()) error {
	m.callback = fn
	return nil
}

// Wait blocks until a doorbell ring is observed or ctx is done. This
// is a test/diagnostic affordance over the same buffered channel Send
// writes to — BufferManager itself never calls Wait, since its
// back-off loop wakes through the callback path registered via
// RegisterCallback instead.
func (m *ChannelMailbox) Wait(ctx context.Context) error {
	select {
	case <-m.doorbell:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
