// Package duocore implements a dual-core shared-memory ping-pong IPC
// engine: a lock-free two-buffer ownership protocol between a producer
// (a sampling/transform core) and a consumer (an application core),
// coordinated through doorbell-style mailbox notifications instead of
// locks.
//
// # Quick start
//
//	region := duocore.NewRegion(duocore.DefaultConfig())
//	notifier := duocore.NewNotifier(duocore.NewChannelMailbox(), duocore.NewChannelMailbox())
//	mgr := duocore.NewBufferManager(region, notifier, duocore.DefaultConfig())
//
//	// producer side
//	h, err := mgr.AcquireForWrite(ctx)
//	copy(h.Bytes(), frame)
//	err = mgr.Commit(h)
//
//	// consumer side
//	h, err = mgr.AcquireForRead(ctx)
//	process(h.Bytes())
//	err = mgr.Release(h)
//
// The buffer-ownership state machine, atomic CAS transitions, and
// notification fencing follow the same zero-lock discipline used
// throughout the AGILira stack: every shared field is an atomic, no
// mutex ever guards the hot path, and callers read/write buffer bodies
// directly (zero-copy) once a handle has been acquired.
//
// The fft subpackage provides the companion Q15 real-FFT pipeline used
// by producers that transform samples before committing a buffer.
package duocore
