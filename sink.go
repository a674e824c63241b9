package faultline

import "sync/atomic"

// MessageSink receives rendered fault messages. Implementations must be
// safe to call from a panicking goroutine and must never panic themselves;
// delivery failures are theirs to swallow.
type MessageSink interface {
	LogError(msg string)
}

// sinkOverride, when set, replaces the build-time default sink. Used by
// tests and by embedding hosts that route fault text elsewhere.
var sinkOverride atomic.Pointer[MessageSink]

// SetSink routes subsequent fault messages to s. Passing nil restores the
// build-time default (console.error on js/wasm, stderr otherwise).
func SetSink(s MessageSink) {
	if s == nil {
		sinkOverride.Store(nil)
		return
	}
	sinkOverride.Store(&s)
}

func activeSink() MessageSink {
	if o := sinkOverride.Load(); o != nil {
		return *o
	}
	return defaultSink
}
