// Package faultline forwards unrecoverable fault messages to a diagnostic
// sink, so that crashes stay observable in execution environments where the
// default termination path is silent or hard to reach (for example a
// wasm sandbox inside a browser engine).
//
// The package maintains a single process-wide hook slot. Install the
// dispatching hook once during initialization:
//
//	func main() {
//		faultline.InstallOnce()
//		// ...
//	}
//
// and guard goroutine boundaries with Guard (or spawn workers with Go):
//
//	go func() {
//		defer faultline.Guard()
//		work()
//	}()
//
// When a guarded goroutine panics, the installed hook renders the panic
// message (and origin location, when it can be determined) and delivers it
// to a message sink chosen at build time: console.error on js/wasm, the
// process standard error stream everywhere else. The panic is then re-raised
// so the runtime's normal termination behavior proceeds unchanged.
package faultline

import (
	"sync"
	"sync/atomic"
)

// Handler is a process-wide fault hook. It receives the FaultInfo describing
// a panic and must not panic itself.
type Handler func(FaultInfo)

// hookState is the process-scoped installation state: the active hook slot
// and the one-shot guard for InstallOnce. There is exactly one active hook
// at a time; the slot is only ever overwritten, never read back for its
// previous value.
type hookState struct {
	handler atomic.Pointer[Handler]
	once    sync.Once
}

var state = &hookState{}

func (s *hookState) install() {
	h := Handler(Dispatch)
	s.handler.Store(&h)
}

// Install unconditionally sets the dispatching hook as the process-wide
// fault handler, replacing whatever handler was installed before. It cannot
// fail and is harmless to call repeatedly.
func Install() {
	state.install()
	// Consume the one-shot guard so a later InstallOnce does not register
	// a second time.
	state.once.Do(func() {})
}

// InstallOnce sets the dispatching hook the first time it is called;
// every later call, from any goroutine, is a no-op. Safe for concurrent
// use: the registration happens exactly once, and no caller returns before
// it has completed.
func InstallOnce() {
	state.once.Do(state.install)
}

// SetHandler registers h as the process-wide fault handler. A nil h clears
// the slot, restoring the uninstalled baseline. Most callers want Install
// or InstallOnce instead; SetHandler exists for hosts that wrap the
// dispatcher with extra behavior (see diagnostics.Handler).
func SetHandler(h Handler) {
	if h == nil {
		state.handler.Store(nil)
		return
	}
	state.handler.Store(&h)
}

// Installed reports whether a fault handler is currently registered.
func Installed() bool {
	return state.handler.Load() != nil
}

// Dispatch renders info to its canonical text form and delivers it to the
// active message sink. It mutates no shared state and never raises a
// secondary fault; sink delivery is best-effort.
func Dispatch(info FaultInfo) {
	activeSink().LogError(info.String())
}
