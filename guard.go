package faultline

import (
	"runtime/debug"

	"github.com/hugo-lorenzo-mato/faultline/internal/stack"
)

// Guard intercepts a panic on the current goroutine, hands it to the
// installed fault handler, and re-raises it so the runtime's default
// termination behavior proceeds. Use it as the first deferred call at a
// goroutine boundary:
//
//	defer faultline.Guard()
//
// When no handler is installed the panic unwinds completely untouched.
func Guard() {
	h := state.handler.Load()
	if h == nil {
		return
	}
	if r := recover(); r != nil {
		(*h)(capture(r))
		panic(r)
	}
}

// Go runs fn on a new goroutine guarded by Guard.
func Go(fn func()) {
	go func() {
		defer Guard()
		fn()
	}()
}

// capture builds the FaultInfo for a recovered panic value. The origin
// location is parsed from the stack on a best-effort basis; when parsing
// fails the message stands alone.
func capture(r any) FaultInfo {
	st := debug.Stack()
	info := FaultInfo{
		Message: faultMessage(r),
		Stack:   st,
	}
	if frame, ok := stack.Origin(st); ok {
		info.File = frame.File
		info.Line = frame.Line
	}
	return info
}
