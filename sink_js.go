//go:build js && wasm

package faultline

import "syscall/js"

// ConsoleSink forwards fault messages to the host's console.error
// capability. Browser devtools and node attach a stack trace to messages
// logged this way, which is the whole point of routing through it instead
// of a plain print. The call is treated as infallible.
type ConsoleSink struct {
	console js.Value
}

// NewConsoleSink binds the global console object once.
func NewConsoleSink() ConsoleSink {
	return ConsoleSink{console: js.Global().Get("console")}
}

// LogError delivers msg as the single argument of a console.error call.
func (s ConsoleSink) LogError(msg string) {
	s.console.Call("error", msg)
}

var defaultSink MessageSink = NewConsoleSink()
