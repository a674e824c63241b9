//go:build !(js && wasm)

package faultline

import (
	"fmt"
	"io"
	"os"
)

// StderrSink writes fault messages, one per line, to the process standard
// error stream. The write error is discarded: a fault handler that faults
// would hide the original message.
type StderrSink struct {
	// W overrides the destination; nil means os.Stderr.
	W io.Writer
}

// LogError writes msg followed by a single newline.
func (s StderrSink) LogError(msg string) {
	w := s.W
	if w == nil {
		w = os.Stderr
	}
	_, _ = fmt.Fprintln(w, msg)
}

var defaultSink MessageSink = StderrSink{}
