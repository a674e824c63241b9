package faultline

import "fmt"

// FaultInfo describes a single unrecoverable fault. It is built from the
// panic value and the goroutine stack at fault time, handed to the installed
// hook, and discarded; nothing retains it past the dispatch call.
type FaultInfo struct {
	// Message is the stringified panic value.
	Message string
	// File and Line identify the origin call site when it could be
	// determined from the stack. File is empty when unknown.
	File string
	Line int
	// Stack is the raw goroutine stack capture, when available.
	Stack []byte
}

// String renders the canonical text form: the bare message, or
// "message (file:line)" when the origin is known.
func (i FaultInfo) String() string {
	if i.File == "" {
		return i.Message
	}
	return fmt.Sprintf("%s (%s:%d)", i.Message, i.File, i.Line)
}

// faultMessage converts a recovered panic value to text. Errors and strings
// keep their natural form; everything else goes through fmt.
func faultMessage(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
