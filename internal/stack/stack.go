// Package stack extracts the fault origin from a goroutine stack capture.
//
// The parser is deliberately forgiving: runtime stack formatting is not a
// stable API, so any line it does not understand simply means "no origin",
// and callers fall back to rendering the bare fault message.
package stack

import (
	"strconv"
	"strings"
)

// Frame identifies one call site in a stack capture.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Origin returns the frame that raised the most recent panic in a
// runtime/debug.Stack capture: the first non-runtime frame below the
// panic machinery. ok is false when no such frame can be found.
func Origin(capture []byte) (Frame, bool) {
	lines := strings.Split(string(capture), "\n")

	// The runtime prints its own gopanic frame as "panic({...})"; every
	// application frame carries a package path prefix, so a bare "panic("
	// prefix can only be the runtime's.
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "panic(") {
			start = i
			break
		}
	}
	if start < 0 {
		return Frame{}, false
	}

	// The gopanic frame's own location line follows it; the interesting
	// (function, "\tfile:line +offset") pairs start after that. Skip the
	// runtime frames that raise builtin faults (goPanicIndex and friends).
	for i := start + 2; i+1 < len(lines); i += 2 {
		fn := lines[i]
		loc := lines[i+1]
		if fn == "" || strings.HasPrefix(fn, "created by ") {
			break
		}
		if !strings.HasPrefix(loc, "\t") {
			break
		}
		if strings.HasPrefix(fn, "runtime.") {
			continue
		}
		file, line, ok := parseLocation(strings.TrimSpace(loc))
		if !ok {
			return Frame{}, false
		}
		return Frame{
			Function: trimCallArgs(fn),
			File:     file,
			Line:     line,
		}, true
	}
	return Frame{}, false
}

// parseLocation splits "/path/file.go:26 +0x5e" into path and line number.
func parseLocation(loc string) (string, int, bool) {
	if i := strings.IndexByte(loc, ' '); i >= 0 {
		loc = loc[:i]
	}
	i := strings.LastIndexByte(loc, ':')
	if i <= 0 || i == len(loc)-1 {
		return "", 0, false
	}
	line, err := strconv.Atoi(loc[i+1:])
	if err != nil || line <= 0 {
		return "", 0, false
	}
	return loc[:i], line, true
}

// trimCallArgs reduces "pkg.fn(0x14, 0x3)" to "pkg.fn".
func trimCallArgs(fn string) string {
	if i := strings.LastIndexByte(fn, '('); i > 0 {
		return fn[:i]
	}
	return fn
}
