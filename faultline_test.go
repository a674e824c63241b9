package faultline

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

// recordingSink captures dispatched messages for assertions.
type recordingSink struct {
	mu   sync.Mutex
	msgs []string
}

func (s *recordingSink) LogError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordingSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

// resetHook gives each test a fresh uninstalled hook slot and build-default
// sink. Tests touching process-wide state must not run in parallel.
func resetHook(t *testing.T) *recordingSink {
	t.Helper()
	state = &hookState{}
	rec := &recordingSink{}
	SetSink(rec)
	t.Cleanup(func() {
		state = &hookState{}
		SetSink(nil)
	})
	return rec
}

func TestFaultInfoString(t *testing.T) {
	bare := FaultInfo{Message: "index out of bounds: the len is 3 but the index is 5"}
	if got := bare.String(); got != bare.Message {
		t.Errorf("bare String() = %q, want bare message", got)
	}

	located := FaultInfo{Message: "boom", File: "/src/app/main.go", Line: 12}
	if got := located.String(); got != "boom (/src/app/main.go:12)" {
		t.Errorf("located String() = %q", got)
	}
}

func TestDispatchDeliversRenderedMessage(t *testing.T) {
	rec := resetHook(t)

	msg := "index out of bounds: the len is 3 but the index is 5"
	Dispatch(FaultInfo{Message: msg})

	if got := rec.messages(); len(got) != 1 || got[0] != msg {
		t.Errorf("sink received %v, want exactly [%q]", got, msg)
	}
}

func TestStderrSinkWritesSingleNewline(t *testing.T) {
	var buf bytes.Buffer
	StderrSink{W: &buf}.LogError("boom")

	if got := buf.String(); got != "boom\n" {
		t.Errorf("wrote %q, want %q", got, "boom\n")
	}
}

// failingWriter always errors, simulating a closed stream.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("stream closed")
}

func TestStderrSinkDiscardsWriteFailure(t *testing.T) {
	// Must neither panic nor surface the error.
	StderrSink{W: failingWriter{}}.LogError("boom")
}

// Each registration stores a fresh *Handler into the slot, so pointer
// identity tells repeated registrations apart from no-op calls.

func TestInstallIsIdempotent(t *testing.T) {
	resetHook(t)

	Install()
	first := state.handler.Load()
	Install()
	second := state.handler.Load()

	if !Installed() {
		t.Fatal("expected handler installed")
	}
	if first == second {
		t.Error("second Install did not perform its own registration")
	}
}

func TestInstallOnceConcurrent(t *testing.T) {
	resetHook(t)

	const callers = 32
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			InstallOnce()
			// Completion barrier: the registration must be visible to
			// every caller that has returned from InstallOnce.
			if !Installed() {
				t.Error("InstallOnce returned before registration completed")
			}
		}()
	}
	wg.Wait()

	registered := state.handler.Load()
	if registered == nil {
		t.Fatal("expected handler installed")
	}
	InstallOnce()
	if state.handler.Load() != registered {
		t.Error("later InstallOnce registered a second time")
	}
}

func TestInstallThenInstallOnce(t *testing.T) {
	resetHook(t)

	Install()
	registered := state.handler.Load()
	InstallOnce()

	if !Installed() {
		t.Fatal("expected handler installed")
	}
	if state.handler.Load() != registered {
		t.Error("InstallOnce after Install registered a second time")
	}
}

func TestGuardWithoutHookLeavesPanicUntouched(t *testing.T) {
	rec := resetHook(t)

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		defer Guard()
		panic("unobserved")
	}()

	if recovered != "unobserved" {
		t.Errorf("recovered %v, want original panic value", recovered)
	}
	if got := rec.messages(); len(got) != 0 {
		t.Errorf("sink received %v, want nothing without installation", got)
	}
}

func TestGuardDispatchesAndRepanics(t *testing.T) {
	rec := resetHook(t)
	Install()

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		defer Guard()
		panic("boom")
	}()

	if recovered != "boom" {
		t.Errorf("recovered %v, want original panic value", recovered)
	}
	got := rec.messages()
	if len(got) != 1 {
		t.Fatalf("sink received %d messages, want 1: %v", len(got), got)
	}
	if !strings.HasPrefix(got[0], "boom (") || !strings.Contains(got[0], "faultline_test.go:") {
		t.Errorf("message = %q, want boom plus test-file origin", got[0])
	}
}

func TestGuardStringifiesErrorValues(t *testing.T) {
	resetHook(t)

	var info FaultInfo
	SetHandler(func(fi FaultInfo) { info = fi })

	func() {
		defer func() { _ = recover() }()
		defer Guard()
		panic(errors.New("cursed state"))
	}()

	if info.Message != "cursed state" {
		t.Errorf("message = %q, want error text", info.Message)
	}
	if len(info.Stack) == 0 {
		t.Error("expected a stack capture")
	}
}

func TestSetHandlerNilClearsSlot(t *testing.T) {
	resetHook(t)

	Install()
	SetHandler(nil)
	if Installed() {
		t.Error("expected slot cleared")
	}
}

func TestGoRunsFunction(t *testing.T) {
	resetHook(t)

	done := make(chan struct{})
	Go(func() { close(done) })
	<-done
}
