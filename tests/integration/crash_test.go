//go:build integration

package integration_test

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/faultline"
	"github.com/hugo-lorenzo-mato/faultline/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/faultline/internal/logging"
)

const crashMessage = "index out of bounds: the len is 3 but the index is 5"

// TestFaultDispatchEndToEnd re-executes the test binary as a crashing child
// process: the child installs the hook, panics on a worker goroutine, and
// dies. The parent asserts the fault text reached stderr and the process
// terminated non-zero.
func TestFaultDispatchEndToEnd(t *testing.T) {
	if os.Getenv("FAULTLINE_CRASH_HELPER") == "1" {
		runCrashHelper()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFaultDispatchEndToEnd$")
	cmd.Env = append(os.Environ(), "FAULTLINE_CRASH_HELPER=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "child must terminate non-zero, stderr:\n%s", stderr.String())
	assert.Contains(t, stderr.String(), crashMessage)
}

// TestFaultDumpEndToEnd is the same scenario with a dump-recording handler;
// the parent inspects the dump directory afterwards.
func TestFaultDumpEndToEnd(t *testing.T) {
	if os.Getenv("FAULTLINE_CRASH_HELPER") == "1" {
		runCrashHelper()
		return
	}

	dumpDir := t.TempDir()
	cmd := exec.Command(os.Args[0], "-test.run=TestFaultDumpEndToEnd$")
	cmd.Env = append(os.Environ(),
		"FAULTLINE_CRASH_HELPER=1",
		"FAULTLINE_CRASH_DUMP_DIR="+dumpDir,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "child must terminate non-zero, stderr:\n%s", stderr.String())

	dumps, err := diagnostics.List(dumpDir)
	require.NoError(t, err)
	require.Len(t, dumps, 1)
	assert.Equal(t, crashMessage, dumps[0].Message)
	assert.True(t, strings.HasSuffix(dumps[0].File, "crash_test.go"),
		"origin file = %q", dumps[0].File)
}

// runCrashHelper is the child-process body; it never returns.
func runCrashHelper() {
	faultline.InstallOnce()
	if dir := os.Getenv("FAULTLINE_CRASH_DUMP_DIR"); dir != "" {
		writer := diagnostics.NewDumpWriter(dir, 10, true, false, logging.NewNop())
		faultline.SetHandler(writer.Handler())
	}

	faultline.Go(func() {
		panic(crashMessage)
	})
	select {} // the re-raised panic terminates the process
}
