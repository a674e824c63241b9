package diagnostics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/hugo-lorenzo-mato/faultline"
)

// DefaultDir is the dump directory used when none is configured.
const DefaultDir = ".faultline/dumps"

// CrashDump is the persisted record of a single fault.
type CrashDump struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ProcessID int       `json:"process_id"`
	GoVersion string    `json:"go_version"`
	GOOS      string    `json:"goos"`
	GOARCH    string    `json:"goarch"`

	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Stack   string `json:"stack,omitempty"`

	System      SystemInfo        `json:"system"`
	RedactedEnv map[string]string `json:"redacted_env,omitempty"`
}

// Rendered returns the fault text as the dispatch path would emit it.
func (d *CrashDump) Rendered() string {
	info := faultline.FaultInfo{Message: d.Message, File: d.File, Line: d.Line}
	return info.String()
}

// DumpWriter generates and persists crash dumps.
type DumpWriter struct {
	dir          string
	maxFiles     int
	includeStack bool
	includeEnv   bool
	logger       *slog.Logger

	mu sync.Mutex // protects file operations
}

// NewDumpWriter creates a dump writer. Zero values fall back to DefaultDir
// and a bound of 10 retained dumps.
func NewDumpWriter(dir string, maxFiles int, includeStack, includeEnv bool, logger *slog.Logger) *DumpWriter {
	if dir == "" {
		dir = DefaultDir
	}
	if maxFiles <= 0 {
		maxFiles = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DumpWriter{
		dir:          dir,
		maxFiles:     maxFiles,
		includeStack: includeStack,
		includeEnv:   includeEnv,
		logger:       logger,
	}
}

// Handler returns a fault handler that records a dump and then forwards the
// fault to the regular dispatch path. Install it with faultline.SetHandler.
// Dump failures are logged and swallowed; dispatch always happens.
func (w *DumpWriter) Handler() faultline.Handler {
	return func(info faultline.FaultInfo) {
		if path, err := w.Record(info); err != nil {
			w.logger.Error("failed to write crash dump",
				slog.String("error", err.Error()),
				slog.String("fault", info.Message),
			)
		} else {
			w.logger.Error("crash dump written",
				slog.String("path", path),
				slog.String("fault", info.Message),
			)
		}
		faultline.Dispatch(info)
	}
}

// ShortID returns the first eight characters of a dump ID, or the whole
// ID when it is shorter. List tolerates foreign fault-*.json files, so
// IDs of any length can surface.
func ShortID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}

// Record writes one crash dump for info and returns its path.
func (w *DumpWriter) Record(info faultline.FaultInfo) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	dump := CrashDump{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		ProcessID: os.Getpid(),
		GoVersion: runtime.Version(),
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		Message:   info.Message,
		File:      info.File,
		Line:      info.Line,
		System:    CollectSystemInfo(),
	}
	if w.includeStack {
		dump.Stack = string(info.Stack)
	}
	if w.includeEnv {
		dump.RedactedEnv = redactEnvironment(os.Environ())
	}

	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("creating dump dir: %w", err)
	}

	name := fmt.Sprintf("fault-%s-%s.json",
		dump.Timestamp.Format("2006-01-02T15-04-05"), ShortID(dump.ID))
	path := filepath.Join(w.dir, name)

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling dump: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing dump: %w", err)
	}

	w.pruneLocked()
	return path, nil
}

// pruneLocked removes the oldest dumps beyond maxFiles. Callers hold w.mu.
func (w *DumpWriter) pruneLocked() {
	names, err := dumpNames(w.dir)
	if err != nil {
		return
	}
	// Timestamped names sort chronologically.
	sort.Strings(names)
	for len(names) > w.maxFiles {
		path := filepath.Join(w.dir, names[0])
		if err := os.Remove(path); err != nil {
			w.logger.Warn("failed to remove old crash dump",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
		names = names[1:]
	}
}

func dumpNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "fault-") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// List loads every dump in dir, newest first. A missing directory yields an
// empty list rather than an error.
func List(dir string) ([]CrashDump, error) {
	names, err := dumpNames(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading dump dir: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	dumps := make([]CrashDump, 0, len(names))
	for _, name := range names {
		dump, err := Load(filepath.Join(dir, name))
		if err != nil {
			continue // skip corrupt files, keep the rest readable
		}
		dumps = append(dumps, *dump)
	}
	return dumps, nil
}

// Load reads a single dump file.
func Load(path string) (*CrashDump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dump: %w", err)
	}
	var dump CrashDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("parsing dump %s: %w", filepath.Base(path), err)
	}
	return &dump, nil
}

// Find returns the dump whose ID equals or starts with id.
func Find(dir, id string) (*CrashDump, error) {
	dumps, err := List(dir)
	if err != nil {
		return nil, err
	}
	for i := range dumps {
		if dumps[i].ID == id || strings.HasPrefix(dumps[i].ID, id) {
			return &dumps[i], nil
		}
	}
	return nil, fmt.Errorf("no crash dump with id %q", id)
}

// Latest returns the most recent dump in dir.
func Latest(dir string) (*CrashDump, error) {
	dumps, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(dumps) == 0 {
		return nil, fmt.Errorf("no crash dumps in %s", dir)
	}
	return &dumps[0], nil
}

var sensitiveKeyParts = []string{
	"TOKEN", "KEY", "SECRET", "PASSWORD", "CREDENTIAL", "AUTH", "PRIVATE",
}

// redactEnvironment masks values of credential-looking variables.
func redactEnvironment(environ []string) map[string]string {
	result := make(map[string]string, len(environ))
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		upper := strings.ToUpper(key)
		redact := false
		for _, part := range sensitiveKeyParts {
			if strings.Contains(upper, part) {
				redact = true
				break
			}
		}
		if redact {
			result[key] = "[REDACTED]"
		} else {
			result[key] = value
		}
	}
	return result
}
