package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Dumps.MaxFiles != 10 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`log:
  level: debug
  format: json
dumps:
  dir: /var/tmp/faults
  max_files: 3
serve:
  port: 9090
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log config = %+v", cfg.Log)
	}
	if cfg.Dumps.Dir != "/var/tmp/faults" || cfg.Dumps.MaxFiles != 3 {
		t.Errorf("dumps config = %+v", cfg.Dumps)
	}
	if cfg.Serve.Port != 9090 || cfg.Serve.Host != "localhost" {
		t.Errorf("serve config = %+v", cfg.Serve)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FAULTLINE_LOG_LEVEL", "warn")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log.level = %q, want env override warn", cfg.Log.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Dumps.Dir = ""
	cfg.Dumps.MaxFiles = 0
	cfg.Serve.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type %T", err)
	}
	if len(errs) != 5 {
		t.Errorf("got %d errors, want 5: %v", len(errs), errs)
	}
}
