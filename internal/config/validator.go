package config

import (
	"fmt"
	"strings"
)

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"auto": true, "text": true, "json": true}
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if !validLevels[c.Log.Level] {
		errs = append(errs, ValidationError{"log.level", c.Log.Level, "must be debug, info, warn or error"})
	}
	if !validFormats[c.Log.Format] {
		errs = append(errs, ValidationError{"log.format", c.Log.Format, "must be auto, text or json"})
	}
	if c.Dumps.Dir == "" {
		errs = append(errs, ValidationError{"dumps.dir", c.Dumps.Dir, "must not be empty"})
	}
	if c.Dumps.MaxFiles <= 0 {
		errs = append(errs, ValidationError{"dumps.max_files", c.Dumps.MaxFiles, "must be positive"})
	}
	if c.Serve.Host == "" {
		errs = append(errs, ValidationError{"serve.host", c.Serve.Host, "must not be empty"})
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		errs = append(errs, ValidationError{"serve.port", c.Serve.Port, "must be in 1..65535"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
