package rtconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FormatError reports that the file at Path was readable but its
// contents were not a valid rtconfig.Config — either malformed YAML or
// a value that failed struct-tag validation. Distinguished from a plain
// I/O error (file missing, permission denied, ...) so a caller such as
// cmd/pipelinedemo can map the two to different exit codes, per spec §6.
type FormatError struct {
	Path string
	Err  error
}

// Error implements error.
func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("rtconfig: %s is not a valid config: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying YAML/validation error.
func (e *FormatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Load reads and validates an rtconfig.Config from a YAML file at path,
// falling back to Default() for any field the file omits. A failure to
// open/read path is returned as a plain wrapped error; a failure to
// parse or validate its contents is returned as a *FormatError.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rtconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &FormatError{Path: path, Err: err}
	}
	if err := Validate(&cfg); err != nil {
		return Config{}, &FormatError{Path: path, Err: err}
	}
	return cfg, nil
}
