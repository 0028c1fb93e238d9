package rtconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\ndefault_spawner: queue\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, SpawnerQueue, cfg.DefaultSpawner)
}

func TestLoadRejectsInvalidSpawnerKind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\ndefault_spawner: quantum\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	require.Equal(t, path, formatErr.Path)
}

func TestLoadRejectsMalformedYAMLAsFormatError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [this is not a string\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestLoadDistinguishesIOErrorFromFormatError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.yaml")

	_, err := Load(missing)
	require.Error(t, err)

	var formatErr *FormatError
	require.False(t, errors.As(err, &formatErr), "a missing file is an I/O error, not a FormatError")
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(&cfg))
}
