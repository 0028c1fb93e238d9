// Package rtconfig holds the ambient runtime tuning knobs for a hosted
// pipeline: log level, default spawner choice, and the optional
// residue-sweep horizon from spec §9's stalled-runs open question. It
// deliberately does not describe components or edges — that DAG
// description is the "configuration file loading" collaborator spec §1
// excludes from the runtime's scope; this package only configures the
// scheduler itself.
package rtconfig

import "time"

// SpawnerKind names one of the three Spawner implementations a caller
// may select as the runtime default.
type SpawnerKind string

const (
	SpawnerScoped    SpawnerKind = "scoped"
	SpawnerQueue     SpawnerKind = "queue"
	SpawnerImmediate SpawnerKind = "immediate"
)

// Config is the ambient runtime configuration, loadable from YAML.
type Config struct {
	LogLevel string `yaml:"log_level" validate:"required,oneof=debug info warn error"`

	DefaultSpawner SpawnerKind `yaml:"default_spawner" validate:"required,oneof=scoped queue immediate"`

	// ResidueSweepHorizon, when non-zero, enables a best-effort
	// background sweeper that logs (never deletes) aggregation entries
	// older than this duration. Zero disables the sweeper, the source's
	// own behavior (spec §9).
	ResidueSweepHorizon time.Duration `yaml:"residue_sweep_horizon"`
}

// Default returns the runtime's out-of-the-box configuration: info
// logging, the scoped parallel spawner, sweeper disabled.
func Default() Config {
	return Config{
		LogLevel:       "info",
		DefaultSpawner: SpawnerScoped,
	}
}
