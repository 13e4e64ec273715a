package config

import "time"

// Config is the root configuration.
type Config struct {
	EM      EMConfig      `yaml:"em"`
	MCMC    MCMCConfig    `yaml:"mcmc"`
	Relabel RelabelConfig `yaml:"relabel"`
	Results ResultsConfig `yaml:"results"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// EMConfig holds EM estimator defaults.
type EMConfig struct {
	// MaxIterations caps the E/M loop.
	MaxIterations int `yaml:"max_iterations"`
	// Tolerance is the max-abs parameter change declaring convergence.
	Tolerance float64 `yaml:"tolerance"`
}

// MCMCConfig holds MCMC estimator defaults.
type MCMCConfig struct {
	Chains     int     `yaml:"chains"`
	Samples    int     `yaml:"samples"`
	BurnIn     int     `yaml:"burn_in"`
	Seed       uint64  `yaml:"seed"`
	ProposalSD float64 `yaml:"proposal_sd"`
	// PriorFamily is "uniform" or "normal".
	PriorFamily string `yaml:"prior_family"`
	// PriorLower/PriorUpper are the shared uniform bounds (or mean/sd for
	// the normal family) applied to every estimable coefficient.
	PriorLower float64 `yaml:"prior_lower"`
	PriorUpper float64 `yaml:"prior_upper"`
}

// RelabelConfig holds the label-switch corrector settings.
type RelabelConfig struct {
	// Epsilon is the intercept-gap dead zone below which near-symmetric
	// estimates are left unrelabeled.
	Epsilon float64 `yaml:"epsilon"`
}

// ResultsConfig holds run-store settings.
type ResultsConfig struct {
	// Path is the SQLite database file. Empty disables persistence.
	Path          string        `yaml:"path"`
	WALMode       bool          `yaml:"wal_mode"`
	BusyTimeout   time.Duration `yaml:"busy_timeout"`
	RetentionDays int           `yaml:"retention_days"`
	PruneSchedule string        `yaml:"prune_schedule"`
}

// MetricsConfig holds the Prometheus endpoint settings used in watch mode.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"`
	Namespace     string `yaml:"namespace"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}
