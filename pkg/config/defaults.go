package config

import "time"

// Default values for configuration fields.
const (
	// EM defaults
	DefaultEMMaxIterations = 1500
	DefaultEMTolerance     = 1e-7

	// MCMC defaults
	DefaultMCMCChains      = 4
	DefaultMCMCSamples     = 2000
	DefaultMCMCBurnIn      = 1000
	DefaultMCMCProposalSD  = 0.1
	DefaultMCMCPriorFamily = "uniform"
	DefaultMCMCPriorLower  = -10.0
	DefaultMCMCPriorUpper  = 10.0

	// Relabel defaults
	DefaultRelabelEpsilon = 1e-9

	// Results defaults
	DefaultResultsPath          = "data/binocular.db"
	DefaultResultsBusyTimeout   = 5 * time.Second
	DefaultResultsRetentionDays = 90
	DefaultResultsPruneSchedule = "0 3 * * *"

	// Metrics defaults
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsNamespace     = "binocular"

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "text"
)

// ApplyDefaults applies default values to a Config struct. It sets defaults
// for any fields that have zero values and is idempotent.
func ApplyDefaults(cfg *Config) {
	// EM defaults
	if cfg.EM.MaxIterations == 0 {
		cfg.EM.MaxIterations = DefaultEMMaxIterations
	}
	if cfg.EM.Tolerance == 0 {
		cfg.EM.Tolerance = DefaultEMTolerance
	}

	// MCMC defaults
	if cfg.MCMC.Chains == 0 {
		cfg.MCMC.Chains = DefaultMCMCChains
	}
	if cfg.MCMC.Samples == 0 {
		cfg.MCMC.Samples = DefaultMCMCSamples
	}
	if cfg.MCMC.BurnIn == 0 {
		cfg.MCMC.BurnIn = DefaultMCMCBurnIn
	}
	if cfg.MCMC.ProposalSD == 0 {
		cfg.MCMC.ProposalSD = DefaultMCMCProposalSD
	}
	if cfg.MCMC.PriorFamily == "" {
		cfg.MCMC.PriorFamily = DefaultMCMCPriorFamily
	}
	if cfg.MCMC.PriorLower == 0 && cfg.MCMC.PriorUpper == 0 {
		cfg.MCMC.PriorLower = DefaultMCMCPriorLower
		cfg.MCMC.PriorUpper = DefaultMCMCPriorUpper
	}

	// Relabel defaults
	if cfg.Relabel.Epsilon == 0 {
		cfg.Relabel.Epsilon = DefaultRelabelEpsilon
	}

	// Results defaults. An empty path means persistence is disabled, so only
	// the supporting knobs get defaults here.
	if cfg.Results.BusyTimeout == 0 {
		cfg.Results.BusyTimeout = DefaultResultsBusyTimeout
	}
	if cfg.Results.RetentionDays == 0 {
		cfg.Results.RetentionDays = DefaultResultsRetentionDays
	}
	if cfg.Results.PruneSchedule == "" {
		cfg.Results.PruneSchedule = DefaultResultsPruneSchedule
	}

	// Metrics defaults
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
}

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Results.WALMode = true
	return &cfg
}
