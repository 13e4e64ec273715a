package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention BINOCULAR_SECTION_FIELD (e.g., BINOCULAR_MCMC_CHAINS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format BINOCULAR_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// EM overrides
	if val := os.Getenv("BINOCULAR_EM_MAX_ITERATIONS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.EM.MaxIterations = i
		}
	}
	if val := os.Getenv("BINOCULAR_EM_TOLERANCE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.EM.Tolerance = f
		}
	}

	// MCMC overrides
	if val := os.Getenv("BINOCULAR_MCMC_CHAINS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.MCMC.Chains = i
		}
	}
	if val := os.Getenv("BINOCULAR_MCMC_SAMPLES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.MCMC.Samples = i
		}
	}
	if val := os.Getenv("BINOCULAR_MCMC_BURN_IN"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.MCMC.BurnIn = i
		}
	}
	if val := os.Getenv("BINOCULAR_MCMC_SEED"); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			cfg.MCMC.Seed = u
		}
	}
	if val := os.Getenv("BINOCULAR_MCMC_PROPOSAL_SD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.MCMC.ProposalSD = f
		}
	}
	if val := os.Getenv("BINOCULAR_MCMC_PRIOR_FAMILY"); val != "" {
		cfg.MCMC.PriorFamily = val
	}
	if val := os.Getenv("BINOCULAR_MCMC_PRIOR_LOWER"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.MCMC.PriorLower = f
		}
	}
	if val := os.Getenv("BINOCULAR_MCMC_PRIOR_UPPER"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.MCMC.PriorUpper = f
		}
	}

	// Relabel overrides
	if val := os.Getenv("BINOCULAR_RELABEL_EPSILON"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Relabel.Epsilon = f
		}
	}

	// Results overrides
	if val := os.Getenv("BINOCULAR_RESULTS_PATH"); val != "" {
		cfg.Results.Path = val
	}
	if val := os.Getenv("BINOCULAR_RESULTS_WAL_MODE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Results.WALMode = b
		}
	}
	if val := os.Getenv("BINOCULAR_RESULTS_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Results.BusyTimeout = d
		}
	}
	if val := os.Getenv("BINOCULAR_RESULTS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Results.RetentionDays = i
		}
	}
	if val := os.Getenv("BINOCULAR_RESULTS_PRUNE_SCHEDULE"); val != "" {
		cfg.Results.PruneSchedule = val
	}

	// Metrics overrides
	if val := os.Getenv("BINOCULAR_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("BINOCULAR_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
	if val := os.Getenv("BINOCULAR_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}

	// Logging overrides
	if val := os.Getenv("BINOCULAR_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("BINOCULAR_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
