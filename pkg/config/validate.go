package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "mcmc.chains").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEM(&cfg.EM)...)
	errs = append(errs, validateMCMC(&cfg.MCMC)...)
	errs = append(errs, validateRelabel(&cfg.Relabel)...)
	errs = append(errs, validateResults(&cfg.Results)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateEM(cfg *EMConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxIterations <= 0 {
		errs = append(errs, FieldError{
			Field:   "em.max_iterations",
			Message: "max iterations must be positive",
		})
	}
	if cfg.Tolerance <= 0 {
		errs = append(errs, FieldError{
			Field:   "em.tolerance",
			Message: "tolerance must be positive",
		})
	}

	return errs
}

func validateMCMC(cfg *MCMCConfig) []FieldError {
	var errs []FieldError

	if cfg.Chains <= 0 {
		errs = append(errs, FieldError{
			Field:   "mcmc.chains",
			Message: "chain count must be positive",
		})
	}
	if cfg.Samples <= 0 {
		errs = append(errs, FieldError{
			Field:   "mcmc.samples",
			Message: "sample count must be positive",
		})
	}
	if cfg.BurnIn < 0 {
		errs = append(errs, FieldError{
			Field:   "mcmc.burn_in",
			Message: "burn-in must not be negative",
		})
	}
	if cfg.ProposalSD <= 0 {
		errs = append(errs, FieldError{
			Field:   "mcmc.proposal_sd",
			Message: "proposal standard deviation must be positive",
		})
	}

	switch cfg.PriorFamily {
	case "uniform":
		if cfg.PriorLower >= cfg.PriorUpper {
			errs = append(errs, FieldError{
				Field:   "mcmc.prior_lower",
				Message: "uniform prior lower bound must be below upper bound",
			})
		}
	case "normal":
		if cfg.PriorUpper <= 0 {
			errs = append(errs, FieldError{
				Field:   "mcmc.prior_upper",
				Message: "normal prior standard deviation must be positive",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "mcmc.prior_family",
			Message: fmt.Sprintf("unknown prior family %q (must be \"uniform\" or \"normal\")", cfg.PriorFamily),
		})
	}

	return errs
}

func validateRelabel(cfg *RelabelConfig) []FieldError {
	var errs []FieldError

	if cfg.Epsilon < 0 {
		errs = append(errs, FieldError{
			Field:   "relabel.epsilon",
			Message: "epsilon must not be negative",
		})
	}

	return errs
}

func validateResults(cfg *ResultsConfig) []FieldError {
	var errs []FieldError

	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "results.busy_timeout",
			Message: "busy timeout must not be negative",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "results.retention_days",
			Message: "retention days must not be negative",
		})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "results.prune_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q (must be debug, info, warn or error)", cfg.Level),
		})
	}

	switch cfg.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q (must be text or json)", cfg.Format),
		})
	}

	return errs
}
