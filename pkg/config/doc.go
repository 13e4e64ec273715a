// Package config loads and validates binocular's YAML configuration.
//
// # Loading Sequence
//
// Load reads a YAML file, applies defaults for unset fields, and validates
// the result. LoadWithEnvOverrides additionally applies BINOCULAR_*
// environment variables after the file, with the environment always winning:
//
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
//
// Environment variables follow BINOCULAR_SECTION_FIELD naming, e.g.
// BINOCULAR_MCMC_CHAINS or BINOCULAR_RESULTS_PATH.
//
// # Sections
//
// The configuration covers the EM and MCMC estimator defaults, the
// label-switch epsilon, the run store path and retention policy, the
// metrics endpoint, and logging.
package config
