// Package cli provides shared command-line helpers: output formatting for
// estimate and draw tables, progress reporting for long MCMC runs, signal
// handling, and CLI error types.
package cli
