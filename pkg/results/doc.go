// Package results persists estimation runs in SQLite.
//
// # Overview
//
// Every fit records a run row (uuid identifier, estimator kind, convergence
// flags) plus its parameter table, and MCMC runs additionally store the full
// pooled posterior-draw table. History survives across invocations so
// estimates can be compared between datasets and starting values.
//
// # Storage
//
// The backend is a single SQLite database opened with WAL mode and a busy
// timeout. The schema is created on open and is idempotent.
//
// # Retention
//
// A Pruner deletes runs older than a configured age, either on demand or on
// a cron schedule through the Scheduler.
package results
