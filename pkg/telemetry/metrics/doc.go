// Package metrics exposes Prometheus instrumentation for estimation runs.
//
// All metrics live on a caller-supplied registry so tests and embedders can
// isolate their collectors. The Collector wraps the individual metric
// families and is safe for concurrent use; when disabled, every record call
// is a no-op.
//
// Metrics are served over HTTP in watch mode, where a long-lived process
// refits repeatedly and scraping run counts and durations is actually
// useful. One-shot CLI runs do not start the endpoint.
package metrics
