package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config controls metric collection.
type Config struct {
	// Enabled turns recording on. When false every record call is a no-op.
	Enabled bool

	// Namespace is the metric name prefix. Default: "binocular".
	Namespace string

	// RunDurationBuckets are the histogram buckets for full-run durations in
	// seconds. Defaults cover sub-second EM fits through multi-minute MCMC
	// runs.
	RunDurationBuckets []float64
}

// Collector registers and records all estimation metrics.
//
// Metrics:
//   - binocular_runs_total: Completed runs by estimator and outcome
//   - binocular_run_duration_seconds: Full-run duration histogram
//   - binocular_em_iterations: EM iteration count per run
//   - binocular_mcmc_draws_total: Retained posterior draws by chain
//   - binocular_mcmc_acceptance_ratio: Latest acceptance rate by chain and block
//   - binocular_label_corrections_total: Runs whose labels were swapped
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	emIterations     prometheus.Histogram
	mcmcDrawsTotal   *prometheus.CounterVec
	acceptanceRatio  *prometheus.GaugeVec
	correctionsTotal prometheus.Counter
}

// NewCollector creates a collector registered on the given registry. A nil
// registry gets a fresh one.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "binocular"
	}
	if len(cfg.RunDurationBuckets) == 0 {
		cfg.RunDurationBuckets = []float64{0.05, 0.25, 1, 5, 15, 60, 300, 900}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_total",
				Help:      "Total number of completed estimation runs",
			},
			[]string{"estimator", "outcome"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of estimation runs in seconds",
				Buckets:   cfg.RunDurationBuckets,
			},
			[]string{"estimator"},
		),

		emIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "em_iterations",
				Help:      "EM iterations used per run",
				Buckets:   prometheus.ExponentialBuckets(10, 2, 9),
			},
		),

		mcmcDrawsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "mcmc_draws_total",
				Help:      "Retained posterior draws after burn-in",
			},
			[]string{"chain"},
		),

		acceptanceRatio: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "mcmc_acceptance_ratio",
				Help:      "Acceptance rate of the most recent run",
			},
			[]string{"chain", "block"},
		),

		correctionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "label_corrections_total",
				Help:      "Runs whose mechanism labels were swapped back to canonical order",
			},
		),
	}

	registry.MustRegister(
		c.runsTotal,
		c.runDuration,
		c.emIterations,
		c.mcmcDrawsTotal,
		c.acceptanceRatio,
		c.correctionsTotal,
	)

	return c
}

// RecordEMRun records a completed EM run.
//
// Parameters:
//   - converged: whether the run met its tolerance within the iteration cap
//   - iterations: iterations used
//   - corrected: whether label correction fired
//   - duration: full-run wall time
func (c *Collector) RecordEMRun(converged bool, iterations int, corrected bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.runsTotal.WithLabelValues("em", outcome(converged)).Inc()
	c.runDuration.WithLabelValues("em").Observe(duration.Seconds())
	c.emIterations.Observe(float64(iterations))
	if corrected {
		c.correctionsTotal.Inc()
	}
}

// RecordMCMCRun records a completed MCMC run. healthy is false when any
// chain showed degenerate acceptance.
func (c *Collector) RecordMCMCRun(healthy bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.runsTotal.WithLabelValues("mcmc", outcome(healthy)).Inc()
	c.runDuration.WithLabelValues("mcmc").Observe(duration.Seconds())
}

// RecordChain records per-chain draw counts and acceptance rates.
func (c *Collector) RecordChain(chain int, draws int, betaAccept, gammaAccept float64) {
	if !c.config.Enabled {
		return
	}
	label := chainLabel(chain)
	c.mcmcDrawsTotal.WithLabelValues(label).Add(float64(draws))
	c.acceptanceRatio.WithLabelValues(label, "beta").Set(betaAccept)
	c.acceptanceRatio.WithLabelValues(label, "gamma").Set(gammaAccept)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "flagged"
}

func chainLabel(chain int) string {
	// Chains are numbered from 1 in diagnostics and labels alike.
	return "chain_" + strconv.Itoa(chain)
}
