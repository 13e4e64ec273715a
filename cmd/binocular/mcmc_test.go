package main

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"latentlab/binocular/pkg/mcmc"
	"latentlab/binocular/pkg/telemetry/metrics"
)

func TestHealthyRun(t *testing.T) {
	res := &mcmc.Result{Diagnostics: []mcmc.ChainDiagnostics{
		{Chain: 1, BetaAcceptRate: 0.3, GammaAcceptRate: 0.25},
		{Chain: 2, BetaAcceptRate: 0.28, GammaAcceptRate: 0.31},
	}}
	if !healthyRun(res) {
		t.Error("run with no degenerate chains reported unhealthy")
	}

	res.Diagnostics[1].Degenerate = true
	if healthyRun(res) {
		t.Error("run with a degenerate chain reported healthy")
	}
}

func TestRecordMCMCMetrics(t *testing.T) {
	c := metrics.NewCollector(&metrics.Config{Enabled: true}, nil)
	res := &mcmc.Result{Diagnostics: []mcmc.ChainDiagnostics{
		{Chain: 1, BetaAcceptRate: 0.3, GammaAcceptRate: 0.25},
		{Chain: 2, BetaAcceptRate: 0.28, GammaAcceptRate: 0.31},
	}}

	recordMCMCMetrics(c, res, 200, time.Second)

	expected := strings.NewReader(`
# HELP binocular_runs_total Total number of completed estimation runs
# TYPE binocular_runs_total counter
binocular_runs_total{estimator="mcmc",outcome="ok"} 1
# HELP binocular_mcmc_draws_total Retained posterior draws after burn-in
# TYPE binocular_mcmc_draws_total counter
binocular_mcmc_draws_total{chain="chain_1"} 200
binocular_mcmc_draws_total{chain="chain_2"} 200
`)
	if err := testutil.GatherAndCompare(c.Registry(), expected,
		"binocular_runs_total", "binocular_mcmc_draws_total"); err != nil {
		t.Errorf("unexpected metric values: %v", err)
	}
}

func TestRecordMCMCMetrics_DegenerateChainFlagsRun(t *testing.T) {
	c := metrics.NewCollector(&metrics.Config{Enabled: true}, nil)
	res := &mcmc.Result{Diagnostics: []mcmc.ChainDiagnostics{
		{Chain: 1, BetaAcceptRate: 0, GammaAcceptRate: 0, Degenerate: true},
	}}

	recordMCMCMetrics(c, res, 50, time.Second)

	expected := strings.NewReader(`
# HELP binocular_runs_total Total number of completed estimation runs
# TYPE binocular_runs_total counter
binocular_runs_total{estimator="mcmc",outcome="flagged"} 1
`)
	if err := testutil.GatherAndCompare(c.Registry(), expected, "binocular_runs_total"); err != nil {
		t.Errorf("unexpected metric values: %v", err)
	}
}
