package mcmc

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"latentlab/binocular/pkg/em"
	"latentlab/binocular/pkg/model"
	"latentlab/binocular/pkg/simulate"
)

var (
	trueBeta   = []float64{1, -2}
	trueGamma1 = []float64{0.5, 1.0}
	trueGamma2 = []float64{-0.5, -1.0}
)

func scenarioDataset(t *testing.T, n int, seed uint64) *model.Dataset {
	t.Helper()
	g, err := simulate.Generate(simulate.Params{
		N:     n,
		Beta:  model.BetaFrom(trueBeta),
		Gamma: model.GammaFrom(trueGamma1, trueGamma2),
		Seed:  seed,
	})
	if err != nil {
		t.Fatalf("simulate.Generate failed: %v", err)
	}
	return g.Dataset
}

func flatPrior() *model.Prior {
	return model.UniformPrior(1, 1, -10, 10)
}

func onesStart() (*model.Beta, *model.Gamma) {
	return model.BetaFrom([]float64{1, 1}),
		model.GammaFrom([]float64{1, 1}, []float64{1, 1})
}

func smallOpts(seed uint64) Options {
	return Options{Chains: 2, Samples: 200, BurnIn: 100, Seed: seed}
}

func TestRun_DrawTableShape(t *testing.T) {
	d := scenarioDataset(t, 200, 1)
	sb, sg := onesStart()
	opts := smallOpts(4)

	res, err := Run(context.Background(), d, flatPrior(), sb, sg, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	perParam := opts.Chains * opts.Samples
	counts := map[string]int{}
	for _, row := range res.Draws {
		counts[row.Name]++
		if row.Chain < 1 || row.Chain > opts.Chains {
			t.Fatalf("draw row has chain %d", row.Chain)
		}
		if row.Iteration < 1 || row.Iteration > opts.Samples {
			t.Fatalf("draw row has iteration %d", row.Iteration)
		}
	}
	names := model.ParamNames(d.P(), d.Q())
	if len(counts) != len(names) {
		t.Fatalf("draws cover %d parameters, want %d", len(counts), len(names))
	}
	for _, name := range names {
		if counts[name] != perParam {
			t.Errorf("parameter %s has %d draws, want %d", name, counts[name], perParam)
		}
	}
	if len(res.Diagnostics) != opts.Chains {
		t.Errorf("got %d diagnostics entries, want %d", len(res.Diagnostics), opts.Chains)
	}
}

func TestRun_DeterministicGivenSeed(t *testing.T) {
	d := scenarioDataset(t, 150, 2)
	sb, sg := onesStart()

	a, err := Run(context.Background(), d, flatPrior(), sb, sg, smallOpts(99))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := Run(context.Background(), d, flatPrior(), sb, sg, smallOpts(99))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(a.Draws) != len(b.Draws) {
		t.Fatalf("draw counts differ: %d vs %d", len(a.Draws), len(b.Draws))
	}
	for i := range a.Draws {
		if a.Draws[i] != b.Draws[i] {
			t.Fatalf("draw %d differs between identically seeded runs: %+v vs %+v",
				i, a.Draws[i], b.Draws[i])
		}
	}

	c, err := Run(context.Background(), d, flatPrior(), sb, sg, smallOpts(100))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	same := len(a.Draws) == len(c.Draws)
	if same {
		for i := range a.Draws {
			if a.Draws[i] != c.Draws[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical draw tables")
	}
}

func TestRun_InvalidPriorFailsFast(t *testing.T) {
	d := scenarioDataset(t, 100, 3)
	sb, sg := onesStart()

	pr := flatPrior()
	pr.GammaA[0][1][0] = 0 // value where the fixed reference block demands NaN

	var priorErr *model.PriorError
	if _, err := Run(context.Background(), d, pr, sb, sg, smallOpts(1)); !errors.As(err, &priorErr) {
		t.Errorf("expected PriorError, got %v", err)
	}
}

func TestRun_DegenerateChainFlaggedNotFatal(t *testing.T) {
	d := scenarioDataset(t, 100, 6)
	sb, sg := onesStart()

	// Bounds hug the starting values so tightly that a unit-scale random
	// walk never lands inside: acceptance pins at zero.
	pr := flatPrior()
	for c := range pr.BetaA {
		pr.BetaA[c], pr.BetaB[c] = 1-1e-9, 1+1e-9
	}
	for j := 0; j < model.NumClasses; j++ {
		for c := range pr.GammaA[j][0] {
			pr.GammaA[j][0][c], pr.GammaB[j][0][c] = 1-1e-9, 1+1e-9
		}
	}

	opts := smallOpts(7)
	opts.ProposalSD = 1.0
	res, err := Run(context.Background(), d, pr, sb, sg, opts)
	if err != nil {
		t.Fatalf("Run failed on degenerate chain: %v", err)
	}
	for _, diag := range res.Diagnostics {
		if !diag.Degenerate {
			t.Errorf("chain %d not flagged degenerate (beta=%.3f gamma=%.3f)",
				diag.Chain, diag.BetaAcceptRate, diag.GammaAcceptRate)
		}
	}
	if len(res.Draws) == 0 {
		t.Error("degenerate run returned no draws")
	}
}

func TestRun_SummaryIsCanonicallyLabeled(t *testing.T) {
	d := scenarioDataset(t, 400, 8)
	sb, sg := onesStart()

	res, err := Run(context.Background(), d, flatPrior(), sb, sg, smallOpts(11))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	stats := map[string]PosteriorStat{}
	for _, s := range res.Summary {
		stats[s.Name] = s
	}
	if stats["gamma1_0"].Mean < stats["gamma2_0"].Mean {
		t.Errorf("pooled summary violates canonical ordering: %.3f < %.3f",
			stats["gamma1_0"].Mean, stats["gamma2_0"].Mean)
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	d := scenarioDataset(t, 100, 5)
	sb, sg := onesStart()
	opts := smallOpts(13)

	var calls atomic.Int64
	var last atomic.Int64
	opts.Progress = func(done int64) {
		calls.Add(1)
		for {
			prev := last.Load()
			if done <= prev || last.CompareAndSwap(prev, done) {
				return
			}
		}
	}

	if _, err := Run(context.Background(), d, flatPrior(), sb, sg, opts); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got, want := calls.Load(), opts.TotalSteps(); got != want {
		t.Errorf("progress callback fired %d times, want %d", got, want)
	}
	if got, want := last.Load(), opts.TotalSteps(); got != want {
		t.Errorf("final progress value = %d, want %d", got, want)
	}
}

func TestRun_Cancellation(t *testing.T) {
	d := scenarioDataset(t, 100, 9)
	sb, sg := onesStart()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, d, flatPrior(), sb, sg, smallOpts(1)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_RecoversGeneratingParameters(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size posterior recovery run")
	}

	d := scenarioDataset(t, 1000, 123)
	sb, sg := onesStart()
	opts := Options{Chains: 4, Samples: 2000, BurnIn: 1000, Seed: 321}

	res, err := Run(context.Background(), d, flatPrior(), sb, sg, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	perParam := opts.Chains * opts.Samples
	counts := map[string]int{}
	for _, row := range res.Draws {
		counts[row.Name]++
	}
	for name, got := range counts {
		if got != perParam {
			t.Errorf("parameter %s has %d draws, want %d", name, got, perParam)
		}
	}

	want := map[string]float64{
		"beta_0":   trueBeta[0],
		"beta_1":   trueBeta[1],
		"gamma1_0": trueGamma1[0],
		"gamma1_1": trueGamma1[1],
		"gamma2_0": trueGamma2[0],
		"gamma2_1": trueGamma2[1],
	}
	for _, s := range res.Summary {
		truth := want[s.Name]
		if math.Abs(s.Mean-truth) > 0.3 {
			t.Errorf("%s posterior mean = %.3f, want %.3f +/- 0.3", s.Name, s.Mean, truth)
		}
		if s.SD <= 0 || math.IsNaN(s.SD) {
			t.Errorf("%s posterior sd = %v", s.Name, s.SD)
		}
	}

	if len(res.Naive) != len(trueBeta) {
		t.Fatalf("naive table has %d rows, want %d", len(res.Naive), len(trueBeta))
	}
	var naiveSlope float64
	for _, s := range res.Naive {
		if s.Name == "beta_1" {
			naiveSlope = s.Mean
		}
	}
	if math.Abs(naiveSlope) >= math.Abs(trueBeta[1]) {
		t.Errorf("naive posterior slope %.3f not attenuated relative to truth", naiveSlope)
	}
}

// Both estimators target the same model, so on a well-behaved dataset the
// pooled posterior means should sit close to the EM point estimates.
func TestRun_AgreesWithEMEstimates(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size posterior run")
	}

	d := scenarioDataset(t, 1000, 123)
	sb, sg := onesStart()

	emRes, err := em.Fit(context.Background(), d, sb, sg, em.Options{})
	if err != nil {
		t.Fatalf("em.Fit failed: %v", err)
	}
	point := map[string]float64{}
	for _, e := range emRes.Estimates {
		point[e.Name] = e.Value
	}

	sb, sg = onesStart()
	opts := Options{Chains: 4, Samples: 2000, BurnIn: 1000, Seed: 321}
	res, err := Run(context.Background(), d, flatPrior(), sb, sg, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, s := range res.Summary {
		want, ok := point[s.Name]
		if !ok {
			t.Fatalf("no EM estimate named %s", s.Name)
		}
		if math.Abs(s.Mean-want) > 0.25 {
			t.Errorf("%s posterior mean = %.3f, EM estimate = %.3f, want agreement within 0.25",
				s.Name, s.Mean, want)
		}
	}
}
