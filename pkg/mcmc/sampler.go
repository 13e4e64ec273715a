package mcmc

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"latentlab/binocular/pkg/likelihood"
	"latentlab/binocular/pkg/model"
	"latentlab/binocular/pkg/relabel"
)

// Options controls the MCMC run.
type Options struct {
	// Chains is the number of independent chains. Default 4.
	Chains int
	// Samples is the post-burn-in draw count per chain. Default 2000.
	Samples int
	// BurnIn is the number of discarded initial steps per chain. Default 1000.
	BurnIn int
	// Seed is the base random seed; chain c uses Seed+c. Runs with the same
	// seed and configuration produce identical draw tables.
	Seed uint64
	// ProposalSD is the random-walk step scale. Default 0.1.
	ProposalSD float64
	// Epsilon is the label-switch dead zone, forwarded to relabel.Corrector.
	Epsilon float64
	// Progress, when non-nil, is invoked after every completed chain step
	// (burn-in included) with the total number of steps finished so far.
	// Chains run concurrently, so the callback must be safe for concurrent
	// use; cli.ProgressReporter implementations are.
	Progress func(done int64)
}

func (o Options) withDefaults() Options {
	if o.Chains <= 0 {
		o.Chains = 4
	}
	if o.Samples <= 0 {
		o.Samples = 2000
	}
	if o.BurnIn <= 0 {
		o.BurnIn = 1000
	}
	if o.ProposalSD <= 0 {
		o.ProposalSD = 0.1
	}
	return o
}

// TotalSteps returns the number of chain steps a run will execute, burn-in
// included, after defaults are applied. This is the terminal value the
// Progress callback reaches.
func (o Options) TotalSteps() int64 {
	o = o.withDefaults()
	return int64(o.Chains) * int64(o.BurnIn+o.Samples)
}

// DrawRow is one pooled, label-corrected posterior draw of one parameter.
type DrawRow struct {
	Chain     int     `json:"chain"`
	Iteration int     `json:"iteration"`
	Name      string  `json:"parameter"`
	Value     float64 `json:"value"`
}

// PosteriorStat summarizes the pooled draws of one parameter.
type PosteriorStat struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
}

// ChainDiagnostics reports per-chain acceptance behavior. Degenerate chains
// (acceptance exactly zero or one) are flagged, not failed: their draws are
// still returned and the caller decides whether to discard them.
type ChainDiagnostics struct {
	Chain           int     `json:"chain"`
	BetaAcceptRate  float64 `json:"beta_accept_rate"`
	GammaAcceptRate float64 `json:"gamma_accept_rate"`
	Degenerate      bool    `json:"degenerate"`
}

// Result is the pooled MCMC output.
type Result struct {
	// Summary holds pooled posterior means and standard deviations of the
	// label-corrected draws, in model.ParamNames order.
	Summary []PosteriorStat
	// Draws is the pooled posterior draw table: Chains*Samples rows per
	// parameter, corrected draw by draw.
	Draws []DrawRow
	// Naive is the posterior-mean table of the misclassification-ignoring
	// single-mechanism model fit directly on Y*.
	Naive []PosteriorStat
	// Diagnostics has one entry per chain.
	Diagnostics []ChainDiagnostics
	// SwappedDraws counts pooled draws the label-switch corrector flipped.
	SwappedDraws int
}

// Run samples the posterior with opts.Chains independent chains and pools
// their post-burn-in draws. The prior is validated against the coefficient
// dimensions before any chain starts; a mismatch is fatal. Chains execute
// concurrently and share nothing until pooling.
func Run(ctx context.Context, d *model.Dataset, pr *model.Prior, startBeta *model.Beta, startGamma *model.Gamma, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := d.ValidateParams(startBeta, startGamma); err != nil {
		return nil, err
	}
	if err := pr.Validate(d.P(), d.Q()); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "mcmc")

	var done atomic.Int64
	chains := make([]*chain, opts.Chains)
	errs := make([]error, opts.Chains)
	var wg sync.WaitGroup
	for id := 0; id < opts.Chains; id++ {
		chains[id] = newChain(id, d, pr, startBeta, startGamma, opts)
		if opts.Progress != nil {
			chains[id].progress = func() { opts.Progress(done.Add(1)) }
		}
		wg.Add(1)
		go func(c *chain) {
			defer wg.Done()
			errs[c.id] = c.run(ctx)
		}(chains[id])
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := pool(d, chains, opts)

	naive, err := naivePosterior(ctx, d, pr, startBeta, opts)
	if err != nil {
		return nil, err
	}
	res.Naive = naive

	for _, diag := range res.Diagnostics {
		if diag.Degenerate {
			logger.Warn("degenerate chain acceptance",
				"chain", diag.Chain,
				"beta_accept_rate", diag.BetaAcceptRate,
				"gamma_accept_rate", diag.GammaAcceptRate,
			)
		}
	}
	logger.Info("MCMC finished",
		"chains", opts.Chains,
		"samples_per_chain", opts.Samples,
		"swapped_draws", res.SwappedDraws,
	)
	return res, nil
}

// pool concatenates the finished chains' draws, corrects each draw's
// labeling, and computes pooled summaries. Pure aggregation over immutable
// per-chain draw sequences.
func pool(d *model.Dataset, chains []*chain, opts Options) *Result {
	names := model.ParamNames(d.P(), d.Q())
	np := len(names)
	nb := d.P() + 1
	ng := d.Q() + 1
	corrector := relabel.Corrector{Epsilon: opts.Epsilon}

	res := &Result{
		Draws:       make([]DrawRow, 0, len(chains)*opts.Samples*np),
		Diagnostics: make([]ChainDiagnostics, 0, len(chains)),
	}
	pooled := make([][]float64, np)
	for p := range pooled {
		pooled[p] = make([]float64, 0, len(chains)*opts.Samples)
	}

	for _, c := range chains {
		for it, draw := range c.draws {
			beta := draw[:nb]
			g1 := draw[nb : nb+ng]
			g2 := draw[nb+ng:]
			if corrector.CorrectVectors(beta, g1, g2) {
				res.SwappedDraws++
			}
			for p := 0; p < np; p++ {
				res.Draws = append(res.Draws, DrawRow{
					Chain:     c.id + 1,
					Iteration: it + 1,
					Name:      names[p],
					Value:     draw[p],
				})
				pooled[p] = append(pooled[p], draw[p])
			}
		}

		betaRate := rate(c.betaAccepts, c.betaProposals)
		gammaRate := rate(c.gammaAccepts, c.gammaProposals)
		res.Diagnostics = append(res.Diagnostics, ChainDiagnostics{
			Chain:           c.id + 1,
			BetaAcceptRate:  betaRate,
			GammaAcceptRate: gammaRate,
			Degenerate:      degenerate(betaRate) || degenerate(gammaRate),
		})
	}

	res.Summary = make([]PosteriorStat, np)
	for p := 0; p < np; p++ {
		res.Summary[p] = PosteriorStat{
			Name: names[p],
			Mean: stat.Mean(pooled[p], nil),
			SD:   stat.StdDev(pooled[p], nil),
		}
	}
	return res
}

func degenerate(r float64) bool {
	return r == 0 || r == 1
}

// naivePosterior samples the single-mechanism model: a Bayesian logistic
// regression of the observed outcome on X, using the same random-walk
// machinery with the latent step removed. Only the posterior-mean table is
// reported.
func naivePosterior(ctx context.Context, d *model.Dataset, pr *model.Prior, startBeta *model.Beta, opts Options) ([]PosteriorStat, error) {
	tstar := make([]float64, d.N())
	for i := 0; i < d.N(); i++ {
		if d.YStar(i) == 1 {
			tstar[i] = 1
		}
	}

	nb := d.P() + 1
	pooled := make([][]float64, nb)
	for c := range pooled {
		pooled[c] = make([]float64, 0, opts.Chains*opts.Samples)
	}

	for id := 0; id < opts.Chains; id++ {
		// Offset past the main chains' seeds to keep the streams distinct.
		src := rand.NewSource(opts.Seed + uint64(opts.Chains+id))
		rng := rand.New(src)
		step := distuv.Normal{Mu: 0, Sigma: opts.ProposalSD, Src: src}

		coef := make([]float64, nb)
		copy(coef, startBeta.Coef)
		cur := likelihood.BernoulliLogLik(coef, d.X(), tstar)

		total := opts.BurnIn + opts.Samples
		for t := 0; t < total; t++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for idx := range coef {
				old := coef[idx]
				prop := old + step.Rand()

				var lpDiff float64
				switch pr.Family {
				case model.PriorUniform:
					if prop < pr.BetaA[idx] || prop > pr.BetaB[idx] {
						continue
					}
				case model.PriorNormal:
					dp := (prop - pr.BetaA[idx]) / pr.BetaB[idx]
					do := (old - pr.BetaA[idx]) / pr.BetaB[idx]
					lpDiff = 0.5 * (do*do - dp*dp)
				}

				coef[idx] = prop
				next := likelihood.BernoulliLogLik(coef, d.X(), tstar)
				if lr := next - cur + lpDiff; lr >= 0 || math.Log(rng.Float64()) < lr {
					cur = next
				} else {
					coef[idx] = old
				}
			}
			if t >= opts.BurnIn {
				for c := range coef {
					pooled[c] = append(pooled[c], coef[c])
				}
			}
		}
	}

	names := model.ParamNames(d.P(), 0)[:nb]
	out := make([]PosteriorStat, nb)
	for c := 0; c < nb; c++ {
		out[c] = PosteriorStat{
			Name: names[c],
			Mean: stat.Mean(pooled[c], nil),
			SD:   stat.StdDev(pooled[c], nil),
		}
	}
	return out, nil
}
