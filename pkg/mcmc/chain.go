package mcmc

import (
	"context"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"latentlab/binocular/pkg/likelihood"
	"latentlab/binocular/pkg/model"
)

// chain is the exclusive working state of one sampling chain. Nothing here
// is shared: the owning goroutine is the only reader and writer until the
// chain finishes and its draws become immutable.
type chain struct {
	id   int
	d    *model.Dataset
	pr   *model.Prior
	opts Options

	beta  *model.Beta
	gamma *model.Gamma
	// latent[i] is 1 while subject i is currently assigned true class 1.
	latent []float64
	tstar  []float64

	rng  *rand.Rand
	step distuv.Normal

	betaProposals, betaAccepts   int
	gammaProposals, gammaAccepts int

	// draws holds one flattened parameter vector per post-burn-in step, in
	// model.ParamNames order.
	draws [][]float64

	// progress, when set, is called once per completed step.
	progress func()
}

func newChain(id int, d *model.Dataset, pr *model.Prior, startBeta *model.Beta, startGamma *model.Gamma, opts Options) *chain {
	src := rand.NewSource(opts.Seed + uint64(id))
	c := &chain{
		id:     id,
		d:      d,
		pr:     pr,
		opts:   opts,
		beta:   startBeta.Clone(),
		gamma:  startGamma.Clone(),
		latent: make([]float64, d.N()),
		tstar:  make([]float64, d.N()),
		rng:    rand.New(src),
		step:   distuv.Normal{Mu: 0, Sigma: opts.ProposalSD, Src: src},
		draws:  make([][]float64, 0, opts.Samples),
	}
	for i := 0; i < d.N(); i++ {
		if d.YStar(i) == 1 {
			c.tstar[i] = 1
		}
	}
	return c
}

// run executes burn-in plus sampling steps, keeping only post-burn-in
// draws. The context is checked between steps; mid-step state is never
// exposed.
func (c *chain) run(ctx context.Context) error {
	total := c.opts.BurnIn + c.opts.Samples
	for t := 0; t < total; t++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.sampleLatentY(); err != nil {
			return err
		}
		c.sampleBeta()
		c.sampleGamma()

		if t >= c.opts.BurnIn {
			c.draws = append(c.draws, model.FlattenParams(c.beta, c.gamma))
		}
		if c.progress != nil {
			c.progress()
		}
	}
	return nil
}

// sampleLatentY redraws every subject's true class from its responsibility
// distribution under the current coefficients.
func (c *chain) sampleLatentY() error {
	resp, err := likelihood.Responsibilities(c.beta, c.gamma, c.d)
	if err != nil {
		return err
	}
	for i := range c.latent {
		if c.rng.Float64() < resp.W[i][0] {
			c.latent[i] = 1
		} else {
			c.latent[i] = 0
		}
	}
	return nil
}

// sampleBeta updates each beta coefficient by random-walk Metropolis
// against the logistic likelihood of the sampled true classes on X.
func (c *chain) sampleBeta() {
	coef := c.beta.Coef
	cur := likelihood.BernoulliLogLik(coef, c.d.X(), c.latent)
	for idx := range coef {
		old := coef[idx]
		prop := old + c.step.Rand()

		lpDiff := c.logPriorDiff(prop, old, c.pr.BetaA[idx], c.pr.BetaB[idx])
		c.betaProposals++
		if math.IsInf(lpDiff, -1) {
			continue
		}

		coef[idx] = prop
		next := likelihood.BernoulliLogLik(coef, c.d.X(), c.latent)
		if c.accept(next - cur + lpDiff) {
			c.betaAccepts++
			cur = next
		} else {
			coef[idx] = old
		}
	}
}

// sampleGamma updates each free gamma block against the observed outcomes
// of the subjects currently assigned to that block's true class. Fixed
// reference blocks are skipped entirely.
func (c *chain) sampleGamma() {
	for j := 0; j < model.NumClasses; j++ {
		// Only the free block moves; the reference block is Fixed at zero
		// and never proposed.
		coef := c.gamma.Free(j)
		want := 1 - float64(j) // latent value selecting class j+1
		cur := c.maskedLogLik(coef, want)

		a := c.pr.GammaA[j][0]
		b := c.pr.GammaB[j][0]
		for idx := range coef {
			old := coef[idx]
			prop := old + c.step.Rand()

			lpDiff := c.logPriorDiff(prop, old, a[idx], b[idx])
			c.gammaProposals++
			if math.IsInf(lpDiff, -1) {
				continue
			}

			coef[idx] = prop
			next := c.maskedLogLik(coef, want)
			if c.accept(next - cur + lpDiff) {
				c.gammaAccepts++
				cur = next
			} else {
				coef[idx] = old
			}
		}
	}
}

// maskedLogLik is the logistic log-likelihood of Y* on Z over the subjects
// whose sampled latent value equals want.
func (c *chain) maskedLogLik(coef []float64, want float64) float64 {
	var ll float64
	for i, row := range c.d.Z() {
		if c.latent[i] != want {
			continue
		}
		eta := likelihood.Dot(coef, row)
		if c.tstar[i] == 1 {
			ll += likelihood.LogSigmoid(eta)
		} else {
			ll += likelihood.LogSigmoid(-eta)
		}
	}
	return ll
}

// logPriorDiff returns log prior(prop) - log prior(old) for one coefficient,
// or -Inf when the proposal falls outside a uniform prior's support.
func (c *chain) logPriorDiff(prop, old, a, b float64) float64 {
	switch c.pr.Family {
	case model.PriorUniform:
		if prop < a || prop > b {
			return math.Inf(-1)
		}
		return 0
	case model.PriorNormal:
		dp := (prop - a) / b
		do := (old - a) / b
		return 0.5 * (do*do - dp*dp)
	}
	return 0
}

func (c *chain) accept(logRatio float64) bool {
	if logRatio >= 0 {
		return true
	}
	return math.Log(c.rng.Float64()) < logRatio
}

func rate(accepts, proposals int) float64 {
	if proposals == 0 {
		return 0
	}
	return float64(accepts) / float64(proposals)
}
