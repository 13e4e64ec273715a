package likelihood

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"latentlab/binocular/pkg/model"
)

// Resp is the responsibility matrix: W[i][j] is the posterior probability
// that subject i's true class is j+1 given the observed data and the current
// parameters. Rows sum to one. Recomputed every EM iteration and every MCMC
// data-augmentation step; ephemeral.
type Resp struct {
	W [][model.NumClasses]float64
}

// Responsibilities computes P(Y=j|Y*,X,Z) for every subject by combining
// the true-outcome mechanism P(Y=j|X) with the observation mechanism
// P(Y*|Y=j,Z) through Bayes' rule. Accumulation is in log space with
// log-sum-exp normalization, so near-zero terms in either mechanism do not
// corrupt the posterior.
//
// Returns a model.DegeneracyError if every term for some subject underflows
// simultaneously.
func Responsibilities(b *model.Beta, g *model.Gamma, d *model.Dataset) (*Resp, error) {
	if err := d.ValidateParams(b, g); err != nil {
		return nil, err
	}

	n := d.N()
	r := &Resp{W: make([][model.NumClasses]float64, n)}
	lw := make([]float64, model.NumClasses)

	for i := 0; i < n; i++ {
		etaTrue := Dot(b.Coef, d.XRow(i))
		k := d.YStar(i) - 1

		// log P(Y=1|x) and log P(Y=2|x) from the same linear predictor.
		lw[0] = LogSigmoid(etaTrue) + logCondProb(g, d.ZRow(i), 0, k)
		lw[1] = LogSigmoid(-etaTrue) + logCondProb(g, d.ZRow(i), 1, k)

		if math.IsInf(lw[0], -1) && math.IsInf(lw[1], -1) {
			return nil, model.NewDegeneracyError(i)
		}

		den := floats.LogSumExp(lw)
		r.W[i][0] = math.Exp(lw[0] - den)
		r.W[i][1] = math.Exp(lw[1] - den)
	}
	return r, nil
}
