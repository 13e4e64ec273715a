package model

import "math"

// PriorFamily names the prior distribution family used by the MCMC
// estimator.
type PriorFamily string

const (
	// PriorUniform is an independent uniform prior with per-coefficient
	// lower and upper bounds.
	PriorUniform PriorFamily = "uniform"
	// PriorNormal is an independent normal prior with per-coefficient
	// means and standard deviations.
	PriorNormal PriorFamily = "normal"
)

// Prior specifies the prior for the MCMC estimator. Hyperparameter arrays
// are laid out to match the full coefficient structure: beta arrays have
// length p+1, gamma arrays mirror Gamma.Block with one vector of length q+1
// per (true class, observed class) pair. Entries for structurally fixed
// reference blocks must be NaN; those coefficients never receive a prior and
// are never sampled.
//
// For the uniform family A holds lower bounds and B upper bounds. For the
// normal family A holds means and B standard deviations.
type Prior struct {
	Family PriorFamily

	BetaA []float64
	BetaB []float64

	GammaA [NumClasses][NumClasses][]float64
	GammaB [NumClasses][NumClasses][]float64
}

// UniformPrior returns a uniform prior with the same (lo, hi) bounds on
// every estimable coefficient and NaN markers on the fixed reference blocks.
func UniformPrior(p, q int, lo, hi float64) *Prior {
	pr := &Prior{Family: PriorUniform}
	pr.BetaA = constants(p+1, lo)
	pr.BetaB = constants(p+1, hi)
	for j := 0; j < NumClasses; j++ {
		pr.GammaA[j][0] = constants(q+1, lo)
		pr.GammaB[j][0] = constants(q+1, hi)
		pr.GammaA[j][1] = constants(q+1, math.NaN())
		pr.GammaB[j][1] = constants(q+1, math.NaN())
	}
	return pr
}

// NormalPrior returns a normal prior with the same mean and standard
// deviation on every estimable coefficient.
func NormalPrior(p, q int, mean, sd float64) *Prior {
	pr := UniformPrior(p, q, mean, sd)
	pr.Family = PriorNormal
	return pr
}

// Validate checks the prior against the coefficient dimensions for p
// true-mechanism and q observation-mechanism predictors. Dimension or NaN
// placement mismatches are fatal before sampling starts.
func (pr *Prior) Validate(p, q int) error {
	switch pr.Family {
	case PriorUniform, PriorNormal:
	default:
		return NewPriorError("family", "unknown family "+string(pr.Family))
	}

	if len(pr.BetaA) != p+1 {
		return NewPriorError("beta", "hyperparameter length does not match beta")
	}
	if len(pr.BetaB) != p+1 {
		return NewPriorError("beta", "hyperparameter length does not match beta")
	}
	for c := 0; c <= p; c++ {
		if math.IsNaN(pr.BetaA[c]) || math.IsNaN(pr.BetaB[c]) {
			return NewPriorError("beta", "NaN hyperparameter on an estimable coefficient")
		}
		if err := pr.checkPair(pr.BetaA[c], pr.BetaB[c]); err != nil {
			return err
		}
	}

	for j := 0; j < NumClasses; j++ {
		for k := 0; k < NumClasses; k++ {
			a, b := pr.GammaA[j][k], pr.GammaB[j][k]
			if len(a) != q+1 || len(b) != q+1 {
				return NewPriorError("gamma", "hyperparameter array does not match gamma dimensions")
			}
			fixed := k == 1
			for c := 0; c <= q; c++ {
				if fixed {
					if !math.IsNaN(a[c]) || !math.IsNaN(b[c]) {
						return NewPriorError("gamma", "reference-class entries must be NaN")
					}
					continue
				}
				if math.IsNaN(a[c]) || math.IsNaN(b[c]) {
					return NewPriorError("gamma", "NaN hyperparameter on an estimable coefficient")
				}
				if err := pr.checkPair(a[c], b[c]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (pr *Prior) checkPair(a, b float64) error {
	switch pr.Family {
	case PriorUniform:
		if a >= b {
			return NewPriorError("bounds", "lower bound not below upper bound")
		}
	case PriorNormal:
		if b <= 0 {
			return NewPriorError("sd", "standard deviation must be positive")
		}
	}
	return nil
}

func constants(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
