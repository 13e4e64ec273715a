package model

import "math"

// NumClasses is the outcome cardinality for both mechanisms. The model is
// defined for binary outcomes only.
const NumClasses = 2

// Beta holds the true-outcome mechanism coefficients governing P(Y=1|X).
// Coef has length p+1 with the intercept in position 0.
type Beta struct {
	Coef []float64
}

// NewBeta returns a zero-valued Beta for p predictors.
func NewBeta(p int) *Beta {
	return &Beta{Coef: make([]float64, p+1)}
}

// BetaFrom returns a Beta backed by a copy of coef.
func BetaFrom(coef []float64) *Beta {
	c := make([]float64, len(coef))
	copy(c, coef)
	return &Beta{Coef: c}
}

// P returns the number of predictors (excluding the intercept).
func (b *Beta) P() int { return len(b.Coef) - 1 }

// Clone returns a deep copy.
func (b *Beta) Clone() *Beta { return BetaFrom(b.Coef) }

// Validate checks the coefficient length against p predictors.
func (b *Beta) Validate(p int) error {
	if len(b.Coef) != p+1 {
		return NewShapeError("beta", p+1, len(b.Coef))
	}
	return nil
}

// GammaBlock is one coefficient vector of the observation mechanism,
// governing P(Y*=k|Y=j,Z) for a single (j,k) pair. Reference-class blocks
// carry Fixed=true and zero coefficients; they are never estimated, sampled,
// or given a prior.
type GammaBlock struct {
	Coef  []float64
	Fixed bool
}

// Gamma holds the observation-mechanism coefficients. Block[j][k] is the
// coefficient vector for true class j+1 and observed class k+1, each of
// length q+1 (intercept first). The k=2 (reference) blocks are structurally
// fixed at zero.
type Gamma struct {
	Block [NumClasses][NumClasses]GammaBlock
}

// NewGamma returns a Gamma for q observation predictors with free k=1 blocks
// initialized to zero and fixed reference blocks.
func NewGamma(q int) *Gamma {
	var g Gamma
	for j := 0; j < NumClasses; j++ {
		g.Block[j][0] = GammaBlock{Coef: make([]float64, q+1)}
		g.Block[j][1] = GammaBlock{Coef: make([]float64, q+1), Fixed: true}
	}
	return &g
}

// GammaFrom returns a Gamma whose free blocks are copies of coef1 (true
// class 1) and coef2 (true class 2).
func GammaFrom(coef1, coef2 []float64) *Gamma {
	g := NewGamma(len(coef1) - 1)
	copy(g.Block[0][0].Coef, coef1)
	copy(g.Block[1][0].Coef, coef2)
	return g
}

// Q returns the number of observation predictors (excluding the intercept).
func (g *Gamma) Q() int { return len(g.Block[0][0].Coef) - 1 }

// Free returns the free (non-reference) coefficient vector for true class
// j+1. The returned slice aliases the Gamma and must not be modified by
// readers.
func (g *Gamma) Free(j int) []float64 { return g.Block[j][0].Coef }

// Clone returns a deep copy.
func (g *Gamma) Clone() *Gamma {
	out := NewGamma(g.Q())
	for j := 0; j < NumClasses; j++ {
		copy(out.Block[j][0].Coef, g.Block[j][0].Coef)
	}
	return out
}

// Validate checks block lengths against q predictors and the reference
// blocks against the fixed-at-zero invariant.
func (g *Gamma) Validate(q int) error {
	for j := 0; j < NumClasses; j++ {
		for k := 0; k < NumClasses; k++ {
			if len(g.Block[j][k].Coef) != q+1 {
				return NewShapeError("gamma", q+1, len(g.Block[j][k].Coef))
			}
		}
		if !g.Block[j][1].Fixed {
			return NewShapeError("gamma reference block", 1, 0)
		}
		for _, v := range g.Block[j][1].Coef {
			if v != 0 || math.IsNaN(v) {
				return NewShapeError("gamma reference block", 0, 1)
			}
		}
	}
	return nil
}

// NumParams returns the count of estimable coefficients for p true-mechanism
// and q observation-mechanism predictors: one beta vector plus one free gamma
// block per true class.
func NumParams(p, q int) int {
	return (p + 1) + NumClasses*(q+1)
}
