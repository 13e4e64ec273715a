package relabel

import "latentlab/binocular/pkg/model"

// DefaultEpsilon is the dead zone around intercept equality inside which no
// relabeling is attempted.
const DefaultEpsilon = 1e-9

// Corrector detects and reverses the mechanism-swap degeneracy.
type Corrector struct {
	// Epsilon is the minimum intercept gap required before a violated
	// ordering triggers a swap. Zero means DefaultEpsilon.
	Epsilon float64
}

func (c Corrector) epsilon() float64 {
	if c.Epsilon > 0 {
		return c.Epsilon
	}
	return DefaultEpsilon
}

// Switched reports whether the estimate sits on the mirror solution: the
// sensitivity-governing intercept (true class 1) falls below its mirrored
// counterpart by more than epsilon.
func (c Corrector) Switched(g *model.Gamma) bool {
	return g.Free(0)[0] < g.Free(1)[0]-c.epsilon()
}

// Correct returns the canonical parameter set. If the labeling is already
// canonical (or within epsilon of symmetric) the inputs are returned as
// fresh copies unchanged. Otherwise the gamma blocks for the two true
// classes are swapped and beta is negated. The second return reports whether
// a swap was applied.
//
// Correct is idempotent: applying it to its own output never swaps again.
func (c Corrector) Correct(b *model.Beta, g *model.Gamma) (*model.Beta, *model.Gamma, bool) {
	if !c.Switched(g) {
		return b.Clone(), g.Clone(), false
	}

	nb := b.Clone()
	for i := range nb.Coef {
		nb.Coef[i] = -nb.Coef[i]
	}

	ng := model.NewGamma(g.Q())
	copy(ng.Block[0][0].Coef, g.Block[1][0].Coef)
	copy(ng.Block[1][0].Coef, g.Block[0][0].Coef)
	return nb, ng, true
}

// CorrectVectors applies the same canonicalization to a flat draw: beta and
// the two free gamma vectors. Used by the MCMC pooling step, which corrects
// draw by draw without materializing model structs per draw. The slices are
// modified in place; the return reports whether a swap happened.
func (c Corrector) CorrectVectors(beta, gamma1, gamma2 []float64) bool {
	if gamma1[0] >= gamma2[0]-c.epsilon() {
		return false
	}
	for i := range beta {
		beta[i] = -beta[i]
	}
	for i := range gamma1 {
		gamma1[i], gamma2[i] = gamma2[i], gamma1[i]
	}
	return true
}
