package model

import "fmt"

// ParamNames returns the canonical ordering and naming of the estimable
// coefficients for p true-mechanism and q observation-mechanism predictors:
// beta first, then the free gamma block for each true class. Both estimators
// report and store parameters in this order.
func ParamNames(p, q int) []string {
	names := make([]string, 0, NumParams(p, q))
	for c := 0; c <= p; c++ {
		names = append(names, fmt.Sprintf("beta_%d", c))
	}
	for j := 1; j <= NumClasses; j++ {
		for c := 0; c <= q; c++ {
			names = append(names, fmt.Sprintf("gamma%d_%d", j, c))
		}
	}
	return names
}

// FlattenParams packs beta and the free gamma blocks into one vector in
// ParamNames order.
func FlattenParams(b *Beta, g *Gamma) []float64 {
	out := make([]float64, 0, NumParams(b.P(), g.Q()))
	out = append(out, b.Coef...)
	out = append(out, g.Free(0)...)
	out = append(out, g.Free(1)...)
	return out
}
