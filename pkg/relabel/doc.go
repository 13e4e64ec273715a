// Package relabel canonicalizes estimates that landed on the mirror-image
// solution of the two-mechanism model.
//
// # The Degeneracy
//
// The observed-data likelihood is invariant under simultaneously relabeling
// the true classes {1,2} and permuting the matching gamma blocks. Both
// estimators can therefore converge to a mirror solution that looks equally
// valid but swaps the meaning of sensitivity and specificity. This is an
// identifiability property of the model, not an optimizer defect, so it is
// handled as a post-hoc canonicalization step rather than a constraint
// inside the estimators.
//
// # Canonical Labeling
//
// The identifiability convention is sensitivity dominance: the observation
// intercept under true class 1 must exceed the intercept under true class 2.
// When the estimated intercepts violate that ordering by more than a
// configurable epsilon, Correct swaps the gamma blocks of the two true
// classes and negates beta, which is the coefficient transformation implied
// by flipping which class is labeled 1.
//
// Estimates whose intercepts sit within epsilon of each other are left
// untouched: the source convention does not pin down a canonical labeling
// for near-symmetric solutions, so the corrector deliberately refuses to
// guess there. Correction is applied identically to EM point estimates and
// to every individual MCMC draw, so that mixed-label draws cannot produce
// bimodal posterior summaries.
package relabel
