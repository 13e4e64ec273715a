// Package em estimates the two-mechanism model by expectation-maximization.
//
// # Algorithm
//
// Each iteration runs an E-step and an M-step. The E-step computes the
// responsibility matrix P(Y=j|Y*,X,Z) under the current parameters through
// pkg/likelihood. The M-step refits beta by a responsibility-weighted
// logistic regression of the implied true class against X, and refits each
// free gamma block by a responsibility-weighted logistic regression of the
// observed outcome against Z, one fit per hypothesized true class with that
// class's responsibility column as the weight. All weighted fits use
// iteratively reweighted least squares with the normal equations solved by a
// Cholesky factorization.
//
// Iteration stops when the maximum absolute parameter change falls below the
// tolerance or the iteration cap is hit. Exceeding the cap is not an error:
// the result carries Converged=false together with the final parameter
// values, because a non-converged estimate is still useful as a restart
// point.
//
// # Output
//
// Fit reports label-switch-corrected point estimates with asymptotic
// standard errors taken from the inverse information matrices of the final
// weighted fits, a naive estimate that ignores misclassification entirely,
// and a perfect-sensitivity estimate from an independent constrained refit
// with P(Y*=1|Y=1) pinned at one.
package em
