// Package model defines the data and parameter structures shared by the
// binocular estimators.
//
// # Overview
//
// The model has two coupled logistic mechanisms. The true-outcome mechanism
// relates an unobserved binary outcome Y to predictors X through the
// coefficient vector beta. The observation mechanism relates the recorded
// outcome Y* to the true outcome and predictors Z through the coefficient
// structure gamma. Class labels are 1 and 2 throughout; class 2 is the
// reference class for both mechanisms.
//
// # Datasets
//
// A Dataset bundles the observed outcome vector Y* with the X and Z covariate
// matrices. It is validated once at construction (equal row counts, no NaN
// entries, outcomes in {1,2}) and is immutable afterwards. Estimators only
// ever read from it.
//
// # Parameters
//
// Beta is a single coefficient vector of length p+1 (intercept first)
// governing P(Y=1|X). Gamma carries one coefficient block per
// (true class, observed class) pair. Blocks for the reference observed class
// are structurally fixed at zero: they carry a Fixed tag rather than ordinary
// zero values, so estimation and sampling code can skip them without relying
// on convention.
//
// # Priors
//
// Prior describes the prior used by the MCMC estimator: a named family
// (uniform or normal) with per-coefficient hyperparameter arrays laid out to
// match the full gamma structure. Entries corresponding to fixed reference
// blocks must be NaN; ValidatePrior enforces this before any sampling starts.
//
// # Errors
//
// Shape and prior-layout problems are fatal and reported through ShapeError
// and PriorError before any iteration begins. Numerical collapse during
// responsibility computation is reported through DegeneracyError.
package model
