// Package simulate generates synthetic datasets from known parameters of the
// two-mechanism model.
//
// # Overview
//
// Generate draws standard-normal covariates for both mechanisms, samples the
// true outcome from the true-outcome logistic mechanism, and then samples
// the recorded outcome from the observation mechanism conditional on the
// true outcome. Only this package constructs Datasets from scratch; the
// estimators consume them.
//
// Generation is fully deterministic given the seed, which makes the recovery
// tests on the estimators reproducible.
//
// # CSV Round-Trip
//
// WriteCSV and ReadCSV move datasets through files with a ystar,x1..xp,z1..zq
// header so the CLI can hand simulated data to the fit commands.
package simulate
