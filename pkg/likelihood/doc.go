// Package likelihood implements the probability machinery shared by the EM
// and MCMC estimators.
//
// # Overview
//
// Three layers build on each other:
//
//   - LinearPredictor computes logit-scale linear combinations of a
//     coefficient vector and covariate rows.
//   - CondProbs computes the observation-mechanism probabilities
//     P(Y*=k|Y=j,Z) for every subject and (j,k) pair from the logistic link,
//     with the reference observed class taking the complement so that
//     probabilities sum to one over k.
//   - Responsibilities combines both mechanisms through Bayes' rule into the
//     posterior P(Y=j|Y*,X,Z) per subject.
//
// # Numerical Stability
//
// All probability accumulation happens on the log scale. Log-logistic terms
// use the stable split form of log(1/(1+exp(-eta))), and responsibility
// normalization uses log-sum-exp, so individual terms may underflow without
// corrupting the result. Only total collapse, where every responsibility
// term for a subject underflows simultaneously, surfaces as a
// model.DegeneracyError.
package likelihood
