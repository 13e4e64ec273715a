// Package mcmc estimates the two-mechanism model by Markov chain Monte
// Carlo.
//
// # Sampler
//
// Each chain runs Metropolis-within-Gibbs over the latent true outcomes and
// the regression coefficients:
//
//  1. SampleLatentY draws every subject's true class from its responsibility
//     distribution under the current coefficients. This data augmentation
//     turns the coefficient updates into ordinary Bayesian logistic
//     regressions.
//  2. SampleBeta updates each beta coefficient by a random-walk Metropolis
//     step against the logistic likelihood of the sampled classes plus the
//     prior.
//  3. SampleGamma does the same for each free gamma block, using only the
//     subjects currently assigned to that block's true class. Fixed
//     reference coefficients are never proposed and stay at zero.
//
// # Chains and Pooling
//
// Chains are fully independent: each owns its state and its seeded random
// source (base seed plus chain index), so runs are reproducible and chains
// can execute on separate goroutines without locking. They synchronize only
// at the final pooling step, where post-burn-in draws are concatenated,
// label-switch corrected draw by draw, and summarized into posterior means
// and standard deviations.
//
// # Diagnostics
//
// A chain whose Metropolis acceptance rate is exactly zero or one is flagged
// degenerate. That is reported in the result's diagnostics, never raised:
// the draws are still returned and the caller decides whether to discard
// them. Prior shape problems, by contrast, fail before any sampling starts.
package mcmc
