// Binocular estimates logistic regression models whose binary outcome may be
// misclassified, jointly fitting the true-outcome mechanism and the
// covariate-dependent observation mechanism.
//
// Usage:
//
//	# Simulate a dataset with known parameters
//	binocular simulate --n 1000 --beta 1,-2 --gamma1 0.5,1 --gamma2 -0.5,-1 --out data.csv
//
//	# Fit both mechanisms with EM
//	binocular fit --data data.csv
//
//	# Sample the posterior with four chains
//	binocular mcmc --data data.csv --chains 4 --samples 2000 --burn-in 1000
//
//	# Tabulate P(Y*=k | Y=j, Z) over a covariate grid
//	binocular misclassprob --gamma1 0.5,1 --gamma2 -0.5,-1 --z-min -2 --z-max 2
//
//	# List stored runs
//	binocular runs list
package main

func main() {
	Execute()
}
