package likelihood

import "math"

// LinearPredictor computes eta_i = coef[0] + sum_l coef[l+1]*rows[i][l] for
// every covariate row. The coefficient vector carries the intercept in
// position 0 and must have len(rows[i])+1 entries.
func LinearPredictor(coef []float64, rows [][]float64) []float64 {
	eta := make([]float64, len(rows))
	for i, row := range rows {
		eta[i] = Dot(coef, row)
	}
	return eta
}

// Dot computes the linear predictor for a single covariate row.
func Dot(coef []float64, row []float64) float64 {
	v := coef[0]
	for l, x := range row {
		v += coef[l+1] * x
	}
	return v
}

// Sigmoid returns the logistic function 1/(1+exp(-eta)) using the
// numerically stable split form.
func Sigmoid(eta float64) float64 {
	if eta >= 0 {
		return 1 / (1 + math.Exp(-eta))
	}
	e := math.Exp(eta)
	return e / (1 + e)
}

// LogSigmoid returns log(Sigmoid(eta)) without intermediate underflow.
func LogSigmoid(eta float64) float64 {
	if eta > 0 {
		return -math.Log1p(math.Exp(-eta))
	}
	return eta - math.Log1p(math.Exp(eta))
}

// BernoulliLogLik returns the logistic log-likelihood of 0/1 responses y
// against covariate rows under the given coefficients. Used by the MCMC
// conditional updates, where the latent outcome has been sampled.
func BernoulliLogLik(coef []float64, rows [][]float64, y []float64) float64 {
	var ll float64
	for i, row := range rows {
		eta := Dot(coef, row)
		// log P(y=1) = LogSigmoid(eta), log P(y=0) = LogSigmoid(-eta).
		if y[i] == 1 {
			ll += LogSigmoid(eta)
		} else {
			ll += LogSigmoid(-eta)
		}
	}
	return ll
}
