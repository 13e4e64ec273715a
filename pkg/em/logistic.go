package em

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"latentlab/binocular/pkg/likelihood"
)

const (
	// irlsMaxIter caps the inner Newton iterations of one weighted fit.
	irlsMaxIter = 50
	// irlsTol is the coefficient-change tolerance of the inner fit.
	irlsTol = 1e-10
	// minWorkingWeight keeps the normal equations positive definite when a
	// fitted probability saturates.
	minWorkingWeight = 1e-10
)

// logitFit is the output of one weighted logistic regression: the
// coefficient vector and the diagonal of the inverse information matrix,
// which supplies asymptotic variances.
type logitFit struct {
	coef     []float64
	variance []float64
}

// fitWeightedLogit fits logit(P(y=1|row)) = c0 + c·row by IRLS with
// per-observation weights. The response may be fractional (an expected
// indicator), which is what the M-step passes for beta. start seeds the
// Newton iterations and must have len(rows[0])+1 entries.
func fitWeightedLogit(rows [][]float64, y, w, start []float64) (*logitFit, error) {
	n := len(rows)
	d := len(start)

	coef := make([]float64, d)
	copy(coef, start)

	xrow := make([]float64, d)
	grad := make([]float64, d)
	info := mat.NewSymDense(d, nil)
	var chol mat.Cholesky
	delta := mat.NewVecDense(d, nil)

	for iter := 0; iter < irlsMaxIter; iter++ {
		for c := range grad {
			grad[c] = 0
		}
		info.Zero()

		for i := 0; i < n; i++ {
			if w[i] == 0 {
				continue
			}
			xrow[0] = 1
			copy(xrow[1:], rows[i])

			mu := likelihood.Sigmoid(likelihood.Dot(coef, rows[i]))
			s := w[i] * mu * (1 - mu)
			if s < minWorkingWeight {
				s = minWorkingWeight
			}
			r := w[i] * (y[i] - mu)

			for a := 0; a < d; a++ {
				grad[a] += r * xrow[a]
				for b := a; b < d; b++ {
					info.SetSym(a, b, info.At(a, b)+s*xrow[a]*xrow[b])
				}
			}
		}

		if ok := chol.Factorize(info); !ok {
			return nil, fmt.Errorf("weighted logistic fit: information matrix not positive definite")
		}
		if err := chol.SolveVecTo(delta, mat.NewVecDense(d, grad)); err != nil {
			return nil, fmt.Errorf("weighted logistic fit: %w", err)
		}

		var maxStep float64
		for c := 0; c < d; c++ {
			step := delta.AtVec(c)
			coef[c] += step
			if math.Abs(step) > maxStep {
				maxStep = math.Abs(step)
			}
		}
		if maxStep < irlsTol {
			break
		}
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("weighted logistic fit: %w", err)
	}
	variance := make([]float64, d)
	for c := 0; c < d; c++ {
		variance[c] = inv.At(c, c)
	}
	return &logitFit{coef: coef, variance: variance}, nil
}

// ones returns a weight vector of all ones.
func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}
