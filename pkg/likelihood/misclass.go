package likelihood

import (
	"latentlab/binocular/pkg/model"
)

// CondProbs holds the observation-mechanism probabilities for a dataset.
// P[j][k][i] is P(Y*=k+1 | Y=j+1, Z=z_i).
type CondProbs struct {
	P [model.NumClasses][model.NumClasses][]float64
}

// MisclassProbs computes P(Y*=k|Y=j,Z) for every subject row and every
// (true class, observed class) pair. The non-reference observed class uses
// the logistic link on the free gamma block for class j; the reference class
// takes the complement so probabilities sum to one over k.
//
// Fails with a model.ShapeError before computing anything if gamma's
// dimensions do not match Z's column count. Pure function of its inputs.
func MisclassProbs(g *model.Gamma, z [][]float64) (*CondProbs, error) {
	if len(z) == 0 {
		return nil, model.NewShapeError("Z", 1, 0)
	}
	q := len(z[0])
	if err := g.Validate(q); err != nil {
		return nil, err
	}

	n := len(z)
	cp := &CondProbs{}
	for j := 0; j < model.NumClasses; j++ {
		cp.P[j][0] = make([]float64, n)
		cp.P[j][1] = make([]float64, n)
		coef := g.Free(j)
		for i, row := range z {
			p := Sigmoid(Dot(coef, row))
			cp.P[j][0][i] = p
			cp.P[j][1][i] = 1 - p
		}
	}
	return cp, nil
}

// logCondProb returns log P(Y*=k|Y=j,Z=row) directly on the log scale,
// bypassing the probability-space complement that MisclassProbs uses.
func logCondProb(g *model.Gamma, row []float64, j, k int) float64 {
	eta := Dot(g.Free(j), row)
	if k == 0 {
		return LogSigmoid(eta)
	}
	return LogSigmoid(-eta)
}

// CondProbRow is one entry of the long-format misclassification table
// consumed externally for sensitivity and specificity summaries.
type CondProbRow struct {
	TrueClass int     `json:"true_class"`
	ObsClass  int     `json:"obs_class"`
	Z         float64 `json:"z"`
	Prob      float64 `json:"prob"`
}

// CondProbTable computes the long-format (true class, observed class,
// covariate value, probability) table for a single-column Z covariate.
func CondProbTable(g *model.Gamma, zcol []float64) ([]CondProbRow, error) {
	z := make([][]float64, len(zcol))
	for i, v := range zcol {
		z[i] = []float64{v}
	}
	cp, err := MisclassProbs(g, z)
	if err != nil {
		return nil, err
	}

	rows := make([]CondProbRow, 0, model.NumClasses*model.NumClasses*len(zcol))
	for j := 0; j < model.NumClasses; j++ {
		for k := 0; k < model.NumClasses; k++ {
			for i, v := range zcol {
				rows = append(rows, CondProbRow{
					TrueClass: j + 1,
					ObsClass:  k + 1,
					Z:         v,
					Prob:      cp.P[j][k][i],
				})
			}
		}
	}
	return rows, nil
}
