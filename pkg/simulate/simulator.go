package simulate

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"latentlab/binocular/pkg/likelihood"
	"latentlab/binocular/pkg/model"
)

// Params describes one simulated dataset: its size, the generating
// parameters of both mechanisms, and the random seed.
type Params struct {
	N     int
	Beta  *model.Beta
	Gamma *model.Gamma
	Seed  uint64
}

// Generated bundles the dataset with the latent truth it was generated
// from. TrueY is returned for oracle checks in tests and vignettes; the
// estimators never see it.
type Generated struct {
	Dataset *model.Dataset
	TrueY   []int
}

// Generate draws a dataset of p.N subjects. Covariates for both mechanisms
// are independent standard normals; the true outcome follows
// P(Y=1|X)=sigmoid(X·beta) and the recorded outcome follows the observation
// mechanism for the sampled true class.
func Generate(p Params) (*Generated, error) {
	if p.N <= 0 {
		return nil, fmt.Errorf("simulate: N must be positive, got %d", p.N)
	}
	if p.Beta == nil || p.Gamma == nil {
		return nil, fmt.Errorf("simulate: generating parameters are required")
	}

	src := rand.NewSource(p.Seed)
	rng := rand.New(src)
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	np, nq := p.Beta.P(), p.Gamma.Q()
	ystar := make([]int, p.N)
	trueY := make([]int, p.N)
	x := make([][]float64, p.N)
	z := make([][]float64, p.N)

	for i := 0; i < p.N; i++ {
		x[i] = make([]float64, np)
		z[i] = make([]float64, nq)
		for l := range x[i] {
			x[i][l] = norm.Rand()
		}
		for l := range z[i] {
			z[i][l] = norm.Rand()
		}

		pTrue := likelihood.Sigmoid(likelihood.Dot(p.Beta.Coef, x[i]))
		trueY[i] = 2
		if rng.Float64() < pTrue {
			trueY[i] = 1
		}

		pObs1 := likelihood.Sigmoid(likelihood.Dot(p.Gamma.Free(trueY[i]-1), z[i]))
		ystar[i] = 2
		if rng.Float64() < pObs1 {
			ystar[i] = 1
		}
	}

	d, err := model.NewDataset(ystar, x, z)
	if err != nil {
		return nil, err
	}
	return &Generated{Dataset: d, TrueY: trueY}, nil
}
