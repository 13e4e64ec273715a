package likelihood

import (
	"errors"
	"math"
	"testing"

	"latentlab/binocular/pkg/model"
)

func testDataset(t *testing.T) *model.Dataset {
	t.Helper()
	ystar := []int{1, 2, 1, 2, 1}
	x := [][]float64{{0.3}, {-1.1}, {2.0}, {0.0}, {-0.4}}
	z := [][]float64{{1.0}, {0.5}, {-0.5}, {0.2}, {-1.3}}
	d, err := model.NewDataset(ystar, x, z)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	return d
}

func TestResponsibilities_RowsSumToOne(t *testing.T) {
	d := testDataset(t)
	b := model.BetaFrom([]float64{1, -2})
	g := model.GammaFrom([]float64{0.5, 1.0}, []float64{-0.5, -1.0})

	r, err := Responsibilities(b, g, d)
	if err != nil {
		t.Fatalf("Responsibilities failed: %v", err)
	}
	if len(r.W) != d.N() {
		t.Fatalf("got %d rows, want %d", len(r.W), d.N())
	}
	for i, w := range r.W {
		if w[0] < 0 || w[0] > 1 || w[1] < 0 || w[1] > 1 {
			t.Errorf("row %d responsibilities outside [0,1]: %v", i, w)
		}
		if math.Abs(w[0]+w[1]-1) > 1e-12 {
			t.Errorf("row %d responsibilities sum to %v", i, w[0]+w[1])
		}
	}
}

func TestResponsibilities_BayesConsistency(t *testing.T) {
	// With a perfectly informative observation mechanism the posterior should
	// concentrate on the class matching the observed outcome.
	d := testDataset(t)
	b := model.BetaFrom([]float64{0, 0})
	g := model.GammaFrom([]float64{30, 0}, []float64{-30, 0})

	r, err := Responsibilities(b, g, d)
	if err != nil {
		t.Fatalf("Responsibilities failed: %v", err)
	}
	for i := 0; i < d.N(); i++ {
		j := d.YStar(i) - 1
		if r.W[i][j] < 0.999 {
			t.Errorf("row %d: posterior on observed class = %v, want near 1", i, r.W[i][j])
		}
	}
}

func TestResponsibilities_ExtremeParametersStayFinite(t *testing.T) {
	// Huge coefficients push individual terms into underflow territory; the
	// log-space path must still return a valid distribution.
	d := testDataset(t)
	b := model.BetaFrom([]float64{500, -500})
	g := model.GammaFrom([]float64{400, 200}, []float64{-400, -200})

	r, err := Responsibilities(b, g, d)
	if err != nil {
		t.Fatalf("Responsibilities failed: %v", err)
	}
	for i, w := range r.W {
		sum := w[0] + w[1]
		if math.IsNaN(sum) || math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d degenerate under extreme parameters: %v", i, w)
		}
	}
}

func TestResponsibilities_ShapeMismatch(t *testing.T) {
	d := testDataset(t)
	var shapeErr *model.ShapeError
	if _, err := Responsibilities(model.BetaFrom([]float64{1, 2, 3}), model.NewGamma(1), d); !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}

func TestBernoulliLogLik(t *testing.T) {
	rows := [][]float64{{1}, {-1}}
	y := []float64{1, 0}
	coef := []float64{0, 1}

	// log sigmoid(1) + log(1-sigmoid(-1))
	want := LogSigmoid(1) + LogSigmoid(1)
	got := BernoulliLogLik(coef, rows, y)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("BernoulliLogLik = %v, want %v", got, want)
	}
}
