package likelihood

import (
	"errors"
	"math"
	"testing"

	"latentlab/binocular/pkg/model"
)

func TestMisclassProbs_SumToOne(t *testing.T) {
	g := model.GammaFrom([]float64{0.5, 1.0}, []float64{-0.5, -1.0})
	z := [][]float64{{-2}, {-0.5}, {0}, {0.5}, {2}}

	cp, err := MisclassProbs(g, z)
	if err != nil {
		t.Fatalf("MisclassProbs failed: %v", err)
	}

	for j := 0; j < model.NumClasses; j++ {
		for i := range z {
			sum := cp.P[j][0][i] + cp.P[j][1][i]
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("probs for (j=%d,i=%d) sum to %v, want 1", j+1, i, sum)
			}
			for k := 0; k < model.NumClasses; k++ {
				p := cp.P[j][k][i]
				if p < 0 || p > 1 {
					t.Errorf("prob (j=%d,k=%d,i=%d) = %v outside [0,1]", j+1, k+1, i, p)
				}
			}
		}
	}
}

func TestMisclassProbs_KnownValue(t *testing.T) {
	// Intercept-only mechanism: P(Y*=1|Y=1) = sigmoid(1).
	g := model.GammaFrom([]float64{1, 0}, []float64{-1, 0})
	cp, err := MisclassProbs(g, [][]float64{{0}})
	if err != nil {
		t.Fatalf("MisclassProbs failed: %v", err)
	}

	want := 1 / (1 + math.Exp(-1))
	if math.Abs(cp.P[0][0][0]-want) > 1e-12 {
		t.Errorf("P(Y*=1|Y=1) = %v, want %v", cp.P[0][0][0], want)
	}
	if math.Abs(cp.P[1][0][0]-(1-want)) > 1e-12 {
		t.Errorf("P(Y*=1|Y=2) = %v, want %v", cp.P[1][0][0], 1-want)
	}
}

func TestMisclassProbs_ShapeMismatch(t *testing.T) {
	g := model.GammaFrom([]float64{0.5, 1.0}, []float64{-0.5, -1.0})
	z := [][]float64{{1, 2}, {0, 1}} // two columns, gamma expects one

	var shapeErr *model.ShapeError
	if _, err := MisclassProbs(g, z); !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}

func TestCondProbTable(t *testing.T) {
	g := model.GammaFrom([]float64{0.5, 1.0}, []float64{-0.5, -1.0})
	zcol := []float64{-1, 0, 1}

	rows, err := CondProbTable(g, zcol)
	if err != nil {
		t.Fatalf("CondProbTable failed: %v", err)
	}
	if len(rows) != 4*len(zcol) {
		t.Fatalf("got %d rows, want %d", len(rows), 4*len(zcol))
	}

	// Complementary (j, k=1) and (j, k=2) rows must sum to one per z value.
	byKey := map[[2]int]map[float64]float64{}
	for _, r := range rows {
		key := [2]int{r.TrueClass, r.ObsClass}
		if byKey[key] == nil {
			byKey[key] = map[float64]float64{}
		}
		byKey[key][r.Z] = r.Prob
	}
	for j := 1; j <= 2; j++ {
		for _, z := range zcol {
			sum := byKey[[2]int{j, 1}][z] + byKey[[2]int{j, 2}][z]
			if math.Abs(sum-1) > 1e-12 {
				t.Errorf("table probs for j=%d z=%v sum to %v", j, z, sum)
			}
		}
	}
}

func TestLogSigmoid_Stable(t *testing.T) {
	for _, eta := range []float64{-800, -40, -5, 0, 5, 40, 800} {
		ls := LogSigmoid(eta)
		if math.IsNaN(ls) || ls > 0 {
			t.Errorf("LogSigmoid(%v) = %v", eta, ls)
		}
		if eta >= -30 {
			naive := math.Log(Sigmoid(eta))
			if math.Abs(ls-naive) > 1e-9 {
				t.Errorf("LogSigmoid(%v) = %v, naive log = %v", eta, ls, naive)
			}
		}
	}
	// Far in the left tail the naive form underflows but LogSigmoid must not.
	if math.IsInf(LogSigmoid(-800), -1) {
		t.Error("LogSigmoid(-800) underflowed to -Inf")
	}
}
