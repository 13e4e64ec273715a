package simulate

import (
	"math"
	"path/filepath"
	"testing"

	"latentlab/binocular/pkg/model"
)

func genParams(n int, seed uint64) Params {
	return Params{
		N:    n,
		Beta: model.BetaFrom([]float64{1, -2}),
		Gamma: model.GammaFrom(
			[]float64{0.5, 1.0},
			[]float64{-0.5, -1.0},
		),
		Seed: seed,
	}
}

func TestGenerate_Shape(t *testing.T) {
	g, err := Generate(genParams(200, 7))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if g.Dataset.N() != 200 || g.Dataset.P() != 1 || g.Dataset.Q() != 1 {
		t.Errorf("dimensions = (%d,%d,%d), want (200,1,1)",
			g.Dataset.N(), g.Dataset.P(), g.Dataset.Q())
	}
	if len(g.TrueY) != 200 {
		t.Errorf("len(TrueY) = %d, want 200", len(g.TrueY))
	}
	for i, y := range g.TrueY {
		if y != 1 && y != 2 {
			t.Fatalf("TrueY[%d] = %d", i, y)
		}
	}
}

func TestGenerate_DeterministicGivenSeed(t *testing.T) {
	a, err := Generate(genParams(50, 42))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := Generate(genParams(50, 42))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		if a.Dataset.YStar(i) != b.Dataset.YStar(i) || a.TrueY[i] != b.TrueY[i] {
			t.Fatalf("outcomes differ at row %d for identical seeds", i)
		}
		if a.Dataset.XRow(i)[0] != b.Dataset.XRow(i)[0] {
			t.Fatalf("covariates differ at row %d for identical seeds", i)
		}
	}

	c, err := Generate(genParams(50, 43))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	same := true
	for i := 0; i < 50; i++ {
		if a.Dataset.XRow(i)[0] != c.Dataset.XRow(i)[0] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical covariates")
	}
}

func TestGenerate_MisclassificationRateInRange(t *testing.T) {
	// With these gammas the average agreement between Y and Y* is well away
	// from both 0.5 and 1, so a gross mechanism bug shows up here.
	g, err := Generate(genParams(5000, 11))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	agree := 0
	for i := 0; i < g.Dataset.N(); i++ {
		if g.Dataset.YStar(i) == g.TrueY[i] {
			agree++
		}
	}
	rate := float64(agree) / float64(g.Dataset.N())
	if rate < 0.55 || rate > 0.95 {
		t.Errorf("agreement rate = %.3f, outside plausible range", rate)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	g, err := Generate(genParams(40, 3))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := WriteCSV(g.Dataset, path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	back, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if back.N() != g.Dataset.N() || back.P() != g.Dataset.P() || back.Q() != g.Dataset.Q() {
		t.Fatalf("round-trip changed dimensions")
	}
	for i := 0; i < back.N(); i++ {
		if back.YStar(i) != g.Dataset.YStar(i) {
			t.Fatalf("row %d outcome changed", i)
		}
		if math.Abs(back.XRow(i)[0]-g.Dataset.XRow(i)[0]) > 1e-12 {
			t.Fatalf("row %d X changed", i)
		}
		if math.Abs(back.ZRow(i)[0]-g.Dataset.ZRow(i)[0]) > 1e-12 {
			t.Fatalf("row %d Z changed", i)
		}
	}
}
