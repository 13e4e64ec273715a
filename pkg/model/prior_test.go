package model

import (
	"errors"
	"math"
	"testing"
)

func TestUniformPrior_Valid(t *testing.T) {
	pr := UniformPrior(1, 1, -10, 10)
	if err := pr.Validate(1, 1); err != nil {
		t.Fatalf("default uniform prior invalid: %v", err)
	}
	for j := 0; j < NumClasses; j++ {
		for c := 0; c < 2; c++ {
			if !math.IsNaN(pr.GammaA[j][1][c]) {
				t.Error("reference-class entry is not NaN")
			}
		}
	}
}

func TestNormalPrior_Valid(t *testing.T) {
	pr := NormalPrior(2, 1, 0, 5)
	if err := pr.Validate(2, 1); err != nil {
		t.Fatalf("normal prior invalid: %v", err)
	}
}

func TestPrior_Invalid(t *testing.T) {
	var priorErr *PriorError

	tests := []struct {
		name   string
		mutate func(*Prior)
	}{
		{"unknown family", func(pr *Prior) { pr.Family = "beta" }},
		{"beta length", func(pr *Prior) { pr.BetaA = pr.BetaA[:1] }},
		{"gamma length", func(pr *Prior) { pr.GammaA[0][0] = pr.GammaA[0][0][:1] }},
		{"bounds inverted", func(pr *Prior) { pr.BetaA[0], pr.BetaB[0] = 5, -5 }},
		{"NaN on estimable coefficient", func(pr *Prior) { pr.GammaA[1][0][0] = math.NaN() }},
		{"value on fixed coefficient", func(pr *Prior) { pr.GammaA[0][1][0] = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := UniformPrior(1, 1, -10, 10)
			tt.mutate(pr)
			if err := pr.Validate(1, 1); !errors.As(err, &priorErr) {
				t.Errorf("expected PriorError, got %v", err)
			}
		})
	}
}

func TestPrior_NormalNeedsPositiveSD(t *testing.T) {
	pr := NormalPrior(1, 1, 0, 5)
	pr.BetaB[1] = 0
	if err := pr.Validate(1, 1); err == nil {
		t.Error("expected error for zero prior standard deviation")
	}
}
