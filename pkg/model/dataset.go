package model

import (
	"fmt"
	"math"
)

// Dataset is the read-only input consumed by both estimators: the observed
// outcome vector Y* with values in {1,2}, the true-mechanism covariate
// matrix X (n rows, p columns), and the observation-mechanism covariate
// matrix Z (n rows, q columns). All three share the same row count.
//
// The constructor copies its inputs; accessors return internal slices that
// callers must treat as read-only.
type Dataset struct {
	ystar []int
	x     [][]float64
	z     [][]float64
}

// NewDataset validates and copies the raw inputs into an immutable Dataset.
func NewDataset(ystar []int, x, z [][]float64) (*Dataset, error) {
	n := len(ystar)
	if n == 0 {
		return nil, NewShapeError("dataset", 1, 0)
	}
	if len(x) != n {
		return nil, NewShapeError("dataset X rows", n, len(x))
	}
	if len(z) != n {
		return nil, NewShapeError("dataset Z rows", n, len(z))
	}

	d := &Dataset{
		ystar: make([]int, n),
		x:     make([][]float64, n),
		z:     make([][]float64, n),
	}
	copy(d.ystar, ystar)

	p, q := len(x[0]), len(z[0])
	for i := 0; i < n; i++ {
		if ystar[i] != 1 && ystar[i] != 2 {
			return nil, fmt.Errorf("dataset: observed outcome at row %d is %d, want 1 or 2", i, ystar[i])
		}
		if len(x[i]) != p {
			return nil, NewShapeError("dataset X columns", p, len(x[i]))
		}
		if len(z[i]) != q {
			return nil, NewShapeError("dataset Z columns", q, len(z[i]))
		}
		d.x[i] = make([]float64, p)
		d.z[i] = make([]float64, q)
		copy(d.x[i], x[i])
		copy(d.z[i], z[i])
		for _, v := range x[i] {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("dataset: missing X value at row %d", i)
			}
		}
		for _, v := range z[i] {
			if math.IsNaN(v) {
				return nil, fmt.Errorf("dataset: missing Z value at row %d", i)
			}
		}
	}
	return d, nil
}

// N returns the number of observations.
func (d *Dataset) N() int { return len(d.ystar) }

// P returns the number of true-mechanism predictors.
func (d *Dataset) P() int { return len(d.x[0]) }

// Q returns the number of observation-mechanism predictors.
func (d *Dataset) Q() int { return len(d.z[0]) }

// YStar returns the observed outcome for row i (1 or 2).
func (d *Dataset) YStar(i int) int { return d.ystar[i] }

// XRow returns the X covariate row for subject i. Read-only.
func (d *Dataset) XRow(i int) []float64 { return d.x[i] }

// ZRow returns the Z covariate row for subject i. Read-only.
func (d *Dataset) ZRow(i int) []float64 { return d.z[i] }

// X returns the full X matrix. Read-only.
func (d *Dataset) X() [][]float64 { return d.x }

// Z returns the full Z matrix. Read-only.
func (d *Dataset) Z() [][]float64 { return d.z }

// ValidateParams checks starting or current parameter shapes against the
// dataset dimensions. Called by both estimators before iterating.
func (d *Dataset) ValidateParams(b *Beta, g *Gamma) error {
	if err := b.Validate(d.P()); err != nil {
		return err
	}
	return g.Validate(d.Q())
}
