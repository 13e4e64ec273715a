package em

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"latentlab/binocular/pkg/likelihood"
	"latentlab/binocular/pkg/model"
	"latentlab/binocular/pkg/relabel"
)

// Options controls the EM run.
type Options struct {
	// MaxIter caps the number of E/M iterations. Default 1500.
	MaxIter int
	// Tol is the maximum absolute parameter change below which the run is
	// declared converged. Default 1e-7.
	Tol float64
	// Epsilon is the label-switch dead zone, forwarded to relabel.Corrector.
	Epsilon float64
}

func (o Options) withDefaults() Options {
	if o.MaxIter <= 0 {
		o.MaxIter = 1500
	}
	if o.Tol <= 0 {
		o.Tol = 1e-7
	}
	return o
}

// Estimate is one row of the reported parameter table.
type Estimate struct {
	Name   string  `json:"name"`
	Value  float64 `json:"estimate"`
	StdErr float64 `json:"stderr"`
}

// Result is the full EM output. Converged=false is a reported condition,
// not a failure: the final parameter values and iteration count are always
// populated so the caller can restart from them.
type Result struct {
	Beta  *model.Beta
	Gamma *model.Gamma

	Converged  bool
	Iterations int
	// Corrected reports whether the label-switch corrector swapped the
	// mechanisms on the way out.
	Corrected bool

	// Estimates is the corrected parameter table in model.ParamNames order.
	Estimates []Estimate
	// Naive is the misclassification-ignoring logistic fit of Y* on X.
	Naive []Estimate
	// PerfectSensitivity is the constrained refit with P(Y*=1|Y=1)=1.
	PerfectSensitivity []Estimate
}

// Fit runs EM from the given starting values. Shape mismatches fail before
// the first iteration; convergence problems are flags on the result. The
// context is checked between iterations, so cancellation never exposes
// mid-iteration state.
func Fit(ctx context.Context, d *model.Dataset, startBeta *model.Beta, startGamma *model.Gamma, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := d.ValidateParams(startBeta, startGamma); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "em")

	n := d.N()
	tstar := observedIndicator(d)
	unit := ones(n)

	beta := startBeta.Clone()
	gamma := startGamma.Clone()

	res := &Result{Converged: false}
	var betaFit, g1Fit, g2Fit *logitFit

	for iter := 1; iter <= opts.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := likelihood.Responsibilities(beta, gamma, d)
		if err != nil {
			return nil, err
		}
		w1 := make([]float64, n)
		w2 := make([]float64, n)
		for i := range resp.W {
			w1[i] = resp.W[i][0]
			w2[i] = resp.W[i][1]
		}

		// Beta: weighted fit of the expected true-class indicator on X.
		betaFit, err = fitWeightedLogit(d.X(), w1, unit, beta.Coef)
		if err != nil {
			return nil, fmt.Errorf("m-step beta: %w", err)
		}
		// Gamma: one weighted fit of Y* on Z per hypothesized true class.
		g1Fit, err = fitWeightedLogit(d.Z(), tstar, w1, gamma.Free(0))
		if err != nil {
			return nil, fmt.Errorf("m-step gamma (class 1): %w", err)
		}
		g2Fit, err = fitWeightedLogit(d.Z(), tstar, w2, gamma.Free(1))
		if err != nil {
			return nil, fmt.Errorf("m-step gamma (class 2): %w", err)
		}

		delta := maxAbsDiff(beta.Coef, betaFit.coef)
		delta = math.Max(delta, maxAbsDiff(gamma.Free(0), g1Fit.coef))
		delta = math.Max(delta, maxAbsDiff(gamma.Free(1), g2Fit.coef))

		copy(beta.Coef, betaFit.coef)
		copy(gamma.Block[0][0].Coef, g1Fit.coef)
		copy(gamma.Block[1][0].Coef, g2Fit.coef)

		res.Iterations = iter
		if delta < opts.Tol {
			res.Converged = true
			break
		}
	}
	if !res.Converged {
		logger.Warn("EM did not converge",
			"iterations", res.Iterations,
			"max_iterations", opts.MaxIter,
		)
	}

	// Canonicalize the labeling; standard errors follow the swap.
	corrector := relabel.Corrector{Epsilon: opts.Epsilon}
	cb, cg, corrected := corrector.Correct(beta, gamma)
	res.Beta, res.Gamma, res.Corrected = cb, cg, corrected

	g1Var, g2Var := g1Fit.variance, g2Fit.variance
	if corrected {
		g1Var, g2Var = g2Var, g1Var
	}
	res.Estimates = estimateTable(d, cb, cg, betaFit.variance, g1Var, g2Var)

	naive, err := naiveFit(d, startBeta)
	if err != nil {
		return nil, fmt.Errorf("naive fit: %w", err)
	}
	res.Naive = naive

	ps, err := perfectSensitivityFit(ctx, d, startBeta, startGamma, opts)
	if err != nil {
		return nil, fmt.Errorf("perfect-sensitivity refit: %w", err)
	}
	res.PerfectSensitivity = ps

	logger.Info("EM finished",
		"iterations", res.Iterations,
		"converged", res.Converged,
		"label_corrected", res.Corrected,
	)
	return res, nil
}

// estimateTable assembles the named estimate/stderr rows in canonical order.
func estimateTable(d *model.Dataset, b *model.Beta, g *model.Gamma, betaVar, g1Var, g2Var []float64) []Estimate {
	names := model.ParamNames(d.P(), d.Q())
	values := model.FlattenParams(b, g)
	variances := make([]float64, 0, len(values))
	variances = append(variances, betaVar...)
	variances = append(variances, g1Var...)
	variances = append(variances, g2Var...)

	out := make([]Estimate, len(names))
	for i := range names {
		out[i] = Estimate{Name: names[i], Value: values[i], StdErr: math.Sqrt(variances[i])}
	}
	return out
}

// naiveFit is the misclassification-ignoring comparison: an ordinary
// logistic regression of the observed outcome on X.
func naiveFit(d *model.Dataset, start *model.Beta) ([]Estimate, error) {
	fit, err := fitWeightedLogit(d.X(), observedIndicator(d), ones(d.N()), start.Coef)
	if err != nil {
		return nil, err
	}
	out := make([]Estimate, len(fit.coef))
	for c := range fit.coef {
		out[c] = Estimate{
			Name:   fmt.Sprintf("beta_%d", c),
			Value:  fit.coef[c],
			StdErr: math.Sqrt(fit.variance[c]),
		}
	}
	return out, nil
}

// perfectSensitivityFit runs the constrained EM variant with P(Y*=1|Y=1)
// pinned at one: an observed Y*=2 then identifies Y=2 exactly, and only
// beta and the class-2 gamma block are estimated. It is an independent
// refit, reported for comparison, not part of the general loop.
func perfectSensitivityFit(ctx context.Context, d *model.Dataset, startBeta *model.Beta, startGamma *model.Gamma, opts Options) ([]Estimate, error) {
	n := d.N()
	tstar := observedIndicator(d)
	unit := ones(n)

	beta := startBeta.Clone()
	g2 := make([]float64, d.Q()+1)
	copy(g2, startGamma.Free(1))

	w1 := make([]float64, n)
	w2 := make([]float64, n)

	var betaFit, g2Fit *logitFit
	for iter := 0; iter < opts.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			if tstar[i] == 0 {
				// P(Y*=2|Y=1)=0 under the constraint.
				w1[i], w2[i] = 0, 1
				continue
			}
			lw1 := likelihood.LogSigmoid(likelihood.Dot(beta.Coef, d.XRow(i)))
			lw2 := likelihood.LogSigmoid(-likelihood.Dot(beta.Coef, d.XRow(i))) +
				likelihood.LogSigmoid(likelihood.Dot(g2, d.ZRow(i)))
			m := math.Max(lw1, lw2)
			den := m + math.Log(math.Exp(lw1-m)+math.Exp(lw2-m))
			w1[i] = math.Exp(lw1 - den)
			w2[i] = math.Exp(lw2 - den)
		}

		var err error
		betaFit, err = fitWeightedLogit(d.X(), w1, unit, beta.Coef)
		if err != nil {
			return nil, err
		}
		g2Fit, err = fitWeightedLogit(d.Z(), tstar, w2, g2)
		if err != nil {
			return nil, err
		}

		delta := math.Max(maxAbsDiff(beta.Coef, betaFit.coef), maxAbsDiff(g2, g2Fit.coef))
		copy(beta.Coef, betaFit.coef)
		copy(g2, g2Fit.coef)
		if delta < opts.Tol {
			break
		}
	}

	out := make([]Estimate, 0, len(beta.Coef)+len(g2))
	for c := range beta.Coef {
		out = append(out, Estimate{
			Name:   fmt.Sprintf("beta_%d", c),
			Value:  beta.Coef[c],
			StdErr: math.Sqrt(betaFit.variance[c]),
		})
	}
	for c := range g2 {
		out = append(out, Estimate{
			Name:   fmt.Sprintf("gamma2_%d", c),
			Value:  g2[c],
			StdErr: math.Sqrt(g2Fit.variance[c]),
		})
	}
	return out, nil
}

// observedIndicator returns 1 where Y*=1 and 0 where Y*=2.
func observedIndicator(d *model.Dataset) []float64 {
	t := make([]float64, d.N())
	for i := 0; i < d.N(); i++ {
		if d.YStar(i) == 1 {
			t[i] = 1
		}
	}
	return t
}

func maxAbsDiff(a, b []float64) float64 {
	var mx float64
	for i := range a {
		if v := math.Abs(a[i] - b[i]); v > mx {
			mx = v
		}
	}
	return mx
}
