package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"latentlab/binocular/pkg/cli"
	"latentlab/binocular/pkg/config"
	"latentlab/binocular/pkg/em"
	"latentlab/binocular/pkg/results"
	"latentlab/binocular/pkg/simulate"
	"latentlab/binocular/pkg/telemetry/metrics"
	"latentlab/binocular/pkg/watch"
)

var fitFlags struct {
	data        string
	startBeta   string
	startGamma1 string
	startGamma2 string
	maxIter     int
	tol         float64
	save        bool
	watch       bool
}

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Estimate both mechanisms with EM",
	Long: `Fit the true-outcome and observation mechanisms jointly with EM.

The command reports the corrected parameter table with standard errors, the
naive logistic fit that ignores misclassification, and the constrained refit
assuming the outcome is never missed when truly present.

Non-convergence within the iteration cap is reported, not fatal: the table
still shows the final values so the fit can be restarted from them.

Examples:
  # Fit with defaults (all starting values at 1)
  binocular fit --data data.csv

  # Explicit starting values and a tighter tolerance
  binocular fit --data data.csv --start-beta 0.5,-1 --tol 1e-9

  # Refit automatically whenever the dataset file changes
  binocular fit --data data.csv --watch`,
	RunE: runFit,
}

func init() {
	rootCmd.AddCommand(fitCmd)

	fitCmd.Flags().StringVar(&fitFlags.data, "data", "", "dataset CSV path (required)")
	fitCmd.Flags().StringVar(&fitFlags.startBeta, "start-beta", "", "starting beta coefficients (default all 1)")
	fitCmd.Flags().StringVar(&fitFlags.startGamma1, "start-gamma1", "", "starting gamma coefficients for true class 1 (default all 1)")
	fitCmd.Flags().StringVar(&fitFlags.startGamma2, "start-gamma2", "", "starting gamma coefficients for true class 2 (default all 1)")
	fitCmd.Flags().IntVar(&fitFlags.maxIter, "max-iter", 0, "iteration cap (default from config)")
	fitCmd.Flags().Float64Var(&fitFlags.tol, "tol", 0, "convergence tolerance (default from config)")
	fitCmd.Flags().BoolVar(&fitFlags.save, "save", false, "persist the run to the results store")
	fitCmd.Flags().BoolVar(&fitFlags.watch, "watch", false, "refit whenever the dataset file changes")

	fitCmd.MarkFlagRequired("data")
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := em.Options{
		MaxIter: cfg.EM.MaxIterations,
		Tol:     cfg.EM.Tolerance,
		Epsilon: cfg.Relabel.Epsilon,
	}
	if fitFlags.maxIter > 0 {
		opts.MaxIter = fitFlags.maxIter
	}
	if fitFlags.tol > 0 {
		opts.Tol = fitFlags.tol
	}

	ctx := cli.SetupSignalHandler()

	var store *results.Store
	if fitFlags.save {
		store, err = openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		// A long-lived watch process also owns scheduled retention pruning.
		if fitFlags.watch {
			pruner := results.NewPruner(store, results.RetentionConfig{
				RetentionDays: cfg.Results.RetentionDays,
				PruneSchedule: cfg.Results.PruneSchedule,
			})
			scheduler := results.NewScheduler(pruner)
			if err := scheduler.Start(ctx); err != nil {
				return cli.NewCommandError("fit", err)
			}
			defer scheduler.Stop()
		}
	}

	var collector *metrics.Collector
	if fitFlags.watch {
		collector = metrics.NewCollector(&metrics.Config{
			Enabled:   cfg.Metrics.Enabled,
			Namespace: cfg.Metrics.Namespace,
		}, nil)
		if cfg.Metrics.Enabled {
			serveMetrics(cfg, collector)
		}
	}

	fitOnce := func() error {
		d, err := simulate.ReadCSV(fitFlags.data)
		if err != nil {
			return cli.NewCommandError("fit", err)
		}
		beta, gamma, err := startValues(d.P(), d.Q(), fitFlags.startBeta, fitFlags.startGamma1, fitFlags.startGamma2)
		if err != nil {
			return err
		}

		started := time.Now()
		res, err := em.Fit(ctx, d, beta, gamma, opts)
		if err != nil {
			return cli.NewCommandError("fit", err)
		}
		if collector != nil {
			collector.RecordEMRun(res.Converged, res.Iterations, res.Corrected, time.Since(started))
		}

		if err := printFitResult(res); err != nil {
			return err
		}
		if store != nil {
			id, err := saveEMRun(ctx, store, d.N(), res)
			if err != nil {
				return cli.NewCommandError("fit", err)
			}
			fmt.Fprintf(os.Stderr, "run saved: %s\n", id)
		}
		return nil
	}

	if err := fitOnce(); err != nil {
		return err
	}
	if !fitFlags.watch {
		return nil
	}

	w, err := watch.NewDatasetWatcher(fitFlags.data, 0)
	if err != nil {
		return cli.NewCommandError("fit", err)
	}
	defer w.Close()
	return w.Watch(ctx, fitOnce)
}

func printFitResult(res *em.Result) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	if !res.Converged {
		fmt.Fprintf(os.Stderr, "warning: EM did not converge after %d iterations\n", res.Iterations)
	}

	table := estimateTable(res.Estimates)
	if err := f.FormatTable(os.Stdout, table); err != nil {
		return err
	}

	// Comparison fits only accompany the default text format; structured
	// output stays a single table for piping.
	if cli.OutputFormat(outputFormat) != cli.FormatText {
		return nil
	}

	fmt.Println("\nnaive fit (ignores misclassification):")
	if err := f.FormatTable(os.Stdout, estimateTable(res.Naive)); err != nil {
		return err
	}
	fmt.Println("\nperfect-sensitivity refit:")
	return f.FormatTable(os.Stdout, estimateTable(res.PerfectSensitivity))
}

func estimateTable(ests []em.Estimate) *cli.Table {
	t := &cli.Table{Header: []string{"parameter", "estimate", "stderr"}}
	for _, e := range ests {
		t.AddRow(e.Name, cli.Float(e.Value), cli.Float(e.StdErr))
	}
	return t
}

func saveEMRun(ctx context.Context, store *results.Store, rows int, res *em.Result) (string, error) {
	ests := make([]results.Estimate, len(res.Estimates))
	for i, e := range res.Estimates {
		ests[i] = results.Estimate{Parameter: e.Name, Value: e.Value, StdErr: e.StdErr}
	}
	return store.SaveRun(ctx, &results.Run{
		Kind:        results.RunEM,
		DatasetRows: rows,
		Converged:   res.Converged,
		Iterations:  res.Iterations,
		Corrected:   res.Corrected,
	}, ests, nil)
}

func openStore(cfg *config.Config) (*results.Store, error) {
	path := cfg.Results.Path
	if path == "" {
		path = config.DefaultResultsPath
	}
	store, err := results.Open(&results.Config{
		Path:        path,
		WALMode:     cfg.Results.WALMode,
		BusyTimeout: cfg.Results.BusyTimeout,
	})
	if err != nil {
		return nil, cli.NewCommandError("results", err)
	}
	return store, nil
}

func serveMetrics(cfg *config.Config, collector *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	go func() {
		slog.Info("metrics endpoint listening", "address", cfg.Metrics.ListenAddress)
		if err := http.ListenAndServe(cfg.Metrics.ListenAddress, mux); err != nil {
			slog.Error("metrics endpoint failed", "error", err)
		}
	}()
}
