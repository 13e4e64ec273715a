package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"latentlab/binocular/pkg/cli"
	"latentlab/binocular/pkg/results"
)

var runsFlags struct {
	limit int
	days  int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and prune stored estimation runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the stored parameter table of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than the retention period",
	RunE:  runRunsPrune,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsPruneCmd)

	runsListCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "maximum runs to list")
	runsPruneCmd.Flags().IntVar(&runsFlags.days, "days", 0, "retention days (default from config)")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), runsFlags.limit)
	if err != nil {
		return cli.NewCommandError("runs list", err)
	}

	f, err := formatter()
	if err != nil {
		return err
	}
	t := &cli.Table{Header: []string{"id", "kind", "created", "rows", "converged", "iterations", "corrected"}}
	for _, r := range runs {
		t.AddRow(
			r.ID,
			string(r.Kind),
			r.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(r.DatasetRows),
			strconv.FormatBool(r.Converged),
			strconv.Itoa(r.Iterations),
			strconv.FormatBool(r.Corrected),
		)
	}
	return f.FormatTable(os.Stdout, t)
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ests, err := store.Estimates(cmd.Context(), args[0])
	if err != nil {
		return cli.NewCommandError("runs show", err)
	}
	if len(ests) == 0 {
		return fmt.Errorf("no estimates stored for run %s", args[0])
	}

	f, err := formatter()
	if err != nil {
		return err
	}
	t := &cli.Table{Header: []string{"parameter", "estimate", "stderr"}}
	for _, e := range ests {
		t.AddRow(e.Parameter, cli.Float(e.Value), cli.Float(e.StdErr))
	}
	if err := f.FormatTable(os.Stdout, t); err != nil {
		return err
	}

	n, err := store.DrawCount(cmd.Context(), args[0])
	if err != nil {
		return cli.NewCommandError("runs show", err)
	}
	if n > 0 {
		fmt.Printf("\n%d stored draws\n", n)
	}
	return nil
}

func runRunsPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	retention := results.RetentionConfig{RetentionDays: cfg.Results.RetentionDays}
	if runsFlags.days > 0 {
		retention.RetentionDays = runsFlags.days
	}

	removed, err := results.NewPruner(store, retention).Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("runs prune", err)
	}
	fmt.Printf("removed %d runs\n", removed)
	return nil
}
