package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&Config{
		Path:        filepath.Join(t.TempDir(), "runs.db"),
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveRun_AssignsID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, &Run{Kind: RunEM, DatasetRows: 100, Converged: true, Iterations: 12},
		[]Estimate{{Parameter: "beta_0", Value: 1.01, StdErr: 0.1}}, nil)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRun returned empty id")
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != id {
		t.Fatalf("stored run not listed: %+v", runs)
	}
	if runs[0].Kind != RunEM || !runs[0].Converged || runs[0].Iterations != 12 {
		t.Errorf("run metadata mangled: %+v", runs[0])
	}
}

func TestSaveRun_EstimatesAndDraws(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ests := []Estimate{
		{Parameter: "beta_0", Value: 0.98, StdErr: 0.11},
		{Parameter: "beta_1", Value: -1.95, StdErr: 0.14},
	}
	draws := []Draw{
		{Chain: 1, Iteration: 1, Parameter: "beta_0", Value: 1.0},
		{Chain: 1, Iteration: 2, Parameter: "beta_0", Value: 1.1},
		{Chain: 2, Iteration: 1, Parameter: "beta_0", Value: 0.9},
	}
	id, err := s.SaveRun(ctx, &Run{Kind: RunMCMC, DatasetRows: 1000}, ests, draws)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	back, err := s.Estimates(ctx, id)
	if err != nil {
		t.Fatalf("Estimates failed: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("got %d estimates, want 2", len(back))
	}

	n, err := s.DrawCount(ctx, id)
	if err != nil {
		t.Fatalf("DrawCount failed: %v", err)
	}
	if n != 3 {
		t.Errorf("DrawCount = %d, want 3", n)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := &Run{Kind: RunEM, CreatedAt: time.Now().UTC().Add(-48 * time.Hour), DatasetRows: 10}
	fresh := &Run{Kind: RunEM, DatasetRows: 10}
	if _, err := s.SaveRun(ctx, old, nil, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if _, err := s.SaveRun(ctx, fresh, nil, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	removed, err := s.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d runs, want 1", removed)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != fresh.ID {
		t.Errorf("wrong run survived pruning: %+v", runs)
	}
}

func TestPruner_ZeroRetentionIsNoop(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := &Run{Kind: RunEM, CreatedAt: time.Now().UTC().Add(-1000 * time.Hour), DatasetRows: 10}
	if _, err := s.SaveRun(ctx, old, nil, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	removed, err := NewPruner(s, RetentionConfig{}).Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("zero retention pruned %d runs", removed)
	}
}

func TestPruner_RemovesExpiredRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := &Run{Kind: RunMCMC, CreatedAt: time.Now().UTC().AddDate(0, 0, -30), DatasetRows: 10}
	if _, err := s.SaveRun(ctx, old, nil, nil); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	removed, err := NewPruner(s, RetentionConfig{RetentionDays: 7}).Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d runs, want 1", removed)
	}
}
