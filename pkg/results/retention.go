package results

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls automatic pruning of old runs.
type RetentionConfig struct {
	// RetentionDays is the age beyond which runs are deleted. Zero disables
	// pruning entirely.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning, e.g.
	// "0 3 * * *" for daily at 3 AM. Empty disables the scheduler.
	PruneSchedule string
}

// Pruner deletes runs older than the configured retention period.
type Pruner struct {
	store  *Store
	config RetentionConfig
	logger *slog.Logger
}

// NewPruner creates a pruner over the given store.
func NewPruner(store *Store, config RetentionConfig) *Pruner {
	return &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "results.pruner"),
	}
}

// Prune removes runs older than the retention period. A zero retention
// period makes it a no-op.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)
	return p.store.DeleteOlderThan(ctx, cutoff)
}

// Scheduler runs the pruner on a cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	logger  *slog.Logger
	running bool
}

// NewScheduler creates a retention scheduler.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
		logger: slog.Default().With("component", "results.scheduler"),
	}
}

// Start begins scheduled pruning. An empty schedule is a configured no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	schedule := s.pruner.config.PruneSchedule
	if schedule == "" {
		s.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	_, err := s.cron.AddFunc(schedule, func() {
		removed, err := s.pruner.Prune(ctx)
		if err != nil {
			s.logger.Error("scheduled prune failed", "error", err)
			return
		}
		s.logger.Info("scheduled prune complete", "removed", removed)
	})
	if err != nil {
		return fmt.Errorf("schedule prune: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("retention scheduler started", "schedule", schedule)
	return nil
}

// Stop halts scheduled pruning and waits for an in-flight prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}
