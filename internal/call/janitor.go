package call

import (
	"context"
	"log/slog"
	"time"

	"github.com/Anshika-404/MockMate/internal/models"
)

// StaleStore lists and removes abandoned non-finalized interviews.
type StaleStore interface {
	ListStaleInterviews(ctx context.Context, olderThan time.Time) ([]*models.Interview, error)
	DeleteInterview(ctx context.Context, id string) error
}

// Janitor periodically force-finishes idle call sessions and prunes
// interviews that never finalized. The service's own write paths always
// finalize on creation, so the pruning half only catches rows written by
// external tooling or seed scripts.
type Janitor struct {
	registry *Registry
	runner   *Runner
	store    StaleStore
	interval time.Duration
	idle     time.Duration
	staleAge time.Duration
}

// NewJanitor creates a janitor worker.
func NewJanitor(registry *Registry, runner *Runner, store StaleStore, interval, idle, staleAge time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if idle <= 0 {
		idle = 10 * time.Minute
	}

	return &Janitor{
		registry: registry,
		runner:   runner,
		store:    store,
		interval: interval,
		idle:     idle,
		staleAge: staleAge,
	}
}

// Start begins the janitor in a goroutine.
func (j *Janitor) Start(ctx context.Context) {
	go j.run(ctx)
}

func (j *Janitor) run(ctx context.Context) {
	slog.Info("call janitor started", "interval", j.interval, "idle_timeout", j.idle)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("call janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	for _, s := range j.registry.Idle(time.Now().Add(-j.idle)) {
		slog.Info("force-finishing idle call session",
			"session_id", s.ID,
			"interview_id", s.InterviewID,
			"last_event", s.LastEvent(),
		)
		s.Disconnect()
		j.runner.Finish(ctx, s)
	}

	if j.store == nil || j.staleAge <= 0 {
		return
	}

	stale, err := j.store.ListStaleInterviews(ctx, time.Now().Add(-j.staleAge))
	if err != nil {
		slog.Error("failed to list stale interviews", "error", err)
		return
	}

	for _, iv := range stale {
		if err := j.store.DeleteInterview(ctx, iv.ID); err != nil {
			slog.Error("failed to delete stale interview", "error", err, "id", iv.ID)
			continue
		}
		slog.Info("stale interview deleted", "id", iv.ID, "user", iv.UserID)
	}
}
