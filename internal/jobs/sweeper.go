// Package jobs runs scheduled background maintenance.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"crewz/internal/middleware"
	"crewz/internal/models"
	"crewz/internal/observability"
	"crewz/internal/repository"

	"github.com/robfig/cron/v3"
)

const (
	defaultSweepBatch = 500
	sweepTimeout      = 2 * time.Minute
)

// StorySweeper deletes expired stories on a cron schedule. Each batch runs in its own transaction
// and lowers the authors' posts_count by what it removed.
type StorySweeper struct {
	posts repository.PostRepository
	batch int
	now   func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

func NewStorySweeper(posts repository.PostRepository, batch int) *StorySweeper {
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &StorySweeper{
		posts: posts,
		batch: batch,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce sweeps batches until a short batch shows nothing expired is left.
func (s *StorySweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.now()
	total := 0
	for {
		n, err := s.posts.DeleteExpired(ctx, now, models.PostTypeStory, s.batch)
		total += n
		observability.SweptPosts.Add(float64(n))
		if err != nil {
			observability.SweeperRuns.WithLabelValues("error").Inc()
			return total, err
		}
		if n < s.batch {
			break
		}
	}
	observability.SweeperRuns.WithLabelValues("ok").Inc()
	return total, nil
}

// Start schedules RunOnce. Overlapping runs are skipped.
func (s *StorySweeper) Start(schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, s.tick); err != nil {
		return err
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	c.Start()
	middleware.Logger.Info("story sweeper started", slog.String("schedule", schedule))
	return nil
}

func (s *StorySweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.RunOnce(ctx)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "story sweep failed", slog.Int("swept", n), slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		middleware.Logger.InfoContext(ctx, "expired stories swept", slog.Int("swept", n))
	}
}

// Stop halts scheduling and waits for a running sweep to finish or ctx to end.
func (s *StorySweeper) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
