package sweep

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fourviews/backend/internal/dispatcher"
	"github.com/fourviews/backend/internal/models"
	"github.com/fourviews/backend/internal/repositories"
)

const maxBackoff = 24 * time.Hour

// Config tunes the sweep job.
type Config struct {
	Interval     time.Duration // time between passes
	Batch        int           // max candidates per pass
	Workers      int           // max concurrent gateway calls per pass
	RetryCeiling int           // attempts after which a failed row is abandoned
	BackoffBase  time.Duration // first retry window; grows 5x per attempt
	PendingGrace time.Duration // age before a pending row counts as stuck
}

// Sweeper periodically re-attempts delivery for notifications left pending
// (dispatcher was down or its queue overflowed) or failed transiently. Rows
// at the retry ceiling stay failed permanently; they remain visible in the
// inbox, which is the source of truth regardless of push outcome.
type Sweeper struct {
	repo repositories.NotificationRepository
	disp *dispatcher.Dispatcher
	cfg  Config
}

// New creates a Sweeper.
func New(repo repositories.NotificationRepository, disp *dispatcher.Dispatcher, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 20
	}
	if cfg.RetryCeiling <= 0 {
		cfg.RetryCeiling = 5
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Minute
	}
	if cfg.PendingGrace <= 0 {
		cfg.PendingGrace = 30 * time.Second
	}
	return &Sweeper{repo: repo, disp: disp, cfg: cfg}
}

// Run executes passes on the configured interval until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("sweep job exiting")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single pass: load retry candidates, keep those whose
// backoff window has elapsed, and re-attempt them with bounded concurrency.
func (s *Sweeper) RunOnce(ctx context.Context) {
	candidates, err := s.repo.ListRetryable(s.cfg.RetryCeiling, s.cfg.Batch)
	if err != nil {
		log.Printf("sweep: listing retryable notifications: %v", err)
		return
	}

	now := time.Now()
	sem := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for _, candidate := range candidates {
		if !s.due(&candidate, now) {
			continue
		}

		if candidate.DeliveryState == models.StateFailed {
			// Re-enter the retry path. A lost compare-and-set means a
			// concurrent attempt owns this row; skip it.
			committed, err := s.repo.TransitionState(candidate.ID, models.StateFailed, models.StatePending, "", false)
			if err != nil {
				log.Printf("sweep: re-entering notification %d: %v", candidate.ID, err)
				continue
			}
			if !committed {
				continue
			}
		}

		id := candidate.ID
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			s.disp.Attempt(ctx, id, models.StatePending)
		}()
	}

	wg.Wait()
}

// due reports whether the notification's wait window has elapsed. Pending
// rows wait out a short grace period so the dispatcher's own first attempt
// is not raced; failed rows wait out an exponential backoff.
func (s *Sweeper) due(n *models.Notification, now time.Time) bool {
	switch n.DeliveryState {
	case models.StatePending:
		return now.Sub(n.UpdatedAt) >= s.cfg.PendingGrace
	case models.StateFailed:
		if n.LastAttemptAt == nil {
			return true
		}
		return now.Sub(*n.LastAttemptAt) >= s.backoff(n.DeliveryAttempts)
	}
	return false
}

// backoff returns the wait window after the given attempt count: base,
// base*5, base*25, ... capped at maxBackoff.
func (s *Sweeper) backoff(attempts int) time.Duration {
	window := s.cfg.BackoffBase
	for i := 1; i < attempts; i++ {
		window *= 5
		if window >= maxBackoff {
			return maxBackoff
		}
	}
	return window
}
