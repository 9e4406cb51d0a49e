package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// ThreadSink receives every refreshed thread, or the error that prevented it.
type ThreadSink func(detail *model.ThreadDetail, err error)

// RefreshService is the page-level listener for the thread-changed signal. It
// reloads the thread whenever the signal fires, on manual request and,
// optionally, on a fixed interval.
type RefreshService struct {
	threads   *ThreadService
	changes   *ChangeBroker
	subject   model.Subject
	interval  time.Duration
	sink      ThreadSink
	refreshCh chan chan struct{}
}

// AdaptiveRefresh selects an interval derived from the thread's most recent
// comment activity instead of a fixed period.
const AdaptiveRefresh time.Duration = -1

// NewRefreshService creates a RefreshService. An interval of zero disables
// periodic refresh; AdaptiveRefresh re-derives the interval after every load.
func NewRefreshService(
	threads *ThreadService,
	changes *ChangeBroker,
	subject model.Subject,
	interval time.Duration,
	sink ThreadSink,
) *RefreshService {
	return &RefreshService{
		threads:   threads,
		changes:   changes,
		subject:   subject,
		interval:  interval,
		sink:      sink,
		refreshCh: make(chan chan struct{}),
	}
}

// Start loads the thread once, then reloads it on every trigger. It blocks
// until the context is canceled or the broker is closed.
func (s *RefreshService) Start(ctx context.Context) {
	changed, unsubscribe := s.changes.Subscribe()
	defer unsubscribe()

	next := s.refresh(ctx, "initial")

	var timer *time.Timer
	var tick <-chan time.Time
	if next > 0 {
		timer = time.NewTimer(next)
		defer timer.Stop()
		tick = timer.C
	}
	rearm := func(d time.Duration) {
		if timer == nil || d <= 0 {
			return
		}
		timer.Stop()
		timer.Reset(d)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh service stopped")
			return
		case _, ok := <-changed:
			if !ok {
				slog.Info("change broker closed, refresh service stopped")
				return
			}
			rearm(s.refresh(ctx, "thread changed"))
		case <-tick:
			rearm(s.refresh(ctx, "interval"))
		case done := <-s.refreshCh:
			rearm(s.refresh(ctx, "manual"))
			close(done)
		}
	}
}

// RefreshNow reloads the thread and blocks until the sink has been called or
// the context is canceled.
func (s *RefreshService) RefreshNow(ctx context.Context) error {
	done := make(chan struct{})

	select {
	case s.refreshCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refresh loads and publishes the thread, returning the delay until the next
// periodic refresh (zero when periodic refresh is off).
func (s *RefreshService) refresh(ctx context.Context, reason string) time.Duration {
	detail, err := s.threads.Load(ctx, s.subject)
	if err != nil {
		slog.Error("thread refresh failed", "reason", reason, "error", err)
	} else {
		slog.Debug("thread refreshed", "reason", reason, "comments", len(detail.Flatten()))
	}
	s.sink(detail, err)

	if s.interval != AdaptiveRefresh {
		return max(s.interval, 0)
	}
	next := AdaptiveInterval(detail, time.Now())
	slog.Debug("next refresh scheduled", "in", next)
	return next
}
