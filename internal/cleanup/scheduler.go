package cleanup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Intervals struct {
	Expired time.Duration
	Used    time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{Expired: 30 * time.Minute, Used: 6 * time.Hour}
}

type Scheduler struct {
	cleanup   *CleanupService
	intervals Intervals
	log       *zap.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewScheduler(cleanup *CleanupService, intervals Intervals, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cleanup:   cleanup,
		intervals: intervals,
		log:       log,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the expired-token job immediately and both jobs on their tickers.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting cleanup scheduler")
	s.wg.Add(2)
	go s.loop(ctx, "expired tokens", s.intervals.Expired, true, s.cleanup.CleanupExpiredTokens)
	go s.loop(ctx, "used tokens", s.intervals.Used, false, s.cleanup.CleanupUsedTokens)
}

// Stop blocks until both loops have returned. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.log.Info("stopping cleanup scheduler")
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, immediate bool, job func(context.Context) error) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	if immediate {
		if err := job(ctx); err != nil {
			s.log.Error("initial cleanup failed", zap.String("job", name), zap.Error(err))
		}
	}

	for {
		select {
		case <-ticker.C:
			if err := job(ctx); err != nil {
				s.log.Error("cleanup failed", zap.String("job", name), zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("cleanup stopped", zap.String("job", name))
			return
		case <-ctx.Done():
			s.log.Info("cleanup cancelled", zap.String("job", name))
			return
		}
	}
}
