// Package scheduler drives periodic crawl runs.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campusfolio/platform/internal/metrics"
	"github.com/campusfolio/platform/internal/records"
)

// Runner is the unit of work a tick triggers.
type Runner interface {
	RunAll(ctx context.Context) ([]records.CrawlResult, error)
}

// Scheduler fires the runner on a fixed interval. Each tick runs in its own
// goroutine so the loop keeps ticking; the running mutex guarantees runs
// never overlap, and a tick arriving while the previous run is still in
// flight is dropped.
type Scheduler struct {
	interval time.Duration
	runner   Runner
	logger   *zap.Logger

	running sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a Scheduler.
func New(interval time.Duration, runner Runner, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		interval: interval,
		runner:   runner,
		logger:   logger.Named("scheduler"),
	}
}

// Start launches the tick loop. The first run fires immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
		s.spawnTick(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				s.spawnTick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it and any in-flight run to exit. The
// in-flight run observes the canceled context.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.wg.Wait()
}

func (s *Scheduler) spawnTick(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tick(ctx)
	}()
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.Warn("previous crawl run still in flight, skipping tick")
		metrics.ObserveTickSkipped()
		return
	}
	defer s.running.Unlock()

	start := time.Now()
	results, err := s.runner.RunAll(ctx)
	if err != nil {
		s.logger.Error("crawl run failed", zap.Error(err))
		return
	}

	var created, skipped int
	for _, r := range results {
		created += r.Created
		skipped += r.Skipped
	}
	s.logger.Info("crawl run complete",
		zap.Int("tenants", len(results)),
		zap.Int("created", created),
		zap.Int("skipped", skipped),
		zap.Duration("took", time.Since(start)))
}
