package scheduler

import (
	"context"
	"sync"
	"time"

	"feedbox/backend/internal/service"
	"feedbox/backend/pkg/logger"
)

// Scheduler triggers a bulk refresh on a fixed interval. It is the external
// trigger for "refresh all": results are logged and discarded.
type Scheduler struct {
	refreshService service.RefreshService
	interval       time.Duration
	stopCh         chan struct{}
	wg             sync.WaitGroup
	cancelFunc     context.CancelFunc // cancels the current refresh operation
	mu             sync.Mutex         // protects cancelFunc
}

func New(refreshService service.RefreshService, interval time.Duration) *Scheduler {
	return &Scheduler{
		refreshService: refreshService,
		interval:       interval,
		stopCh:         make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("scheduler started", "interval", s.interval)
}

func (s *Scheduler) Stop() {
	// Cancel any ongoing refresh operation first
	s.mu.Lock()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	logger.Info("scheduler stopped")
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.refresh()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) refresh() {
	// Use the same timeout as the refresh interval
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)

	// Store cancel function so Stop() can cancel ongoing refresh
	s.mu.Lock()
	s.cancelFunc = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.cancelFunc = nil
		s.mu.Unlock()
	}()

	logger.Info("starting scheduled feed refresh")
	results, err := s.refreshService.RefreshAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("scheduled refresh cancelled")
			return
		}
		logger.Error("scheduled refresh", "error", err)
		return
	}

	failed := 0
	added := 0
	for _, result := range results {
		if result.Error != "" {
			failed++
			continue
		}
		added += result.NewArticles
	}
	logger.Info("scheduled feed refresh completed", "feeds", len(results), "new_articles", added, "failed", failed)
}
