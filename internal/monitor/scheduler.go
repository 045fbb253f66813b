package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	"github.com/abodks10-ai/Pred-Guard/internal/shared/constants"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// Scheduler ticks over the active websites and dispatches due ones to a
// bounded worker pool. At most one check per website runs at a time; a
// manual check through CheckNow competes for the same slot and is refused
// with ErrCheckInProgress when the site is already being checked.
type Scheduler struct {
	websites website.Repository
	pipeline *Pipeline
	logger   *zap.Logger

	tick    time.Duration
	workers int

	mu       sync.Mutex
	inFlight map[int64]struct{}

	jobs chan *website.Website
	wg   sync.WaitGroup
}

func NewScheduler(websites website.Repository, pipeline *Pipeline, logger *zap.Logger, tick time.Duration, workers int) *Scheduler {
	if tick <= 0 {
		tick = constants.DefaultTickInterval
	}
	if workers <= 0 {
		workers = constants.DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		websites: websites,
		pipeline: pipeline,
		logger:   logger,
		tick:     tick,
		workers:  workers,
		inFlight: make(map[int64]struct{}),
		jobs:     make(chan *website.Website, workers*4),
	}
}

// Start runs the scheduling loop until ctx is cancelled, then drains the
// worker pool.
func (s *Scheduler) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.logger.Info("scheduler started",
		zap.Duration("tick", s.tick),
		zap.Int("workers", s.workers))

	// First sweep happens immediately, not one tick in.
	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			close(s.jobs)
			s.wg.Wait()
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep enqueues every active website whose next check is due. Sites already
// in flight or still queued are skipped; the slot is taken at enqueue time so
// a slow run never stacks a second job behind itself.
func (s *Scheduler) sweep(ctx context.Context) {
	sites, err := s.websites.FindActive(ctx)
	if err != nil {
		s.logger.Error("scheduler sweep failed", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	for _, site := range sites {
		if !site.Due(now) {
			continue
		}
		if !s.acquire(site.ID()) {
			continue
		}
		select {
		case s.jobs <- site:
		default:
			// Queue full; release and catch this site on the next tick.
			s.release(site.ID())
		}
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for site := range s.jobs {
		if ctx.Err() != nil {
			s.release(site.ID())
			continue
		}
		if _, err := s.pipeline.Run(ctx, site, check.TypeScheduled); err != nil {
			s.logger.Error("scheduled check failed",
				zap.Int64("website_id", site.ID()),
				zap.Error(err))
		}
		s.release(site.ID())
	}
}

// CheckNow runs a manual check synchronously. A check already running or
// queued for the website is not duplicated; callers get ErrCheckInProgress
// and should treat the in-flight run as theirs.
func (s *Scheduler) CheckNow(ctx context.Context, websiteID int64) (*check.MonitoringCheck, error) {
	site, err := s.websites.FindByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	if !s.acquire(site.ID()) {
		return nil, sharederrors.ErrCheckInProgress
	}
	defer s.release(site.ID())

	return s.pipeline.Run(ctx, site, check.TypeManual)
}

func (s *Scheduler) acquire(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *Scheduler) release(id int64) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
