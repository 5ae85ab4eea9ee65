// Package jobs runs the portal's periodic background work on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/observability"
)

// Job is one unit of scheduled work. It should return promptly once ctx ends.
type Job func(ctx context.Context) error

// Scheduler manages named cron jobs. Schedules are evaluated in UTC and
// accept an optional seconds field.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	metrics *observability.Metrics
	timeout time.Duration
	base    context.Context
	cancel  context.CancelFunc

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// NewScheduler creates a scheduler whose job runs are bounded by timeout.
func NewScheduler(logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) *Scheduler {
	base, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(
				cron.SkipIfStillRunning(cron.DefaultLogger),
				cron.Recover(cron.DefaultLogger),
			),
		),
		logger:  logger,
		metrics: metrics,
		timeout: timeout,
		base:    base,
		cancel:  cancel,
		jobs:    make(map[string]cron.EntryID),
	}
}

// AddJob registers job under name. Examples of expr: "0 0 2 * * *",
// "@every 15s", "@monthly".
func (s *Scheduler) AddJob(name, expr string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}
	id, err := s.cron.AddFunc(expr, func() { s.Run(name, job) })
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}
	s.jobs[name] = id
	s.logger.Info("added scheduled job", zap.String("job_name", name), zap.String("cron_expr", expr))
	return nil
}

// Run executes job once with the scheduler's timeout and bookkeeping.
func (s *Scheduler) Run(name string, job Job) {
	ctx := s.base
	var cancel context.CancelFunc = func() {}
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	start := time.Now()
	err := job(ctx)
	s.metrics.RecordJob(name, err)
	if err != nil {
		s.logger.Error("scheduled job failed",
			zap.String("job_name", name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	s.logger.Debug("scheduled job completed",
		zap.String("job_name", name),
		zap.Duration("duration", time.Since(start)))
}

// Start begins firing jobs.
func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler", zap.Int("jobs", len(s.JobNames())))
	s.cron.Start()
}

// Stop cancels running jobs and returns a context done once they return.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	s.cancel()
	return s.cron.Stop()
}

// JobNames lists registered jobs in name order.
func (s *Scheduler) JobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
