package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is a named unit of scheduled work.
type Job struct {
	Name string
	Spec string // standard 5-field cron expression
	Run  func(ctx context.Context) error
}

// Scheduler runs background jobs on cron schedules. The overdue accrual
// sweep is registered here; each run gets a fresh context derived from the
// scheduler's base context.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Register adds a job. Returns an error when the cron spec cannot be parsed.
func (s *Scheduler) Register(job Job) error {
	_, err := s.cron.AddFunc(job.Spec, func() {
		s.logger.Info("scheduled job starting", "job", job.Name)
		if err := job.Run(s.ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", job.Name, "error", err)
			return
		}
		s.logger.Info("scheduled job finished", "job", job.Name)
	})
	return err
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
