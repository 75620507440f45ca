package workers

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/farellandr/coursehub/internal/logger"
)

// UserSweeper deactivates users that have been inactive for too long.
type UserSweeper interface {
	DeactivateInactiveUsers(ctx context.Context) (int, error)
}

// Scheduler runs the periodic maintenance jobs. Schedules are standard
// five-field cron expressions evaluated in UTC.
type Scheduler struct {
	cron    *cron.Cron
	sweeper UserSweeper
	timeout time.Duration
}

func NewScheduler(sweeper UserSweeper) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		sweeper: sweeper,
		timeout: 10 * time.Minute,
	}
}

func (s *Scheduler) RegisterDeactivation(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.runDeactivation)
	if err != nil {
		return err
	}
	logger.Info("maintenance job registered", "job", "deactivate_inactive_users", "schedule", schedule)
	return nil
}

func (s *Scheduler) runDeactivation() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ctx = logger.WithRequestID(ctx, "cron-deactivate-"+time.Now().UTC().Format("20060102T150405"))

	n, err := s.sweeper.DeactivateInactiveUsers(ctx)
	logger.WorkerLog("scheduler", "deactivate_inactive_users", err, "deactivated", n)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("scheduler stop timed out")
	}
}
