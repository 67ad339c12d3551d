// Package schedulersvc runs the periodic jobs of the app.
package schedulersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/student"
)

var jobTimeout = 5 * time.Minute

// Sweeper runs inactivity checks.
type Sweeper interface {
	CheckInactivity(ctx context.Context) (student.SweepResult, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger core.Logger
}

func New(logger core.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		logger: logger,
	}
}

// ScheduleInactivityCheck runs the inactivity check on the cron spec (e.g. "15 2 * * *").
func (s *Scheduler) ScheduleInactivityCheck(spec string, svc Sweeper) error {
	_, err := s.cron.AddFunc(spec, func() { s.runInactivityCheck(svc) })
	return errors.Wrapf(err, "scheduling inactivity check %q", spec)
}

func (s *Scheduler) runInactivityCheck(svc Sweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := svc.CheckInactivity(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("scheduled inactivity check: %v", err), err)
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the scheduler and waits for the running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries returns the number of scheduled jobs.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }
