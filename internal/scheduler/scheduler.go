// Package scheduler runs background maintenance jobs on cron and interval
// schedules.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler wraps gocron with job registration helpers.
type Scheduler struct {
	inner gocron.Scheduler
	log   *slog.Logger
}

// New creates a stopped scheduler; call Start after registering jobs.
func New(log *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(newGocronLogger(log)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{inner: s, log: log.With("component", "scheduler")}, nil
}

// AddCronJob registers a job on a cron expression.
func (s *Scheduler) AddCronJob(name, cronExpr string, job func()) error {
	_, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	s.log.Info("job scheduled", "name", name, "cron", cronExpr)
	return nil
}

// AddIntervalJob registers a job that runs every interval.
func (s *Scheduler) AddIntervalJob(name string, interval time.Duration, job func()) error {
	_, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	s.log.Info("job scheduled", "name", name, "interval", interval)
	return nil
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.inner.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	if err := s.inner.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	return nil
}

// gocronLogger adapts slog to the gocron.Logger interface.
type gocronLogger struct {
	log *slog.Logger
}

func newGocronLogger(log *slog.Logger) gocron.Logger {
	return &gocronLogger{log: log.With("component", "gocron")}
}

func (l *gocronLogger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *gocronLogger) Error(msg string, args ...any) { l.log.Error(msg, args...) }
func (l *gocronLogger) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *gocronLogger) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }
