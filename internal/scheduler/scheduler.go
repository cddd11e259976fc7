// Package scheduler wraps robfig/cron/v3 with a small named-job registry:
// duplicate names are rejected, jobs can be run synchronously by name, and
// a failing or panicking job is logged and reported without ever taking
// down the scheduler.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"boardsync/internal/logging"
	"boardsync/internal/reporting"
	"boardsync/pkg/utils"
)

// Job is a named, schedulable unit of work.
type Job struct {
	Name     string
	CronSpec string
	Fn       func(ctx context.Context) error
	entryID  cron.EntryID
}

// Scheduler is a cron registry rejecting duplicate job names.
type Scheduler struct {
	mu            sync.Mutex
	cron          *cron.Cron
	jobs          map[string]*Job
	logger        logging.Logger
	reporter      *reporting.Collector
	shutdownGrace time.Duration
	rootCancel    context.CancelFunc
	rootCtx       context.Context
}

func New(logger logging.Logger, reporter *reporting.Collector, shutdownGrace time.Duration) *Scheduler {
	rootCtx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:          cron.New(),
		jobs:          map[string]*Job{},
		logger:        logger,
		reporter:      reporter,
		shutdownGrace: shutdownGrace,
		rootCtx:       rootCtx,
		rootCancel:    cancel,
	}
}

// Schedule registers a named function on the given cron spec. Registering a
// name twice returns an error rather than silently replacing the job.
func (s *Scheduler) Schedule(name, cronSpec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q is already scheduled", name)
	}

	job := &Job{Name: name, CronSpec: cronSpec, Fn: fn}
	entryID, err := s.cron.AddFunc(cronSpec, s.wrap(job))
	if err != nil {
		return fmt.Errorf("invalid cron spec %q for job %q: %w", cronSpec, name, err)
	}
	job.entryID = entryID
	s.jobs[name] = job
	return nil
}

// wrap guards a job's cron.Job.Run with a recover() shim plus explicit error
// capture, since job functions return error rather than panicking, and a
// panicking job must never crash the scheduler's own goroutine.
func (s *Scheduler) wrap(job *Job) func() {
	return func() {
		logger := s.logger.WithFields(map[string]interface{}{
			"job":    job.Name,
			"run_id": utils.NewRunID(),
		})

		defer func() {
			if r := recover(); r != nil {
				logger.Error("scheduled job panicked", map[string]interface{}{"panic": r})
				s.reporter.ReportPanic(job.Name, r)
			}
		}()

		if err := job.Fn(s.rootCtx); err != nil {
			logger.Error("scheduled job failed", map[string]interface{}{"error": err.Error()})
			s.reporter.ReportSourceFailure(job.Name, err)
		}
	}
}

// ListJobs returns every registered job's name and cron spec.
func (s *Scheduler) ListJobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out
}

// RunJob runs a registered job synchronously, bypassing cron entirely.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no such job: %s", name)
	}
	return job.Fn(ctx)
}

// Start begins the cron runner's own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels the root context passed to all in-flight jobs and waits
// (bounded by shutdownGrace) for cron's own stop, which blocks until
// running jobs return.
func (s *Scheduler) Stop() {
	s.rootCancel()

	done := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownGrace):
		s.logger.Warn("scheduler shutdown grace period elapsed with jobs still running", nil)
	}
}

// ClearJobs removes every registered job, stopping the underlying cron
// runner and replacing it with a fresh one.
func (s *Scheduler) ClearJobs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Stop()
	s.cron = cron.New()
	s.jobs = map[string]*Job{}
}
