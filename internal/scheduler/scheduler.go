// Package scheduler runs the background jobs: quote refresh, daily chip sync
// and price alert checks. Built on robfig/cron with seconds-precision specs.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one schedulable unit of background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobStatus is the last known state of a registered job
type JobStatus struct {
	Name      string     `json:"name"`
	Spec      string     `json:"spec"`
	Runs      int64      `json:"runs"`
	Failures  int64      `json:"failures"`
	LastRun   *time.Time `json:"last_run"`
	LastError string     `json:"last_error,omitempty"`
}

type registeredJob struct {
	job    Job
	spec   string
	status JobStatus
}

// Scheduler wraps a cron runner with job tracking
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*registeredJob
}

// New creates a scheduler. Specs use the 6-field format with seconds, plus
// the @every shorthand.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
		jobs: make(map[string]*registeredJob),
	}
}

// Register schedules a job under the given cron spec
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	rj := &registeredJob{
		job:    job,
		spec:   spec,
		status: JobStatus{Name: job.Name(), Spec: spec},
	}
	s.jobs[job.Name()] = rj
	s.mu.Unlock()

	_, err := s.cron.AddFunc(spec, func() { s.run(rj) })
	if err != nil {
		return err
	}
	s.log.Info().Str("job", job.Name()).Str("spec", spec).Msg("Job registered")
	return nil
}

func (s *Scheduler) run(rj *registeredJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	err := rj.job.Run(ctx)

	s.mu.Lock()
	rj.status.Runs++
	now := time.Now()
	rj.status.LastRun = &now
	if err != nil {
		rj.status.Failures++
		rj.status.LastError = err.Error()
	} else {
		rj.status.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("job", rj.job.Name()).
			Dur("elapsed", time.Since(start)).Msg("Job failed")
		return
	}
	s.log.Debug().Str("job", rj.job.Name()).
		Dur("elapsed", time.Since(start)).Msg("Job completed")
}

// RunNow executes a registered job immediately, outside its schedule
func (s *Scheduler) RunNow(name string) bool {
	s.mu.Lock()
	rj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return false
	}
	go s.run(rj)
	return true
}

// Status returns the state of every registered job
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, rj := range s.jobs {
		out = append(out, rj.status)
	}
	return out
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}
