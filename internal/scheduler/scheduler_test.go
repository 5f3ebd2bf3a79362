package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(zerolog.Nop())
	err := s.Register("not a spec", &countingJob{name: "bad"})
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "test"}
	require.NoError(t, s.Register("@every 1h", job))

	assert.False(t, s.RunNow("missing"))
	assert.True(t, s.RunNow("test"))

	require.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStatusTracksFailures(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "flaky", err: errors.New("boom")}
	require.NoError(t, s.Register("@every 1h", job))

	s.RunNow("flaky")
	require.Eventually(t, func() bool {
		status := s.Status()
		return len(status) == 1 && status[0].Failures == 1
	}, time.Second, 10*time.Millisecond)

	status := s.Status()
	assert.Equal(t, "flaky", status[0].Name)
	assert.Equal(t, int64(1), status[0].Runs)
	assert.Equal(t, "boom", status[0].LastError)
	assert.NotNil(t, status[0].LastRun)
}

func TestScheduledExecution(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "fast"}
	require.NoError(t, s.Register("@every 100ms", job))

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, 2*time.Second, 20*time.Millisecond)
}
