package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingExecutor fails the first `failures` attempts of each job and
// reports every finished attempt on done.
type recordingExecutor struct {
	mu       sync.Mutex
	failures int
	attempts map[string]int
	done     chan *Job
}

func newRecordingExecutor(failures int) *recordingExecutor {
	return &recordingExecutor{failures: failures, attempts: map[string]int{}, done: make(chan *Job, 64)}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	e.attempts[job.ID.String()]++
	n := e.attempts[job.ID.String()]
	e.mu.Unlock()

	defer func() { e.done <- job }()
	if n <= e.failures {
		return errors.New("upstream unavailable")
	}
	return nil
}

func (e *recordingExecutor) attemptsOf(job *Job) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts[job.ID.String()]
}

func waitFor(t *testing.T, ch <-chan *Job, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d attempts", i, n)
		}
	}
}

func TestJobLifecycle(t *testing.T) {
	job := NewWarmJob(55, "2025-12-31", 1)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, JobKindWarmCache, job.Kind)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.Equal(t, "boom", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Empty(t, job.Error)
	require.NotNil(t, job.NextRetryAt)

	job.Start()
	job.Fail("boom again")
	assert.False(t, job.ShouldRetry())

	prune := NewPruneJob(0)
	prune.Start()
	prune.Complete()
	assert.Equal(t, JobStatusSuccess, prune.Status)
	assert.NotNil(t, prune.CompletedAt)
}

func TestScheduler_RunsJobs(t *testing.T) {
	exec := newRecordingExecutor(0)
	s := NewScheduler(Config{Workers: 2, JobTimeout: time.Second}, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	jobs := []*Job{NewWarmJob(38, "2025-12-30", 0), NewWarmJob(41, "2025-12-30", 0), NewPruneJob(0)}
	for _, job := range jobs {
		require.NoError(t, s.SubmitJob(job))
	}
	waitFor(t, exec.done, len(jobs))

	for _, job := range jobs {
		assert.Equal(t, 1, exec.attemptsOf(job))
	}
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	exec := newRecordingExecutor(2)
	s := NewScheduler(Config{Workers: 1, RetryDelay: time.Millisecond}, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	job := NewWarmJob(55, "2025-12-31", 3)
	require.NoError(t, s.SubmitJob(job))
	waitFor(t, exec.done, 3)

	assert.Equal(t, 3, exec.attemptsOf(job))
	assert.Equal(t, 2, job.RetryCount)
}

func TestScheduler_GivesUpAfterMaxRetries(t *testing.T) {
	exec := newRecordingExecutor(10)
	s := NewScheduler(Config{Workers: 1, RetryDelay: time.Millisecond}, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop(context.Background()) }()

	job := NewWarmJob(55, "2025-12-31", 1)
	require.NoError(t, s.SubmitJob(job))
	waitFor(t, exec.done, 2)

	select {
	case <-exec.done:
		t.Fatal("job retried past its limit")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 2, exec.attemptsOf(job))
}

func TestScheduler_SubmitErrors(t *testing.T) {
	s := NewScheduler(Config{Workers: 1, QueueSize: 1}, newRecordingExecutor(0), zap.NewNop())
	assert.ErrorIs(t, s.SubmitJob(NewPruneJob(0)), ErrSchedulerNotRunning)

	// Mark running without workers so the queue stays full.
	s.isRunning = true
	require.NoError(t, s.SubmitJob(NewPruneJob(0)))
	assert.ErrorIs(t, s.SubmitJob(NewPruneJob(0)), ErrJobQueueFull)
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(Config{Workers: 2}, newRecordingExecutor(0), zap.NewNop())
	assert.NoError(t, s.Stop(context.Background()))

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
	assert.ErrorIs(t, s.SubmitJob(NewPruneJob(0)), ErrSchedulerNotRunning)
}
