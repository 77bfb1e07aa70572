package export_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/arango-client/internal/services/export"
	"github.com/unifiedui/arango-client/internal/testutil/mocks"
)

func waitFor(t *testing.T, q *export.Queue, id string, status export.JobStatus) *export.Job {
	t.Helper()

	var job *export.Job
	require.Eventually(t, func() bool {
		var ok bool
		job, ok = q.Get(id)
		return ok && job.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestQueue_RunsJobs(t *testing.T) {
	exporter := &mocks.MockExportService{}
	exporter.On("Export", mock.Anything, &export.Request{Collection: "users"}).
		Return(&export.Result{Collection: "users", Target: "users", Exported: 3}, nil)

	q := export.NewQueue(exporter, 4, nil)
	q.Start(2)
	defer q.Stop()

	job, err := q.Enqueue(&export.Request{Collection: "users"})
	require.NoError(t, err)
	assert.Equal(t, export.JobQueued, job.Status)
	assert.Len(t, job.ID, 36)

	done := waitFor(t, q, job.ID, export.JobSucceeded)
	require.NotNil(t, done.Result)
	assert.Equal(t, int64(3), done.Result.Exported)
	assert.NotNil(t, done.FinishedAt)
	assert.NoError(t, done.Error)
}

func TestQueue_RecordsFailure(t *testing.T) {
	exporter := &mocks.MockExportService{}
	exporter.On("Export", mock.Anything, mock.Anything).Return(nil, errors.New("sink unavailable"))

	q := export.NewQueue(exporter, 1, nil)
	q.Start(1)
	defer q.Stop()

	job, err := q.Enqueue(&export.Request{Collection: "users"})
	require.NoError(t, err)

	failed := waitFor(t, q, job.ID, export.JobFailed)
	assert.EqualError(t, failed.Error, "sink unavailable")
	assert.Nil(t, failed.Result)
}

func TestQueue_FullAndStopped(t *testing.T) {
	q := export.NewQueue(&mocks.MockExportService{}, 1, nil)

	_, err := q.Enqueue(&export.Request{Collection: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Size())

	_, err = q.Enqueue(&export.Request{Collection: "b"})
	assert.ErrorIs(t, err, export.ErrQueueFull)

	q.Stop()
	q.Stop()

	_, err = q.Enqueue(&export.Request{Collection: "c"})
	assert.ErrorIs(t, err, export.ErrQueueStopped)
}

func TestQueue_StopCancelsRunningExport(t *testing.T) {
	started := make(chan struct{})
	exporter := &mocks.MockExportService{}
	exporter.On("Export", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled)

	q := export.NewQueue(exporter, 1, nil)
	q.Start(1)

	job, err := q.Enqueue(&export.Request{Collection: "users"})
	require.NoError(t, err)
	<-started

	q.Stop()

	got, ok := q.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, export.JobFailed, got.Status)
	assert.ErrorIs(t, got.Error, context.Canceled)
}

func TestQueue_UnknownJob(t *testing.T) {
	q := export.NewQueue(&mocks.MockExportService{}, 1, nil)

	_, ok := q.Get("nope")

	assert.False(t, ok)
}
