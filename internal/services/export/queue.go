package export

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobStatus is the lifecycle state of a queued export.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// DefaultJobRetention is how many finished jobs a Queue remembers.
const DefaultJobRetention = 1000

var (
	// ErrQueueFull is returned by Enqueue when the buffer is full.
	ErrQueueFull = errors.New("export queue is full")
	// ErrQueueStopped is returned by Enqueue after Stop.
	ErrQueueStopped = errors.New("export queue is stopped")
)

// Job is a snapshot of one queued export.
type Job struct {
	ID         string     `json:"id"`
	Status     JobStatus  `json:"status"`
	Request    Request    `json:"-"`
	Result     *Result    `json:"result,omitempty"`
	Error      error      `json:"-"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Queue runs exports in the background on a fixed set of workers.
type Queue struct {
	exporter  Service
	jobs      chan string
	retention int
	logger    zerolog.Logger

	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	started bool
	stopped bool
	state   map[string]*Job
	// finished holds finished job ids, oldest first, for eviction.
	finished []string
}

// NewQueue creates a queue holding at most bufferSize pending jobs.
func NewQueue(exporter Service, bufferSize int, logger *zerolog.Logger) *Queue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		exporter:  exporter,
		jobs:      make(chan string, bufferSize),
		retention: DefaultJobRetention,
		logger:    l,
		ctx:       ctx,
		cancel:    cancel,
		state:     map[string]*Job{},
	}
}

// Start starts the queue workers. Calling it again is a no-op.
func (q *Queue) Start(workerCount int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.stopped {
		return
	}
	q.started = true

	if workerCount <= 0 {
		workerCount = 1
	}
	for i := 0; i < workerCount; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.ctx.Done():
			return
		case id, ok := <-q.jobs:
			if !ok {
				return
			}
			q.run(id)
		}
	}
}

func (q *Queue) run(id string) {
	q.mu.Lock()
	job := q.state[id]
	job.Status = JobRunning
	req := job.Request
	q.mu.Unlock()

	result, err := q.exporter.Export(q.ctx, &req)

	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now().UTC()
	job.FinishedAt = &now
	if err != nil {
		job.Status = JobFailed
		job.Error = err
		q.logger.Error().Err(err).Str("job_id", id).Str("collection", req.Collection).Msg("export job failed")
	} else {
		job.Status = JobSucceeded
		job.Result = result
		q.logger.Info().Str("job_id", id).Int64("exported", result.Exported).Msg("export job finished")
	}

	q.finished = append(q.finished, id)
	for len(q.finished) > q.retention {
		delete(q.state, q.finished[0])
		q.finished = q.finished[1:]
	}
}

// Enqueue schedules req and returns the queued job without waiting for it.
func (q *Queue) Enqueue(req *Request) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return nil, ErrQueueStopped
	}

	job := &Job{
		ID:        uuid.NewString(),
		Status:    JobQueued,
		Request:   *req,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case q.jobs <- job.ID:
	default:
		return nil, ErrQueueFull
	}

	q.state[job.ID] = job
	snapshot := *job
	return &snapshot, nil
}

// Get returns a snapshot of the job with the given id.
func (q *Queue) Get(id string) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.state[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// Stop cancels the running exports and waits for the workers. Jobs still
// pending are abandoned.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.cancel()
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

// Size returns the number of jobs waiting for a worker.
func (q *Queue) Size() int {
	return len(q.jobs)
}
