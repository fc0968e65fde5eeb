package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"socialflow/internal/domain/job"
	"socialflow/internal/repository"
	flow_errors "socialflow/pkg/errors"
	"socialflow/pkg/logger"
)

// HandlerFunc processes one claimed job. Handlers must be idempotent:
// the queue is at-least-once and a crashed worker leaves the job to be
// retried.
type HandlerFunc func(ctx context.Context, j job.Job) error

// Pool polls the jobs table and dispatches claimed jobs to registered
// handlers. Claiming goes through a conditional status update, so
// concurrent pools never process the same job twice.
type Pool struct {
	jobs       repository.JobRepository
	handlers   map[string]HandlerFunc
	interval   time.Duration
	batchSize  int
	maxRetries int
	log        *logger.Logger
	clock      func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewPool(jobs repository.JobRepository, interval time.Duration, batchSize, maxRetries int, log *logger.Logger) *Pool {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 10
	}
	return &Pool{
		jobs:       jobs,
		handlers:   make(map[string]HandlerFunc),
		interval:   interval,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		log:        log,
		clock:      time.Now,
		stopChan:   make(chan struct{}),
	}
}

func (p *Pool) Register(jobType string, fn HandlerFunc) {
	p.handlers[jobType] = fn
}

func (p *Pool) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Pool) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.ProcessBatch(context.Background())
		}
	}
}

// ProcessBatch claims and runs up to batchSize due jobs. Exposed so
// tests can drive the pool without the ticker.
func (p *Pool) ProcessBatch(ctx context.Context) {
	pending, err := p.jobs.GetPending(ctx, p.batchSize)
	if err != nil {
		p.log.Errorf("job poll failed: %v", err)
		return
	}
	for _, j := range pending {
		p.processJob(ctx, j)
	}
}

func (p *Pool) processJob(ctx context.Context, j job.Job) {
	if err := p.jobs.MarkProcessing(ctx, j.ID); err != nil {
		// Lost the claim to another pool.
		if errors.Is(err, flow_errors.ErrConflict) {
			return
		}
		p.log.Errorf("claim of job %s failed: %v", j.ID, err)
		return
	}

	fn, ok := p.handlers[j.JobType]
	if !ok {
		p.fail(ctx, j, "no handler for job type "+j.JobType)
		return
	}

	if err := fn(ctx, j); err != nil {
		if j.RetryCount+1 >= p.maxRetries {
			p.fail(ctx, j, err.Error())
			return
		}
		runAfter := p.clock().Add(backoff(j.RetryCount))
		if err := p.jobs.Reschedule(ctx, j.ID, runAfter); err != nil {
			p.log.Errorf("reschedule of job %s failed: %v", j.ID, err)
		}
		return
	}

	if err := p.jobs.MarkCompleted(ctx, j.ID); err != nil {
		p.log.Errorf("completion of job %s failed: %v", j.ID, err)
	}
}

func (p *Pool) fail(ctx context.Context, j job.Job, reason string) {
	p.log.Errorf("job %s (%s) permanently failed: %s", j.ID, j.JobType, reason)
	if err := p.jobs.MarkFailed(ctx, j.ID, reason); err != nil {
		p.log.Errorf("marking job %s failed errored: %v", j.ID, err)
	}
}

// backoff doubles per attempt from 1s, capped at 5 minutes.
func backoff(retryCount int) time.Duration {
	d := time.Second << uint(retryCount)
	if d <= 0 || d > 5*time.Minute {
		return 5 * time.Minute
	}
	return d
}
