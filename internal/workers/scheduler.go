package workers

import (
	"context"
	"sync"
	"time"

	"socialflow/internal/domain/job"
	"socialflow/internal/repository"
	"socialflow/pkg/logger"

	"github.com/google/uuid"
)

// SweepScheduler periodically enqueues archive sweep jobs. The sweep
// itself runs through the pool like any other job, so a fleet of workers
// shares the load and the claim guard prevents double sweeps.
type SweepScheduler struct {
	jobs     repository.JobRepository
	interval time.Duration
	log      *logger.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewSweepScheduler(jobs repository.JobRepository, interval time.Duration, log *logger.Logger) *SweepScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepScheduler{
		jobs:     jobs,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

func (s *SweepScheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *SweepScheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *SweepScheduler) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if err := s.jobs.Enqueue(context.Background(), &job.Job{
				JobType:     job.TypeArchiveSweep,
				WorkspaceID: uuid.Nil,
				AggregateID: "sweep",
				Payload:     []byte("{}"),
			}); err != nil {
				s.log.Errorf("enqueue archive sweep failed: %v", err)
			}
		}
	}
}
