package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkingPool runs submitted jobs on a fixed number of goroutines. Jobs
// receive the context passed to Start, so they observe shutdown.
type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job
	done       chan struct{}
	stopOnce   sync.Once
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
		done:       make(chan struct{}),
	}
}

// SubmitJob enqueues job, blocking while the queue is full.
func (p *WorkingPool) SubmitJob(ctx context.Context, job Job) error {
	select {
	case <-p.done:
		return ErrPoolStopped
	default:
	}

	select {
	case p.jobChan <- job:
		return nil
	case <-p.done:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAfter enqueues job once delay has elapsed. A job whose timer fires
// after shutdown is dropped.
func (p *WorkingPool) SubmitAfter(delay time.Duration, job Job) {
	time.AfterFunc(delay, func() {
		if err := p.SubmitJob(context.Background(), job); err != nil {
			slog.Warn("[WorkingPool] delayed job dropped", "error", err)
		}
	})
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup
	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	<-ctx.Done()
	slog.Info("[WorkingPool] Shutdown signaled")
	p.stopOnce.Do(func() { close(p.done) })

	workerWg.Wait()
	slog.Info("[WorkingPool] All workers stopped")
}

func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()

	for {
		select {
		case job := <-p.jobChan:
			p.safeExecution(ctx, job, id)
		case <-p.done:
			return
		}
	}
}

func (p *WorkingPool) safeExecution(ctx context.Context, job Job, workerID int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job: %v", r)
			slog.Error("[WorkingPool] panic recovered in job", "worker_id", workerID, "panic", r)
		}
	}()

	if err = job(ctx); err != nil {
		slog.Error("[WorkingPool] error executing job", "worker_id", workerID, "error", err)
	}
	return err
}
