package worker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type (
	Job  func(ctx context.Context) error
	Pool interface {
		Start(ctx context.Context, managerWg *sync.WaitGroup)
		SubmitJob(ctx context.Context, job Job) error
		SubmitAfter(delay time.Duration, job Job)
	}
)

var ErrPoolStopped = errors.New("working pool stopped")
