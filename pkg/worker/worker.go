package worker

import (
	"context"
	"sync"

	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/pkg/errors"
)

type WorkerHandler = func(workerIndex int, job interface{})

var ErrStopped = errors.New("worker manager stopped")

// WorkerManager distributes jobs over a fixed pool of goroutines. Jobs are
// published with Enqueue; the pool runs until Exit is called.
type WorkerManager struct {
	numberOfWorker int
	jobChannel     chan interface{}
	quit           chan struct{}
	do             WorkerHandler
	waiter         sync.WaitGroup
	once           sync.Once
}

func NewWorkerManager(bufferSize, numberOfWorkers int) *WorkerManager {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &WorkerManager{
		numberOfWorker: numberOfWorkers,
		jobChannel:     make(chan interface{}, bufferSize),
		quit:           make(chan struct{}),
	}
}

// GetUnreadCount is the number of jobs buffered but not yet picked up.
func (w *WorkerManager) GetUnreadCount() int64 {
	return int64(len(w.jobChannel))
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

// Enqueue blocks until a worker slot is free, ctx is done or the manager exits.
func (w *WorkerManager) Enqueue(ctx context.Context, val interface{}) error {
	select {
	case w.jobChannel <- val:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return ErrStopped
	}
}

// Start launches the workers and returns immediately.
func (w *WorkerManager) Start() error {
	if w.do == nil {
		return errors.New("worker handler is required")
	}
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for {
				select {
				case job := <-w.jobChannel:
					w.do(index, job)
				case <-w.quit:
					return
				}
			}
		}(i)
	}
	return nil
}

// Exit stops the workers after their current job and waits for them.
// Jobs still buffered are dropped.
func (w *WorkerManager) Exit() {
	w.once.Do(func() {
		logger.Info("worker manager is shutting down", "workers", w.numberOfWorker, "dropped", w.GetUnreadCount())
		close(w.quit)
	})
	w.waiter.Wait()
}
