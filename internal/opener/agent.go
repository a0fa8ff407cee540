// Package opener is the workstation agent that drains the link outbox and
// opens each composed messaging link in the local client.
package opener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/internal/queue"
	"github.com/gesthub/gesthub/pkg/logger"
	"github.com/gesthub/gesthub/pkg/prom"
	"github.com/gesthub/gesthub/pkg/redis"
	"github.com/gesthub/gesthub/pkg/worker"
	"github.com/pkg/errors"
)

const (
	OpenTimeout     = 10 * time.Second
	ReportInterval  = time.Minute
	ShutdownTimeout = 30 * time.Second
)

type Config struct {
	Queue queue.QueueConfig
	// Consumers is the number of stream consumers, Workers the size of the
	// pool that runs the launcher.
	Consumers int
	Workers   int
}

type Agent struct {
	adapter     redis.RedisAdapter
	config      Config
	launcher    Launcher
	idempotency *IdempotencyService
	metrics     *ServiceMetrics
	worker      *worker.WorkerManager
	queues      []*queue.Queue
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewAgent(adapter redis.RedisAdapter, config Config, launcher Launcher, idempotency *IdempotencyService) *Agent {
	if config.Consumers < 1 {
		config.Consumers = 1
	}
	if config.Workers < 1 {
		config.Workers = config.Consumers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Agent{
		adapter:     adapter,
		config:      config,
		launcher:    launcher,
		idempotency: idempotency,
		metrics:     NewServiceMetrics(),
		worker:      worker.NewWorkerManager(config.Workers, config.Workers),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (a *Agent) Metrics() *ServiceMetrics {
	return a.metrics
}

// Backlog is the number of outbox entries handed to the pool and not yet
// picked up by a worker.
func (a *Agent) Backlog() int64 {
	return a.worker.GetUnreadCount()
}

func (a *Agent) Start() error {
	a.worker.SetWorker(a.workerHandler)
	if err := a.worker.Start(); err != nil {
		return err
	}

	for i := 0; i < a.config.Consumers; i++ {
		cfg := a.config.Queue
		cfg.ConsumerName = fmt.Sprintf("%s-%d", cfg.ConsumerName, i)

		q, err := queue.NewQueue(a.adapter, cfg)
		if err != nil {
			return errors.Wrapf(err, "create consumer %d", i)
		}
		if err := q.Consume(a.messageHandler); err != nil {
			return errors.Wrapf(err, "start consumer %d", i)
		}
		a.queues = append(a.queues, q)
	}

	a.wg.Add(1)
	go a.reporter()

	logger.Info("opener agent started", "outbox", a.config.Queue.Name, "consumers", len(a.queues), "workers", a.config.Workers)
	return nil
}

func (a *Agent) Stop() {
	logger.Info("opener agent shutting down")
	a.cancel()

	var wg sync.WaitGroup
	for i, q := range a.queues {
		wg.Add(1)
		go func(index int, q *queue.Queue) {
			defer wg.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("error stopping consumer", "consumer", index, "error", err)
			}
		}(i, q)
	}
	wg.Wait()

	a.worker.Exit()
	a.wg.Wait()
	a.report()
	logger.Info("opener agent stopped")
}

func (a *Agent) reporter() {
	defer a.wg.Done()

	ticker := time.NewTicker(ReportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.report()
		case <-a.ctx.Done():
			return
		}
	}
}

func (a *Agent) report() {
	s := a.metrics.GetStats()
	logger.Info("opener stats",
		"opened", s.Opened,
		"failed", s.Failed,
		"skipped", s.Skipped,
		"avg_duration_ms", s.AvgDuration.Milliseconds(),
		"uptime_seconds", s.UptimeSeconds,
		"backlog", a.Backlog())

	if len(a.queues) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if stats, err := a.queues[0].GetStats(ctx); err == nil {
		logger.Info("outbox stats", "total", stats.TotalMessages, "pending", stats.PendingMessages, "dead_letters", stats.DeadLetters)
	}
}

type job struct {
	msg    *queue.Message
	result chan error
	ctx    context.Context
}

// messageHandler hands the entry to the pool and waits for the outcome so
// the consumer acks only opened links.
func (a *Agent) messageHandler(ctx context.Context, msg *queue.Message) error {
	ctx, cancel := context.WithTimeout(ctx, OpenTimeout)
	defer cancel()

	j := &job{msg: msg, result: make(chan error, 1), ctx: ctx}
	if err := a.worker.Enqueue(ctx, j); err != nil {
		return errors.Wrap(err, "enqueue link")
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for worker")
	}
}

func (a *Agent) workerHandler(workerIndex int, v interface{}) {
	j, ok := v.(*job)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}
	if j.ctx.Err() != nil {
		logger.Warn("job expired before processing", "worker", workerIndex, "entry", j.msg.ID)
		return
	}
	// result is buffered; the waiting handler may already be gone
	j.result <- a.Process(j.ctx, j.msg)
}

// Process opens the link of one outbox entry. A nil return acks the entry.
func (a *Agent) Process(ctx context.Context, msg *queue.Message) error {
	var event model.LinkEvent
	if err := msg.Decode(&event); err != nil || event.URL == "" {
		a.metrics.RecordFailure()
		logger.Error("malformed outbox entry", "entry", msg.ID, "error", err)
		// left pending so the queue dead-letters it after the retry budget
		return errors.Errorf("malformed outbox entry %s", msg.ID)
	}
	kind := string(event.Kind)

	attempt, err := a.idempotency.Acquire(ctx, msg.ID)
	switch {
	case errors.Is(err, ErrAlreadyOpened):
		a.metrics.RecordSkipped()
		logger.Info("link already opened, skipping", "entry", msg.ID, "kind", kind)
		return nil
	case errors.Is(err, ErrMaxRetriesExceeded):
		a.metrics.RecordFailure()
		prom.IncLinkOpenFailure(kind)
		logger.Error("giving up on link", "entry", msg.ID, "kind", kind, "nota_id", event.NotaID)
		return nil
	case err != nil:
		return err
	}
	defer a.idempotency.Release(ctx, attempt)

	start := time.Now()
	if err := a.launcher.Launch(ctx, event.URL); err != nil {
		a.metrics.RecordFailure()
		prom.IncLinkOpenFailure(kind)
		a.idempotency.MarkFailure(ctx, attempt, err)
		return err
	}

	a.metrics.RecordOpened(time.Since(start))
	prom.IncLinkOpened(kind)
	prom.AddLinkOpenDuration(time.Since(msg.Timestamp).Seconds(), kind)
	if err := a.idempotency.MarkSuccess(ctx, attempt); err != nil {
		logger.Error("failed to mark link opened", "entry", msg.ID, "error", err)
	}

	logger.Info("link opened",
		"entry", msg.ID,
		"kind", kind,
		"nota_id", event.NotaID,
		"phone", event.Phone,
		"is_retry", attempt.IsRetry())
	return nil
}
