package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one fire-and-forget unit of work, typically a full-board save.
type Job func(ctx context.Context) error

// Pool runs submitted jobs in the background. Submit never blocks and the
// queue is unbounded. Jobs already submitted are not cancelled: Stop waits
// until the queue is drained.
type Pool struct {
	logger *zap.Logger
	count  int
	wg     sync.WaitGroup
	stop   chan struct{}
	notify chan struct{}

	mu      sync.Mutex
	queue   []Job
	stopped bool
}

func NewPool(logger *zap.Logger, count int) *Pool {
	if count < 1 {
		count = 1
	}
	return &Pool{
		logger: logger,
		count:  count,
		stop:   make(chan struct{}),
		notify: make(chan struct{}, 1),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	// Отмена ctx не должна обрывать уже отправленные сохранения
	jobCtx := context.WithoutCancel(ctx)
	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(jobCtx, i)
	}
}

// Stop drains the queue and waits for the workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool...")
	close(p.stop)
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// Submit enqueues job. It reports false once the pool is stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.logger.Warn("job submitted after stop, dropped")
		return false
	}
	p.queue = append(p.queue, job)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
	return true
}

// Pending returns the number of queued jobs not yet picked up.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil, false
	}
	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return job, true
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		if job, ok := p.next(); ok {
			p.run(ctx, id, job)
			// Будим соседа, если очередь еще не пуста
			if p.Pending() > 0 {
				select {
				case p.notify <- struct{}{}:
				default:
				}
			}
			continue
		}

		select {
		case <-p.notify:
		case <-p.stop:
			for {
				job, ok := p.next()
				if !ok {
					return
				}
				p.run(ctx, id, job)
			}
		}
	}
}

func (p *Pool) run(ctx context.Context, workerID int, job Job) {
	start := time.Now()
	if err := job(ctx); err != nil {
		p.logger.Error("worker error", zap.Int("worker", workerID), zap.Error(err))
		return
	}
	p.logger.Debug("job completed",
		zap.Int("worker", workerID),
		zap.Duration("took", time.Since(start)),
	)
}
