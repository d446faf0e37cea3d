package mq

import (
	"sync"

	"go.uber.org/zap"
)

// WorkerPool runs submitted closures on a fixed set of goroutines.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu      sync.RWMutex // guards stopped and the close of tasks
	stopped bool
}

// NewWorkerPool starts workerNum workers reading from a queue of bufferSize.
func NewWorkerPool(workerNum, bufferSize int) *WorkerPool {
	p := &WorkerPool{tasks: make(chan func(), bufferSize)}
	for i := 0; i < workerNum; i++ {
		p.wg.Add(1)
		go p.startWorker()
	}
	zap.L().Info("mq workers started", zap.Int("workers", workerNum), zap.Int("buffer", bufferSize))
	return p
}

func (p *WorkerPool) startWorker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *WorkerPool) run(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("mq worker panic", zap.Any("recover", rec))
		}
	}()
	task()
}

// Submit queues action; when the buffer is full it runs on the caller's goroutine.
// It reports false, dropping action, once the pool is stopped.
func (p *WorkerPool) Submit(action func()) bool {
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		zap.L().Warn("mq pool stopped, task dropped")
		return false
	}
	select {
	case p.tasks <- action:
		p.mu.RUnlock()
		return true
	default:
	}
	p.mu.RUnlock()

	zap.L().Warn("mq task channel full, executing synchronously")
	p.run(action)
	return true
}

// Stop drains queued tasks and waits for the workers. Later Submits are dropped.
func (p *WorkerPool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
