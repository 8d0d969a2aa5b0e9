// Package workerpool provides a bounded goroutine pool used to evaluate
// independent rules concurrently.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs submitted tasks on at most Cap workers.
// Workers are started lazily and exit when the pool is closed.
type Pool struct {
	workers int32
	tasks   chan func()
	running int32
	closed  int32
	wg      sync.WaitGroup
}

// New creates a pool with the given number of workers.
// A non-positive count means GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*4),
	}
}

// Submit queues a task, blocking while the queue is full.
// Returns false if the pool is closed.
func (p *Pool) Submit(task func()) bool {
	if atomic.LoadInt32(&p.closed) == 1 {
		return false
	}

	for {
		running := atomic.LoadInt32(&p.running)
		if running >= p.workers {
			break
		}
		if atomic.CompareAndSwapInt32(&p.running, running, running+1) {
			p.wg.Add(1)
			go p.worker()
			break
		}
	}

	p.tasks <- task
	return true
}

func (p *Pool) worker() {
	defer func() {
		atomic.AddInt32(&p.running, -1)
		p.wg.Done()
	}()

	for task := range p.tasks {
		if task != nil {
			task()
		}
	}
}

// Cap returns the worker limit.
func (p *Pool) Cap() int {
	return int(p.workers)
}

// Close waits for queued tasks to finish and stops the workers.
// Calling Close more than once is a no-op.
func (p *Pool) Close() {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}

// Map applies fn to each item on the pool and returns the results in item
// order. Items that could not be submitted because the pool was closed keep
// the zero value.
func Map[T, R any](p *Pool, items []T, fn func(T) R) []R {
	results := make([]R, len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))

	for i, item := range items {
		if !p.Submit(func() {
			defer wg.Done()
			results[i] = fn(item)
		}) {
			wg.Done()
		}
	}

	wg.Wait()
	return results
}
