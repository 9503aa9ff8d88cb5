// Package workerpool provides a bounded goroutine pool. Batch scans use it to
// cap how many fetch+detect pipelines run at once, since every in-flight fetch
// costs a browser process.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool runs submitted tasks on a fixed set of worker goroutines. Workers are
// started lazily on first submit and reused across tasks.
type Pool struct {
	workers int32
	tasks   chan func()
	running int32
	closed  int32
	wg      sync.WaitGroup
}

// New creates a pool with the given worker count. Non-positive counts fall
// back to GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: int32(workers),
		tasks:   make(chan func(), workers*16),
	}
}

// Submit queues a task for execution. If all workers are busy the task waits;
// if the queue is also full, Submit blocks until space frees up. Returns
// false once the pool is closed.
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

// worker drains the task queue. A panicking task takes down only its worker;
// a replacement is spawned so one bad page cannot shrink the pool for the
// rest of a batch.
func (p *Pool) worker() {
	defer func() {
		if r := recover(); r != nil {
			if atomic.LoadInt32(&p.closed) == 0 {
				// replacement inherits this worker's running/wg slots
				go p.worker()
				return
			}
		}
		atomic.AddInt32(&p.running, -1)
		p.wg.Done()
	}()

	for task := range p.tasks {
		if task != nil {
			task()
		}
	}
}

// Running returns the current worker count.
func (p *Pool) Running() int {
	return int(atomic.LoadInt32(&p.running))
}

// Cap returns the configured worker capacity.
func (p *Pool) Cap() int {
	return int(atomic.LoadInt32(&p.workers))
}

// Waiting returns the number of queued tasks not yet picked up.
func (p *Pool) Waiting() int {
	return len(p.tasks)
}

// Close drains the queue and waits for all workers to finish. Safe to call
// more than once.
func (p *Pool) Close() {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}

// IsClosed reports whether Close has been called.
func (p *Pool) IsClosed() bool {
	return atomic.LoadInt32(&p.closed) == 1
}

// Map runs fn over items in parallel and returns results in input order,
// which is what keeps batch scan output aligned with the requested URL list.
// Items whose submit fails (pool closed mid-batch) keep zero values.
func Map[T, R any](p *Pool, items []T, fn func(T) R) []R {
	results := make([]R, len(items))
	var wg sync.WaitGroup
	wg.Add(len(items))

	for i, item := range items {
		idx := i
		val := item
		if !p.Submit(func() {
			defer wg.Done()
			results[idx] = fn(val)
		}) {
			wg.Done()
		}
	}

	wg.Wait()
	return results
}
