// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The shop uses one pool per process to price product listings in
// parallel. When every worker is busy, Submit returns ErrPoolFull instead of
// spawning more goroutines; Each blocks for a slot instead.
//
//	pool := workerpool.New(config.WorkerPoolSize())
//	defer pool.Shutdown()
//
//	err := pool.Each(ctx, len(products), func(i int) {
//	    priced[i] = price(products[i])
//	})
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/minimalshop/pkg/logger"
)

// ErrPoolFull is returned by Submit when the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	size    int
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closeCh chan struct{}
}

// New starts a Pool with size workers. A non-positive size means one.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		size:    size,
		tasks:   make(chan func(), size*2),
		closeCh: make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Size is the number of workers.
func (p *Pool) Size() int { return p.size }

// Submit enqueues task without blocking.
func (p *Pool) Submit(task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until task is queued, ctx is done or the pool closes.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	select {
	case <-p.closeCh:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.closeCh:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.tasks <- task:
		return nil
	}
}

// Each runs fn(i) for every i in [0, n) across the workers, in chunks of
// roughly n/size, and returns once all queued calls have finished. If
// queuing stops early the error is returned after in-flight chunks drain.
func (p *Pool) Each(ctx context.Context, n int, fn func(i int)) error {
	if n <= 0 {
		return nil
	}

	chunk := (n + p.size - 1) / p.size
	var wg sync.WaitGroup
	var err error

	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}

		wg.Add(1)
		start, end := lo, hi
		if err = p.SubmitWait(ctx, func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}); err != nil {
			wg.Done()
			break
		}
	}

	wg.Wait()
	return err
}

// Shutdown stops accepting tasks and waits for queued ones to finish.
// It is safe to call multiple times.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.closeCh)
		close(p.tasks)
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

// safeRun keeps a panicking task from killing its worker.
func safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}
