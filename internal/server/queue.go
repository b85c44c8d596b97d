package server

import (
	"context"
	"errors"
)

// ErrQueueClosed is returned for writes submitted after shutdown.
var ErrQueueClosed = errors.New("write queue closed")

// writeQueue serializes document writes through one worker goroutine.
// A write is applied only after the previous write's
// read-modify-write cycle has fully completed, so two overlapping
// clients cannot lose each other's updates. Reads never pass through
// the queue.
type writeQueue struct {
	jobs   chan func()
	closed chan struct{}
}

func newWriteQueue() *writeQueue {
	q := &writeQueue{
		jobs:   make(chan func()),
		closed: make(chan struct{}),
	}
	go q.worker()
	return q
}

func (q *writeQueue) worker() {
	for {
		select {
		case job := <-q.jobs:
			job()
		case <-q.closed:
			return
		}
	}
}

// Do enqueues fn and waits for it to complete, preserving FIFO order
// across callers.
func (q *writeQueue) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	job := func() { result <- fn() }

	select {
	case q.jobs <- job:
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and stops the worker.
func (q *writeQueue) Close() {
	close(q.closed)
}
