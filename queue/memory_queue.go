package queue

import (
	"context"

	"github.com/meshhq/ghcrawler/processor"
)

// MemoryQueue is an in-process Backend for tests and single-process runs:
// three buffered channels, one per priority lane, drained immediate-first.
type MemoryQueue struct {
	immediate chan *processor.Request
	soon      chan *processor.Request
	defaultCh chan *processor.Request
}

// NewMemoryQueue builds a MemoryQueue with the given per-lane buffer size.
func NewMemoryQueue(bufferSize int) *MemoryQueue {
	return &MemoryQueue{
		immediate: make(chan *processor.Request, bufferSize),
		soon:      make(chan *processor.Request, bufferSize),
		defaultCh: make(chan *processor.Request, bufferSize),
	}
}

func (q *MemoryQueue) laneFor(priority processor.Priority) chan *processor.Request {
	switch priority {
	case processor.PriorityImmediate:
		return q.immediate
	case processor.PrioritySoon:
		return q.soon
	default:
		return q.defaultCh
	}
}

// Push implements processor.QueueSet.
func (q *MemoryQueue) Push(ctx context.Context, priority processor.Priority, reqs ...*processor.Request) error {
	lane := q.laneFor(priority)
	for _, r := range reqs {
		select {
		case lane <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Depths reports the current per-lane buffered length, for dashboard
// reporting.
func (q *MemoryQueue) Depths() map[processor.Priority]int {
	return map[processor.Priority]int{
		processor.PriorityImmediate: len(q.immediate),
		processor.PrioritySoon:      len(q.soon),
		processor.PriorityDefault:   len(q.defaultCh),
	}
}

// Pop implements Backend, draining immediate, then soon, then default.
func (q *MemoryQueue) Pop(ctx context.Context) (*processor.Request, error) {
	select {
	case r := <-q.immediate:
		return r, nil
	default:
	}
	select {
	case r := <-q.immediate:
		return r, nil
	case r := <-q.soon:
		return r, nil
	default:
	}
	select {
	case r := <-q.immediate:
		return r, nil
	case r := <-q.soon:
		return r, nil
	case r := <-q.defaultCh:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
