package observable

import (
	"context"
	"sync/atomic"
)

// QueueConfig configures queued dispatch.
type QueueConfig struct {
	// Capacity bounds the number of pending notifications.
	// Producers block while the queue is full. Default is 64.
	Capacity int `yaml:"capacity"`
}

func (c QueueConfig) parse() QueueConfig {
	if c.Capacity <= 0 {
		c.Capacity = 64
	}
	return c
}

type notificationKind int

const (
	kindNext notificationKind = iota
	kindError
	kindCompleted
)

type notification[T any] struct {
	kind  notificationKind
	event Event[T]
	err   error
}

// queue decouples the producer from observers. A single goroutine drains it
// in FIFO order and exits after delivering the terminal notification.
type queue[T any] struct {
	o       *Observable[T]
	ch      chan notification[T]
	closing atomic.Bool
}

func newQueue[T any](o *Observable[T], cfg QueueConfig) *queue[T] {
	q := &queue[T]{
		o:  o,
		ch: make(chan notification[T], cfg.Capacity),
	}
	go q.run()
	return q
}

func (q *queue[T]) push(ctx context.Context, n notification[T]) error {
	if n.kind == kindNext {
		if q.closing.Load() {
			return nil
		}
	} else if !q.closing.CompareAndSwap(false, true) {
		return nil
	}
	select {
	case q.ch <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *queue[T]) run() {
	o := q.o
	for n := range q.ch {
		o.opts.recorder.Dispatched(o.opts.name, o.opts.clock.Now().Sub(n.event.Timestamp()))
		switch n.kind {
		case kindNext:
			o.dispatchNext(n.event.Value())
		case kindError:
			o.terminate(Errored, n.err)
			return
		case kindCompleted:
			o.terminate(Completed, nil)
			return
		}
	}
}
