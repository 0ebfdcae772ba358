package observable

import (
	"slices"
	"sync"
)

// CombineLatest keeps the latest value of every source. Once each source has
// emitted at least once, it emits a copy of all latest values, indexed like
// sources, and does so again on every later update. It completes after all
// sources have completed and errors on the first source error.
func CombineLatest[T any](sources ...Source[T]) *Observable[[]T] {
	return Lift(func(down *Observable[[]T]) {
		if len(sources) == 0 {
			down.Complete()
			return
		}
		c := &combiner[T]{
			down:      down,
			latest:    make([]T, len(sources)),
			has:       make([]bool, len(sources)),
			remaining: len(sources),
		}
		for i, src := range sources {
			if c.isTerminated() {
				break
			}
			Attach(down, src, NewObserver(
				func(v T) { c.next(i, v) },
				c.error,
				c.completed,
			))
		}
	})
}

type combiner[T any] struct {
	down *Observable[[]T]

	mu         sync.Mutex
	latest     []T
	has        []bool
	filled     int
	remaining  int
	terminated bool
}

func (c *combiner[T]) next(i int, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return
	}
	if !c.has[i] {
		c.has[i] = true
		c.filled++
	}
	c.latest[i] = v
	if c.filled == len(c.latest) {
		c.down.Emit(slices.Clone(c.latest))
	}
}

func (c *combiner[T]) error(err error) {
	c.mu.Lock()
	if c.terminated {
		c.mu.Unlock()
		return
	}
	c.terminated = true
	c.mu.Unlock()
	c.down.up.release()
	c.down.Error(err)
}

func (c *combiner[T]) completed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminated {
		return
	}
	c.remaining--
	if c.remaining == 0 {
		c.terminated = true
		c.down.Complete()
	}
}

func (c *combiner[T]) isTerminated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminated
}

// Pair holds one value from each source of CombineLatest2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// CombineLatest2 is CombineLatest for two sources of different types.
func CombineLatest2[A, B any](a Source[A], b Source[B]) *Observable[Pair[A, B]] {
	combined := CombineLatest[any](
		Map(a, func(v A) (any, error) { return v, nil }),
		Map(b, func(v B) (any, error) { return v, nil }),
	)
	return Map(combined, func(vs []any) (Pair[A, B], error) {
		first, _ := vs[0].(A)
		second, _ := vs[1].(B)
		return Pair[A, B]{First: first, Second: second}, nil
	})
}
