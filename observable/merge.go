package observable

import "sync"

// MergeConfig configures Merge behavior.
type MergeConfig struct {
	// DelayErrors holds the first source error until every source has
	// terminated instead of failing fast. Default is false.
	DelayErrors bool

	// Options configure the returned Observable.
	Options []Option
}

// Merge forwards every value from every source as soon as it arrives.
// Ordering is preserved per source only. The returned Observable completes
// after all sources have completed and errors on the first source error,
// releasing the remaining sources. With no sources it completes immediately.
func Merge[T any](sources ...Source[T]) *Observable[T] {
	return MergeWithConfig(MergeConfig{}, sources...)
}

// MergeWithConfig is Merge with a configurable error policy.
func MergeWithConfig[T any](cfg MergeConfig, sources ...Source[T]) *Observable[T] {
	return Lift(func(down *Observable[T]) {
		if len(sources) == 0 {
			down.Complete()
			return
		}
		m := &merger[T]{
			down:        down,
			remaining:   len(sources),
			delayErrors: cfg.DelayErrors,
		}
		for _, src := range sources {
			if m.isTerminated() {
				break
			}
			Attach(down, src, NewObserver(m.next, m.error, m.completed))
		}
	}, cfg.Options...)
}

// merger serializes notifications from sources that may emit concurrently.
type merger[T any] struct {
	down        *Observable[T]
	delayErrors bool

	mu         sync.Mutex
	remaining  int
	firstErr   error
	terminated bool
}

func (m *merger[T]) next(v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terminated {
		return
	}
	m.down.Emit(v)
}

func (m *merger[T]) error(err error) {
	m.mu.Lock()
	if m.terminated {
		m.mu.Unlock()
		return
	}
	if !m.delayErrors {
		m.terminated = true
		m.mu.Unlock()
		m.down.up.release()
		m.down.Error(err)
		return
	}
	if m.firstErr == nil {
		m.firstErr = err
	}
	m.sourceDone()
	m.mu.Unlock()
}

func (m *merger[T]) completed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terminated {
		return
	}
	m.sourceDone()
}

// sourceDone must be called with mu held.
func (m *merger[T]) sourceDone() {
	m.remaining--
	if m.remaining > 0 {
		return
	}
	m.terminated = true
	if m.firstErr != nil {
		m.down.Error(m.firstErr)
		return
	}
	m.down.Complete()
}

func (m *merger[T]) isTerminated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminated
}
