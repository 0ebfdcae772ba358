package observable

import (
	"sync"
	"sync/atomic"
)

// Subscription is returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops future notifications. It is safe to call more than once
	// and never retracts notifications that were already dispatched.
	Unsubscribe()
}

type subscription struct {
	once sync.Once
	fn   func()
}

func newSubscription(fn func()) Subscription {
	return &subscription{fn: fn}
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.fn)
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

// upstream collects the subscriptions an operator holds on its sources.
// Subscriptions added after release are unsubscribed immediately.
type upstream struct {
	mu       sync.Mutex
	subs     []Subscription
	released bool
}

func (u *upstream) add(s Subscription) {
	u.mu.Lock()
	if u.released {
		u.mu.Unlock()
		s.Unsubscribe()
		return
	}
	u.subs = append(u.subs, s)
	u.mu.Unlock()
}

func (u *upstream) release() {
	u.mu.Lock()
	subs := u.subs
	u.subs = nil
	u.released = true
	u.mu.Unlock()
	for _, s := range subs {
		s.Unsubscribe()
	}
}

func (u *upstream) isReleased() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.released
}

// binder is implemented by observers that take their Subscription before the
// first notification, so a source producing inside Subscribe can be cut off.
type binder interface {
	bind(Subscription)
}

type boundObserver[T any] struct {
	Observer[T]
	up    *upstream
	bound atomic.Bool
}

func (b *boundObserver[T]) bind(s Subscription) {
	b.bound.Store(true)
	b.up.add(s)
}

func subscribeTo[T any](up *upstream, src Source[T], observer Observer[T]) {
	b := &boundObserver[T]{Observer: observer, up: up}
	sub := src.Subscribe(b)
	if !b.bound.Load() {
		up.add(sub)
	}
}

// Attach subscribes observer to src on behalf of down. The subscription is
// released when down terminates or loses its last observer. Sources created
// by this package hand the subscription over before delivering anything, so
// an operator that releases early also stops a source producing synchronously.
func Attach[T, U any](down *Observable[U], src Source[T], observer Observer[T]) {
	subscribeTo(&down.up, src, observer)
}
