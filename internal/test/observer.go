// Package test holds helpers shared by package tests.
package test

import (
	"slices"
	"sync"
	"testing"
	"time"
)

// Collector is an observer that records every notification it receives.
type Collector[T any] struct {
	mu        sync.Mutex
	values    []T
	errs      []error
	completed int
	done      chan struct{}
	doneOnce  sync.Once
}

// NewCollector returns an empty Collector.
func NewCollector[T any]() *Collector[T] {
	return &Collector[T]{done: make(chan struct{})}
}

func (c *Collector[T]) OnNext(v T) {
	c.mu.Lock()
	c.values = append(c.values, v)
	c.mu.Unlock()
}

func (c *Collector[T]) OnError(err error) {
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *Collector[T]) OnCompleted() {
	c.mu.Lock()
	c.completed++
	c.mu.Unlock()
	c.doneOnce.Do(func() { close(c.done) })
}

// Values returns a copy of the received values.
func (c *Collector[T]) Values() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.values)
}

// Errors returns a copy of the received errors.
func (c *Collector[T]) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.errs)
}

// Err returns the first received error.
func (c *Collector[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs[0]
}

// Completed returns how often OnCompleted was called.
func (c *Collector[T]) Completed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// Done is closed on the first terminal notification.
func (c *Collector[T]) Done() <-chan struct{} {
	return c.done
}

// Wait fails the test if no terminal notification arrives within timeout.
func (c *Collector[T]) Wait(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(timeout):
		t.Fatalf("no terminal notification within %v", timeout)
	}
}
