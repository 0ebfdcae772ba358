package observable

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/fxsml/rxpipe/internal/test"
)

func TestQueue_FIFO(t *testing.T) {
	o := New[int](WithQueue(QueueConfig{Capacity: 4}))
	c := test.NewCollector[int]()
	o.Subscribe(c)

	for i := range 20 {
		o.Emit(i)
	}
	o.Complete()
	c.Wait(t, waitTimeout)

	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	if got := c.Values(); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if c.Completed() != 1 {
		t.Fatalf("expected one completion, got %d", c.Completed())
	}
}

func TestQueue_ProducerDoesNotWaitForObserver(t *testing.T) {
	o := New[int](WithQueue(QueueConfig{Capacity: 8}))
	release := make(chan struct{})
	o.Subscribe(NewObserver(func(int) { <-release }, nil, nil))

	emitted := make(chan struct{})
	go func() {
		o.Emit(1)
		o.Emit(2)
		close(emitted)
	}()
	select {
	case <-emitted:
	case <-time.After(waitTimeout):
		t.Fatal("producer blocked on a slow observer")
	}

	close(release)
	o.Complete()
	<-o.Done()
}

func TestQueue_EmitContext(t *testing.T) {
	o := New[int](WithQueue(QueueConfig{Capacity: 1}))
	release := make(chan struct{})
	o.Subscribe(NewObserver(func(int) { <-release }, nil, nil))

	// The first value is taken by the consumer, the second fills the queue.
	o.Emit(1)
	deadline := time.Now().Add(waitTimeout)
	for o.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	o.Emit(2)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := o.EmitContext(ctx, 3); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	close(release)
	o.Complete()
	<-o.Done()
}

func TestQueue_TerminalOnce(t *testing.T) {
	o := New[int](WithQueue(QueueConfig{}))
	c := test.NewCollector[int]()
	o.Subscribe(c)

	o.Emit(1)
	o.Error(errBoom)
	o.Emit(2)
	o.Complete()
	<-o.Done()

	if got := c.Values(); !slices.Equal(got, []int{1}) {
		t.Fatalf("expected [1], got %v", got)
	}
	if errs := c.Errors(); len(errs) != 1 || errs[0] != errBoom {
		t.Fatalf("expected a single boom, got %v", errs)
	}
	if c.Completed() != 0 {
		t.Fatalf("expected no completion after error")
	}
	if o.State() != Errored {
		t.Fatalf("expected errored state, got %s", o.State())
	}
}

func TestQueue_RecordsDispatch(t *testing.T) {
	rec := &countingRecorder{}
	o := New[int](WithQueue(QueueConfig{}), WithRecorder(rec), WithName("queued"))
	o.Subscribe(NewObserver[int](nil, nil, nil))

	o.Emit(1)
	o.Emit(2)
	o.Complete()
	<-o.Done()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.dispatched != 3 {
		t.Fatalf("expected 3 dispatched notifications, got %d", rec.dispatched)
	}
	if rec.emitted != 2 {
		t.Fatalf("expected 2 emitted values, got %d", rec.emitted)
	}
}
