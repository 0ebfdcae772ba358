package observable

import (
	"errors"
	"slices"
	"testing"

	"github.com/fxsml/rxpipe/internal/test"
)

func TestObservable_Ordering(t *testing.T) {
	src := New[int]()
	a := test.NewCollector[int]()
	b := test.NewCollector[int]()
	src.Subscribe(a)
	src.Subscribe(b)

	src.Emit(1)
	src.Emit(2)
	src.Emit(3)

	want := []int{1, 2, 3}
	if got := a.Values(); !slices.Equal(got, want) {
		t.Errorf("first subscriber got %v, want %v", got, want)
	}
	if got := b.Values(); !slices.Equal(got, want) {
		t.Errorf("second subscriber got %v, want %v", got, want)
	}
}

func TestObservable_SubscriptionOrder(t *testing.T) {
	src := New[int]()
	var order []string
	src.Subscribe(NewObserver(func(int) { order = append(order, "a") }, nil, nil))
	src.Subscribe(NewObserver(func(int) { order = append(order, "b") }, nil, nil))
	src.Subscribe(NewObserver(func(int) { order = append(order, "c") }, nil, nil))

	src.Emit(0)

	if want := []string{"a", "b", "c"}; !slices.Equal(order, want) {
		t.Fatalf("expected delivery order %v, got %v", want, order)
	}
}

func TestObservable_TerminalIdempotence(t *testing.T) {
	t.Run("complete twice", func(t *testing.T) {
		src := New[int]()
		c := test.NewCollector[int]()
		src.Subscribe(c)

		src.Complete()
		src.Complete()
		src.Error(errors.New("late"))

		if c.Completed() != 1 {
			t.Errorf("expected 1 completion, got %d", c.Completed())
		}
		if len(c.Errors()) != 0 {
			t.Errorf("expected no errors, got %v", c.Errors())
		}
		if src.State() != Completed {
			t.Errorf("expected state completed, got %s", src.State())
		}
	})

	t.Run("error twice", func(t *testing.T) {
		src := New[int]()
		c := test.NewCollector[int]()
		src.Subscribe(c)
		first := errors.New("first")

		src.Error(first)
		src.Error(errors.New("second"))
		src.Complete()

		if errs := c.Errors(); len(errs) != 1 || errs[0] != first {
			t.Errorf("expected exactly the first error, got %v", errs)
		}
		if c.Completed() != 0 {
			t.Errorf("expected no completion, got %d", c.Completed())
		}
		if src.State() != Errored || src.Err() != first {
			t.Errorf("expected errored state with first error, got %s %v", src.State(), src.Err())
		}
	})
}

func TestObservable_NoEmitAfterTerminal(t *testing.T) {
	src := New[int]()
	c := test.NewCollector[int]()
	src.Subscribe(c)

	src.Emit(1)
	src.Complete()
	src.Emit(2)

	if got := c.Values(); !slices.Equal(got, []int{1}) {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestObservable_LateSubscriberDropped(t *testing.T) {
	src := New[int]()
	src.Complete()

	c := test.NewCollector[int]()
	sub := src.Subscribe(c)
	sub.Unsubscribe()
	src.Emit(1)

	if len(c.Values()) != 0 || c.Completed() != 0 || len(c.Errors()) != 0 {
		t.Fatalf("late subscriber received notifications: values=%v completed=%d errors=%v",
			c.Values(), c.Completed(), c.Errors())
	}
	if src.Len() != 0 {
		t.Fatalf("expected no subscribers, got %d", src.Len())
	}
}

func TestObservable_TerminalClearsSubscribers(t *testing.T) {
	src := New[int]()
	src.Subscribe(test.NewCollector[int]())
	src.Subscribe(test.NewCollector[int]())
	if src.Len() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", src.Len())
	}

	src.Error(errors.New("boom"))

	if src.Len() != 0 {
		t.Fatalf("expected subscribers to be cleared, got %d", src.Len())
	}
	select {
	case <-src.Done():
	default:
		t.Fatal("expected done channel to be closed")
	}
}

func TestObservable_Unsubscribe(t *testing.T) {
	src := New[int]()
	c := test.NewCollector[int]()
	sub := src.Subscribe(c)

	src.Emit(1)
	sub.Unsubscribe()
	sub.Unsubscribe()
	src.Emit(2)
	src.Complete()

	if got := c.Values(); !slices.Equal(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
	if c.Completed() != 0 {
		t.Errorf("expected no completion after unsubscribe, got %d", c.Completed())
	}
}

func TestObservable_UnsubscribeDuringDispatch(t *testing.T) {
	src := New[int]()
	second := test.NewCollector[int]()
	var secondSub Subscription
	src.Subscribe(NewObserver(func(int) { secondSub.Unsubscribe() }, nil, nil))
	secondSub = src.Subscribe(second)

	src.Emit(1)

	if len(second.Values()) != 0 {
		t.Fatalf("expected unsubscribed observer to be skipped, got %v", second.Values())
	}
}

func TestObservable_SameObserverTwice(t *testing.T) {
	src := New[int]()
	c := test.NewCollector[int]()
	first := src.Subscribe(c)
	src.Subscribe(c)

	src.Emit(1)
	first.Unsubscribe()
	src.Emit(2)

	if got := c.Values(); !slices.Equal(got, []int{1, 1, 2}) {
		t.Fatalf("expected [1 1 2], got %v", got)
	}
}

func TestObservable_SubscriberPanicIsolated(t *testing.T) {
	rec := &countingRecorder{}
	src := New[int](WithRecorder(rec), WithName("panicky"))
	src.Subscribe(NewObserver(
		func(v int) {
			if v == 2 {
				panic("subscriber failure")
			}
		},
		nil,
		func() { panic("completion failure") },
	))
	c := test.NewCollector[int]()
	src.Subscribe(c)

	src.Emit(1)
	src.Emit(2)
	src.Emit(3)
	src.Complete()

	if got := c.Values(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("expected other subscriber to receive [1 2 3], got %v", got)
	}
	if c.Completed() != 1 {
		t.Errorf("expected other subscriber to complete once, got %d", c.Completed())
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.panicked != 2 {
		t.Errorf("expected 2 recorded panics, got %d", rec.panicked)
	}
	if rec.emitted != 3 {
		t.Errorf("expected 3 recorded emissions, got %d", rec.emitted)
	}
	if !slices.Equal(rec.terminated, []State{Completed}) {
		t.Errorf("expected one completed termination, got %v", rec.terminated)
	}
}

func TestObservable_NilObserver(t *testing.T) {
	src := New[int]()
	src.Subscribe(nil).Unsubscribe()
	src.Emit(1)
	if src.Len() != 0 {
		t.Fatalf("expected nil observer to be ignored, got %d subscribers", src.Len())
	}
}

func TestObservable_Name(t *testing.T) {
	if got := New[int](WithName("orders")).Name(); got != "orders" {
		t.Errorf("expected name orders, got %q", got)
	}
	a, b := New[int]().Name(), New[int]().Name()
	if a == "" || a == b {
		t.Errorf("expected distinct generated names, got %q and %q", a, b)
	}
}

func TestNewObserver_NilCallbacks(t *testing.T) {
	o := NewObserver[int](nil, nil, nil)
	o.OnNext(1)
	o.OnError(errors.New("ignored"))
	o.OnCompleted()
}
