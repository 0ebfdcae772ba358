package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fxsml/rxpipe/backpressure"
	"github.com/fxsml/rxpipe/breaker"
	"github.com/fxsml/rxpipe/internal/logging"
	"github.com/fxsml/rxpipe/observable"
)

func init() {
	logging.SetDefaultLogger(logging.Discard())
}

func TestCollector_Streams(t *testing.T) {
	c := NewCollector()
	src := observable.New[int](observable.WithName("src"), observable.WithRecorder(c))
	h := backpressure.DropOldest[int](src, 1, observable.WithName("history"), observable.WithRecorder(c))
	h.Subscribe(observable.NewObserver(func(v int) {
		if v == 2 {
			panic("observer failure")
		}
	}, nil, nil))

	src.Emit(1)
	src.Emit(2)
	src.Emit(3)
	src.Complete()

	if got := testutil.ToFloat64(c.emitted.WithLabelValues("src")); got != 3 {
		t.Errorf("expected 3 emitted on src, got %v", got)
	}
	if got := testutil.ToFloat64(c.dropped.WithLabelValues("history", backpressure.ReasonDropOldest)); got != 2 {
		t.Errorf("expected 2 drops, got %v", got)
	}
	if got := testutil.ToFloat64(c.subscriberPanics.WithLabelValues("history")); got != 1 {
		t.Errorf("expected 1 panic, got %v", got)
	}
	if got := testutil.ToFloat64(c.terminated.WithLabelValues("history", "completed")); got != 1 {
		t.Errorf("expected history to complete, got %v", got)
	}
}

func TestCollector_Queue(t *testing.T) {
	c := NewCollector()
	o := observable.New[int](
		observable.WithName("queued"),
		observable.WithRecorder(c),
		observable.WithQueue(observable.QueueConfig{Capacity: 4}),
	)
	o.Subscribe(observable.NewObserver[int](nil, nil, nil))
	o.Emit(1)
	o.Complete()
	<-o.Done()

	if got := testutil.CollectAndCount(c, "rxpipe_queue_latency_seconds"); got != 1 {
		t.Errorf("expected one latency series, got %d", got)
	}
}

func TestCollector_Breaker(t *testing.T) {
	c := NewCollector()
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := breaker.New(breaker.Config{
		Name:             "db",
		FailureThreshold: 1,
		Timeout:          time.Second,
		Clock:            clk,
		OnStateChange:    c.BreakerStateChange,
	})

	_ = cb.Call(func() error { return breaker.ErrCircuitOpen })
	if got := testutil.ToFloat64(c.breakerState.WithLabelValues("db")); got != float64(breaker.Open) {
		t.Fatalf("expected open gauge, got %v", got)
	}

	clk.Advance(time.Second)
	_ = cb.Call(func() error { return nil })

	if got := testutil.ToFloat64(c.breakerState.WithLabelValues("db")); got != float64(breaker.Closed) {
		t.Errorf("expected closed gauge, got %v", got)
	}
	if got := testutil.ToFloat64(c.breakerTransitions.WithLabelValues("db", "open", "half-open")); got != 1 {
		t.Errorf("expected one open to half-open transition, got %v", got)
	}
}

func TestCollector_Register(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	c.Emitted("s")

	expected := `
# HELP rxpipe_emitted_total The number of values dispatched to subscribers.
# TYPE rxpipe_emitted_total counter
rxpipe_emitted_total{stream="s"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "rxpipe_emitted_total"); err != nil {
		t.Fatal(err)
	}
}
