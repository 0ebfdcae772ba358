package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/juju/clock"
	"github.com/spf13/cobra"

	"github.com/fxsml/rxpipe/backpressure"
	"github.com/fxsml/rxpipe/observable"
)

var errFailAt = errors.New("configured failure")

func (a *app) newPipelineCmd() *cobra.Command {
	d := a.settings.Pipeline
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Square, filter and print a sequence of integers",
		Long: `pipeline emits the integers 1..count, squares them, keeps the even
squares, applies throttle and drop-oldest backpressure and prints every value
that reaches the end. A failing square is replaced by -1.`,
		Args: cobra.NoArgs,
		RunE: a.runPipeline,
	}
	cmd.Flags().Int("count", d.Count, "Number of integers to emit")
	cmd.Flags().Duration("interval", d.Interval, "Pause between emissions")
	cmd.Flags().Int("take", d.Take, "Stop after this many values (0 = all)")
	cmd.Flags().Duration("throttle", d.Throttle, "Forward at most one value per interval (0 = off)")
	cmd.Flags().Int("drop-oldest", d.DropOldest, "Size of the recent value history")
	cmd.Flags().Int("fail-at", d.FailAt, "Fail when squaring this integer (0 = never)")
	cmd.Flags().Int("queue", d.Queue.Capacity, "Dispatch the source through a queue of this capacity (0 = synchronous)")
	return cmd
}

func (a *app) runPipeline(cmd *cobra.Command, _ []string) error {
	s := &a.settings.Pipeline
	flags := cmd.Flags()
	if flags.Changed("count") {
		s.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("interval") {
		s.Interval, _ = flags.GetDuration("interval")
	}
	if flags.Changed("take") {
		s.Take, _ = flags.GetInt("take")
	}
	if flags.Changed("throttle") {
		s.Throttle, _ = flags.GetDuration("throttle")
	}
	if flags.Changed("drop-oldest") {
		s.DropOldest, _ = flags.GetInt("drop-oldest")
	}
	if flags.Changed("fail-at") {
		s.FailAt, _ = flags.GetInt("fail-at")
	}
	if flags.Changed("queue") {
		s.Queue.Capacity, _ = flags.GetInt("queue")
	}
	return a.withMetrics(func() error {
		return a.pipeline(cmd.Context(), cmd.OutOrStdout(), *s)
	})
}

func (a *app) pipeline(ctx context.Context, out io.Writer, s PipelineSettings) error {
	rec := observable.WithRecorder(a.collector)
	srcOpts := []observable.Option{observable.WithName("source"), rec}
	if s.Queue.Capacity > 0 {
		srcOpts = append(srcOpts, observable.WithQueue(s.Queue))
	}
	src := observable.New[int](srcOpts...)

	squared := observable.Map(src, func(v int) (int, error) {
		if v == s.FailAt {
			return 0, fmt.Errorf("squaring %d: %w", v, errFailAt)
		}
		return v * v, nil
	}, observable.WithName("square"), rec)
	even := observable.Filter(squared, func(v int) (bool, error) {
		return v%2 == 0, nil
	}, observable.WithName("even"), rec)
	throttled := backpressure.Throttle[int](even, s.Throttle, observable.WithName("throttle"), rec)
	history := backpressure.DropOldest[int](throttled, s.DropOldest, observable.WithName("history"), rec)
	caught := observable.Catch[int](history, func(err error) (int, error) {
		a.logger.Warn("RXPIPE: Pipeline failed, emitting fallback", "error", err)
		return -1, nil
	}, observable.WithName("fallback"), rec)

	var sink observable.Source[int] = caught
	if s.Take > 0 {
		sink = observable.Take[int](caught, s.Take, observable.WithName("take"), rec)
	}
	var finished atomic.Bool
	done := make(chan error, 1)
	sink.Subscribe(observable.NewObserver(
		func(v int) { fmt.Fprintln(out, v) },
		func(err error) {
			finished.Store(true)
			done <- err
		},
		func() {
			finished.Store(true)
			done <- nil
		},
	))

	clk := clock.WallClock
	for i := 1; i <= s.Count && !finished.Load() && ctx.Err() == nil; i++ {
		if err := src.EmitContext(ctx, i); err != nil {
			break
		}
		if s.Interval > 0 {
			select {
			case <-clk.After(s.Interval):
			case <-ctx.Done():
			}
		}
	}
	src.Complete()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	<-src.Done()
	fmt.Fprintf(out, "history=%v dropped=%d throttled=%d\n", history.Buffer(), history.Dropped(), throttled.Dropped())
	return err
}
