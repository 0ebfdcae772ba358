package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"github.com/spf13/cobra"

	"github.com/fxsml/rxpipe/breaker"
)

var errSimulated = errors.New("simulated failure")

func (a *app) newBreakerCmd() *cobra.Command {
	d := a.settings.Breaker
	cmd := &cobra.Command{
		Use:   "breaker",
		Short: "Simulate failing calls through a circuit breaker",
		Long: `breaker calls an operation that fails with the given probability
through a circuit breaker, retrying each call, and prints the result and the
breaker state after every call.`,
		Args: cobra.NoArgs,
		RunE: a.runBreaker,
	}
	cmd.Flags().Int("threshold", d.FailureThreshold, "Consecutive failures that open the circuit")
	cmd.Flags().Duration("timeout", d.Timeout, "How long the circuit stays open")
	cmd.Flags().Float64("fail-rate", d.FailRate, "Probability that a call fails")
	cmd.Flags().Int("calls", d.Calls, "Number of calls")
	cmd.Flags().Int("attempts", d.Retry.Attempts, "Attempts per call")
	cmd.Flags().Duration("retry-delay", d.Retry.Delay, "Initial delay between attempts, doubled on every retry")
	cmd.Flags().Duration("pause", d.Pause, "Pause between calls")
	cmd.Flags().Uint64("seed", d.Seed, "Random seed")
	return cmd
}

func (a *app) runBreaker(cmd *cobra.Command, _ []string) error {
	s := &a.settings.Breaker
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		s.FailureThreshold, _ = flags.GetInt("threshold")
	}
	if flags.Changed("timeout") {
		s.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("fail-rate") {
		s.FailRate, _ = flags.GetFloat64("fail-rate")
	}
	if flags.Changed("calls") {
		s.Calls, _ = flags.GetInt("calls")
	}
	if flags.Changed("attempts") {
		s.Retry.Attempts, _ = flags.GetInt("attempts")
	}
	if flags.Changed("retry-delay") {
		s.Retry.Delay, _ = flags.GetDuration("retry-delay")
	}
	if flags.Changed("pause") {
		s.Pause, _ = flags.GetDuration("pause")
	}
	if flags.Changed("seed") {
		s.Seed, _ = flags.GetUint64("seed")
	}
	return a.withMetrics(func() error {
		return a.simulate(cmd.Context(), cmd.OutOrStdout(), *s)
	})
}

func (a *app) simulate(ctx context.Context, out io.Writer, s BreakerSettings) error {
	cfg := s.Config
	cfg.Logger = a.logger
	cfg.OnStateChange = a.collector.BreakerStateChange
	cb := breaker.New(cfg)

	args := s.Retry
	args.BackoffFunc = retry.DoubleDelay

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed))
	op := func() error {
		if rng.Float64() < s.FailRate {
			return errSimulated
		}
		return nil
	}

	var failed int
	for i := 1; i <= s.Calls; i++ {
		status := "ok"
		if err := breaker.CallWithRetry(ctx, cb, op, args); err != nil {
			failed++
			status = err.Error()
			if ctx.Err() != nil {
				return err
			}
		}
		fmt.Fprintf(out, "call %d: %s state=%s failures=%d\n", i, status, cb.State(), cb.Failures())
		if s.Pause > 0 && i < s.Calls {
			select {
			case <-clock.WallClock.After(s.Pause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	fmt.Fprintf(out, "calls=%d failed=%d state=%s\n", s.Calls, failed, cb.State())
	return nil
}
