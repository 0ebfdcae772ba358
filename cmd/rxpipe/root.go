package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/fxsml/rxpipe/config"
	"github.com/fxsml/rxpipe/internal/logging"
	"github.com/fxsml/rxpipe/metrics"
	"github.com/fxsml/rxpipe/observable"
)

type app struct {
	settings  Settings
	collector *metrics.Collector
	logger    logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		settings:  defaultSettings(),
		collector: metrics.NewCollector(),
	}
	root := &cobra.Command{
		Use:               "rxpipe",
		Short:             "Run reactive stream pipelines",
		Long:              "rxpipe runs sample pipelines and circuit breaker simulations built on the rxpipe library.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().String("config", "", "YAML configuration file")
	root.PersistentFlags().String("log-level", "", "Log level: debug | info | warn | error")
	root.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address while running")

	root.Version = version
	root.SetVersionTemplate(fmt.Sprintf("rxpipe version %s\n", version))

	root.AddCommand(a.newPipelineCmd())
	root.AddCommand(a.newBreakerCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	if err := config.LoadAll(path, "", &a.settings); err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		a.settings.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("metrics-addr") {
		a.settings.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	}
	level, err := logging.ParseLevel(a.settings.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logging.NewTextLogger(cmd.ErrOrStderr(), level)
	observable.SetDefaultLogger(a.logger)
	a.logger.Debug("RXPIPE: Settings loaded", "config", path, "settings", fmt.Sprintf("%+v", a.settings))
	return nil
}

// serveMetrics exposes the collector on addr until stop is called and
// returns the bound address.
func (a *app) serveMetrics(addr string) (string, func(), error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(a.collector); err != nil {
		return "", nil, fmt.Errorf("registering metrics: %w", err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("RXPIPE: Metrics server failed", "error", err)
		}
	}()
	a.logger.Info("RXPIPE: Serving metrics", "addr", ln.Addr().String())

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	}
	return ln.Addr().String(), stop, nil
}

// withMetrics runs fn while serving metrics if an address is configured.
func (a *app) withMetrics(fn func() error) error {
	if a.settings.MetricsAddr == "" {
		return fn()
	}
	_, stop, err := a.serveMetrics(a.settings.MetricsAddr)
	if err != nil {
		return err
	}
	defer stop()
	return fn()
}
