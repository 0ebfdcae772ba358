package main

import (
	"time"

	"github.com/fxsml/rxpipe/breaker"
	"github.com/fxsml/rxpipe/observable"
)

// Settings is the CLI configuration. It is read from the --config YAML file,
// then from RXPIPE_* environment variables, then from flags.
type Settings struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`

	Pipeline PipelineSettings `yaml:"pipeline"`
	Breaker  BreakerSettings  `yaml:"breaker"`
}

// PipelineSettings configures the pipeline command.
type PipelineSettings struct {
	Count      int                    `yaml:"count"`
	Interval   time.Duration          `yaml:"interval"`
	Take       int                    `yaml:"take"`
	Throttle   time.Duration          `yaml:"throttle"`
	DropOldest int                    `yaml:"drop_oldest"`
	FailAt     int                    `yaml:"fail_at"`
	Queue      observable.QueueConfig `yaml:"queue"`
}

// BreakerSettings configures the breaker command.
type BreakerSettings struct {
	breaker.Config `yaml:",inline"`

	Retry    breaker.RetryArgs `yaml:"retry"`
	Calls    int               `yaml:"calls"`
	FailRate float64           `yaml:"fail_rate"`
	Pause    time.Duration     `yaml:"pause"`
	Seed     uint64            `yaml:"seed"`
}

func defaultSettings() Settings {
	return Settings{
		LogLevel: "info",
		Pipeline: PipelineSettings{
			Count:      20,
			DropOldest: 5,
		},
		Breaker: BreakerSettings{
			Config: breaker.Config{
				Name:             "simulated",
				FailureThreshold: 3,
				Timeout:          5 * time.Second,
			},
			Retry: breaker.RetryArgs{
				Attempts: 3,
				Delay:    50 * time.Millisecond,
			},
			Calls:    10,
			FailRate: 0.5,
			Seed:     1,
		},
	}
}
