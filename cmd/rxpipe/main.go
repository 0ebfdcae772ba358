// Command rxpipe runs sample stream pipelines and circuit breaker
// simulations against the rxpipe library.
package main

import (
	"os"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
