// Package main is the entrypoint of tubevault.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tubevault/internal/cfg"
	"tubevault/internal/utils/logging"
)

// main is the main entrypoint of the program (duh!).
func main() {
	startTime := time.Now()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)
	defer cancel()

	if err := cfg.InitCommands(); err != nil {
		fmt.Fprintf(os.Stderr, "Tubevault exiting with error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Execute(ctx); err != nil {
		logging.E("Error: %v", err)
		logging.CloseLogging()
		os.Exit(1)
	}

	logging.D(1, "Tubevault finished in %.2f seconds", time.Since(startTime).Seconds())
}
