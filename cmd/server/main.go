// Package main is the entry point for the service. It exposes a cobra CLI
// with two commands: serve (the default) wires all dependencies using
// samber/do v2, starts the HTTP server, and handles graceful shutdown on
// SIGINT/SIGTERM; probe queries a running instance's /health for use as a
// container HEALTHCHECK.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
