package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// signalContext returns a context that is cancelled on the first SIGINT or
// SIGTERM. Later signals are not captured and terminate the process.
func signalContext(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		s := <-sig
		fmt.Fprintf(os.Stderr, "\nReceived %s, stopping script evaluation\n", s)
		cancel()
		signal.Stop(sig)
	}()

	return ctx
}
