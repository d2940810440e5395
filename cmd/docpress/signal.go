package main

import (
	"context"
	"os/signal"
)

// notifyContext returns a context canceled by the platform's shutdown
// signals. The first signal lets in-flight tasks finish; once it has
// been seen, default handling is restored so a second one kills the
// process.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}
