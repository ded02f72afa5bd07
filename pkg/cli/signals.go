package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context that is canceled on SIGINT or
// SIGTERM. Call stop to release the signal registration.
func SetupSignalHandler(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// OnReloadSignal calls fn for every SIGHUP until ctx is done. It returns
// immediately; the returned channel is closed once the handler has
// stopped listening.
func OnReloadSignal(ctx context.Context, fn func()) <-chan struct{} {
	return onSignal(ctx, fn, syscall.SIGHUP)
}

func onSignal(ctx context.Context, fn func(), sigs ...os.Signal) <-chan struct{} {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sigs...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer signal.Stop(sigChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigChan:
				fn()
			}
		}
	}()
	return done
}
