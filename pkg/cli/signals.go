package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals are the signals that request a graceful stop.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// NotifyShutdown derives a context that is canceled on the first shutdown
// signal. The stop function unregisters the handler and restores default
// signal behavior, so a repeated signal after stop terminates the process.
func NotifyShutdown(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
