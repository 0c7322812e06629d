package cli

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestNotifyShutdownCancelsOnSignal(t *testing.T) {
	ctx, stop := NotifyShutdown(context.Background())
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("sending SIGTERM: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled after SIGTERM")
	}
}

func TestNotifyShutdownStopCancels(t *testing.T) {
	ctx, stop := NotifyShutdown(context.Background())
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("stop did not cancel the derived context")
	}
}
