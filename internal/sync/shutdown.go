package sync

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context cancelled on SIGTERM or SIGINT. A second
// signal forces an immediate exit for the case where the run is blocked
// inside a throttle or retry wait.
func SignalContext(logger *slog.Logger) context.Context {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		logger.Info("signal received, shutting down", "signal", sig.String())
		cancel()

		sig = <-sigCh
		logger.Error("second signal received, forcing exit", "signal", sig.String())
		os.Exit(1)
	}()

	return ctx
}
