package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/phishguard/internal/di"
	"github.com/mikey/phishguard/internal/ports"
	"go.uber.org/zap"
)

func main() {
	container, err := di.BuildContainer()
	if err == nil {
		err = container.Invoke(run)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "phishguard: %+v\n", err)
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM
func run(logger *zap.Logger, emailFilter ports.EmailFilter, detector ports.Detector) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, logger, emailFilter, detector)
}

// serve starts the filter and stops it once ctx is done. An Unready detector
// still serves, so /health and every prediction report the missing artifacts.
func serve(ctx context.Context, logger *zap.Logger, emailFilter ports.EmailFilter, detector ports.Detector) error {
	if err := emailFilter.Start(); err != nil {
		logger.Error("Failed to start filter", zap.Error(err))
		return err
	}
	logger.Info("Phishguard running", zap.Bool("ready", detector.Ready()))

	<-ctx.Done()

	// Stop drains in-flight requests before the logger is flushed
	logger.Info("Signal received, stopping filter")
	if err := emailFilter.Stop(); err != nil {
		logger.Error("Filter did not stop cleanly", zap.Error(err))
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
