package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/janisto/hello-server/internal/config"
	applog "github.com/janisto/hello-server/internal/platform/logging"
	"github.com/janisto/hello-server/internal/server"
)

var errListenerClosed = errors.New("listener closed unexpectedly")

func main() {
	ctx := context.Background()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogFatal(ctx, "config load failed", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	err = run(cfg, stop)
	if err != nil {
		applog.LogError(ctx, "server failed", err, zap.Int("port", cfg.Port))
	}
	if syncErr := applog.Sync(); syncErr != nil {
		applog.LogError(ctx, "logger sync error", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// run serves until a signal arrives on stop or the listener fails, then
// releases the listener within cfg.ShutdownTimeout.
func run(cfg config.Config, stop <-chan os.Signal) error {
	_, ln, err := server.Start(cfg)
	if err != nil {
		return err
	}

	select {
	case <-ln.Done():
		if err := ln.Wait(); err != nil {
			return err
		}
		return errListenerClosed
	case sig := <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := ln.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	applog.LogInfo(ctx, "server exited")
	return nil
}
