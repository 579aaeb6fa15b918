package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/OCAP2/auvplanner/internal/api"
	"github.com/OCAP2/auvplanner/internal/config"
)

func runServe(args []string, stderr io.Writer) int {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	fs.String("address", "", "listen address, overrides server.address")
	fs.String("log-level", "", "log level, overrides logLevel")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}

	configErr := config.Load(*configDir)
	_ = viper.BindPFlag("server.address", fs.Lookup("address"))
	_ = viper.BindPFlag("logLevel", fs.Lookup("log-level"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "startup failed: %v\n", err)
		return exitFailure
	}
	logger := a.Logger
	if configErr != nil {
		logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}

	serverCfg := config.GetServerConfig()
	srv, err := api.NewServer(serverCfg, logger.With("component", "api"), a.Planner, api.NewMetrics())
	if err != nil {
		logger.Error("Failed to create HTTP server", "error", err)
		_ = a.Close(context.Background())
		return exitFailure
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", serverCfg.Address, "version", Version)
		errCh <- srv.ListenAndServe()
	}()
	srv.SetReady(true)

	code := exitOK
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			code = exitFailure
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(serverCfg.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		code = exitFailure
	}
	logger.Info("Shutdown complete")
	if err := a.Close(shutdownCtx); err != nil {
		fmt.Fprintf(stderr, "cleanup: %v\n", err)
	}
	return code
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
