package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/OCAP2/auvplanner/internal/config"
	"github.com/OCAP2/auvplanner/internal/dispatcher"
	"github.com/OCAP2/auvplanner/internal/estimator"
	"github.com/OCAP2/auvplanner/internal/influx"
	"github.com/OCAP2/auvplanner/internal/logging"
	intOtel "github.com/OCAP2/auvplanner/internal/otel"
	"github.com/OCAP2/auvplanner/internal/planner"
)

// app holds the long-lived services of one serve session.
type app struct {
	Logger       *slog.Logger
	SlogManager  *logging.SlogManager
	OTelProvider *intOtel.Provider
	Influx       *influx.Manager
	Dispatcher   *dispatcher.Dispatcher
	Planner      *planner.Service

	logFile *lumberjack.Logger
}

// newApp builds logging, telemetry, the influx publisher and the planner
// from the loaded configuration. console receives a copy of every log line.
func newApp(ctx context.Context, console io.Writer) (_ *app, err error) {
	a := &app{SlogManager: logging.NewSlogManager()}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()
	sessionStart := time.Now()
	logCfg := config.GetLogConfig()

	// Console only until the log file is open
	a.SlogManager.Setup(console, logCfg.Level, nil)
	a.Logger = a.SlogManager.Logger()

	if err = os.MkdirAll(logCfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logCfg.Dir, AppName, sessionStart)
	a.logFile = logging.NewRotatingFile(logPath, logCfg.MaxSizeMB, logCfg.MaxBackups)
	a.Logger.Info("Begin logging in logs directory", "path", logPath)

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		provider, err := intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    a.logFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			a.Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			a.OTelProvider = provider
			a.Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var extra []slog.Handler
	if logCfg.GraylogEnabled {
		h, err := logging.NewGELFHandler(logCfg.GraylogAddress, logCfg.Level)
		if err != nil {
			a.Logger.Error("Failed to initialize Graylog handler", "error", err, "address", logCfg.GraylogAddress)
		} else {
			extra = append(extra, h)
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if a.OTelProvider != nil {
		otelLogProvider = a.OTelProvider.LoggerProvider()
	}
	a.SlogManager.Setup(io.MultiWriter(console, a.logFile), logCfg.Level, otelLogProvider, extra...)
	a.Logger = a.SlogManager.Logger()

	influxCfg := config.GetInfluxConfig()
	a.Influx = influx.NewManager(logging.NewZerolog(a.logFile, logCfg.Level, "influx"), influxCfg)
	if influxCfg.Enabled {
		if err := os.MkdirAll(filepath.Dir(influxCfg.BackupPath), 0o755); err != nil {
			a.Logger.Warn("Failed to create influx backup dir", "error", err)
		}
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := a.Influx.Connect(connectCtx)
		cancel()
		if err != nil {
			a.Logger.Error("Failed to set up InfluxDB publisher", "error", err)
		}
	}

	params, err := config.GetPhysicsParams()
	if err != nil {
		return nil, fmt.Errorf("invalid physics config: %w", err)
	}
	est, err := estimator.New(params)
	if err != nil {
		return nil, err
	}

	deps := planner.Dependencies{
		Estimator: est,
		Logger:    a.Logger.With("component", "planner"),
		CacheSize: config.GetCacheSize(),
	}
	if a.OTelProvider != nil {
		deps.Meter = a.OTelProvider.Meter("github.com/OCAP2/auvplanner/internal/planner")
	}
	if influxCfg.Enabled {
		a.Dispatcher, err = dispatcher.New(a.Logger.With("component", "dispatcher"))
		if err != nil {
			return nil, err
		}
		a.Dispatcher.Register("influx", a.Influx, dispatcher.Buffered(1024), dispatcher.Logged())
		deps.Publisher = a.Dispatcher
	}
	a.Planner, err = planner.NewService(deps)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// Close flushes telemetry and releases files. Errors are joined.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.Influx != nil {
		if err := a.Influx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing influx: %w", err))
		}
	}
	if err := a.SlogManager.Flush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flushing logs: %w", err))
	}
	if a.OTelProvider != nil {
		if err := a.OTelProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down otel: %w", err))
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing log file: %w", err))
		}
	}
	return errors.Join(errs...)
}
