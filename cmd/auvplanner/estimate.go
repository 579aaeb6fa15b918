package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/OCAP2/auvplanner/internal/api"
	"github.com/OCAP2/auvplanner/internal/config"
	"github.com/OCAP2/auvplanner/internal/estimator"
	"github.com/OCAP2/auvplanner/internal/logging"
	"github.com/OCAP2/auvplanner/internal/planner"
)

// runEstimate estimates one mission file and prints the report as JSON.
// Logs go to stderr so stdout stays machine readable.
func runEstimate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("estimate", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configDir := fs.String("config", ".", "directory containing "+config.FileName)
	remote := fs.String("remote", "", "planner server URL; estimate locally when empty")
	logLevel := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return exitFailure
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "estimate needs exactly one mission file, or - for stdin")
		return exitFailure
	}

	data, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		fmt.Fprintf(stderr, "reading mission: %v\n", err)
		return exitFailure
	}

	manager := logging.NewSlogManager()
	manager.Setup(stderr, *logLevel, nil)
	logger := manager.Logger()

	if err := config.Load(*configDir); err != nil {
		logger.Debug("No config file, using defaults", "error", err)
	}

	in, err := api.MissionFromJSON(data)
	if err != nil {
		return reportError(stdout, stderr, err)
	}

	ctx := context.Background()
	var report planner.Report
	if *remote != "" {
		report, err = api.NewClient(*remote).Estimate(ctx, in)
	} else {
		var svc *planner.Service
		svc, err = localPlanner(logger)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitFailure
		}
		report, err = svc.Estimate(ctx, in)
	}
	if err != nil {
		return reportError(stdout, stderr, err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(stderr, "writing report: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func localPlanner(logger *slog.Logger) (*planner.Service, error) {
	params, err := config.GetPhysicsParams()
	if err != nil {
		return nil, fmt.Errorf("invalid physics config: %w", err)
	}
	est, err := estimator.New(params)
	if err != nil {
		return nil, err
	}
	return planner.NewService(planner.Dependencies{Estimator: est, Logger: logger})
}

func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

// reportError prints a rejection as the API error body and returns the matching exit code.
func reportError(stdout, stderr io.Writer, err error) int {
	if !estimator.IsValidationError(err) {
		fmt.Fprintf(stderr, "estimate failed: %v\n", err)
		return exitFailure
	}
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]any{
		"error":     err.Error(),
		"waypoints": []any{},
	})
	return exitRejected
}
