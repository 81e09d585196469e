package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/wheelgrid/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app
// config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("wheelgrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Wheelgrid - A matrix-driven release pipeline for native-extension packages.

Usage:
  wheelgrid [options] [RELEASE_PATH]

Arguments:
  RELEASE_PATH
    Path to the release definition file (.hcl, .yaml or .yml).

Options:
`)
		flagSet.PrintDefaults()
	}

	releaseFlag := flagSet.String("release", "", "Path to the release definition file.")
	rFlag := flagSet.String("r", "", "Path to the release definition file (shorthand).")
	sourceFlag := flagSet.String("source", ".", "Path to the working-tree source checkout.")
	stagingFlag := flagSet.String("staging", "dist/staging", "Directory receiving published artifacts.")
	workersFlag := flagSet.Int("workers", 4, "Number of targets to build in parallel.")
	keepSandboxFlag := flagSet.Bool("keep-sandbox", false, "Keep per-target sandboxes on disk for debugging.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *releaseFlag != "" {
		path = *releaseFlag
	} else if *rFlag != "" {
		path = *rFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Release path determined.", "path", path)

	if path == "" {
		slog.Debug("No release path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 1 {
		return nil, false, &ExitError{Code: 2, Message: "invalid workers: must be at least 1"}
	}
	slog.Debug("CLI parameter validation complete.")

	return &app.Config{
		ReleasePath:     path,
		SourceDir:       *sourceFlag,
		StagingDir:      *stagingFlag,
		WorkerCount:     *workersFlag,
		KeepSandbox:     *keepSandboxFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	}, false, nil
}
