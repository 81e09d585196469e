package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/wheelgrid/internal/app"
	"github.com/specialistvlad/wheelgrid/internal/cli"
	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/hclconfig"
	"github.com/specialistvlad/wheelgrid/internal/yamlconfig"
)

// main is the entrypoint for the wheelgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	loader, loaderErr := selectLoader(appConfig.ReleasePath)
	if loaderErr != nil {
		return &cli.ExitError{Code: 2, Message: loaderErr.Error()}
	}

	// The app panics on critical startup errors, so we recover here to
	// provide a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked | %v", r)
		}
	}()

	releaseApp := app.NewApp(outW, appConfig, loader, nil)
	return releaseApp.Run(context.Background())
}

// selectLoader picks the config.Loader matching the release file's format.
func selectLoader(path string) (config.Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hclconfig.NewLoader(), nil
	case ".yaml", ".yml":
		return yamlconfig.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported release file format: %s", path)
	}
}
