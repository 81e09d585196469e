package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/toolchain"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ReleasePath is the release definition file (HCL or YAML).
	ReleasePath string
	// SourceDir is the working-tree checkout the builders read from.
	SourceDir string
	// StagingDir receives published artifacts for the publishing sink.
	StagingDir string
	// WorkerCount bounds how many targets run in parallel.
	WorkerCount int
	// KeepSandbox leaves per-target sandboxes on disk for debugging.
	KeepSandbox     bool
	HealthcheckPort int
	LogFormat       string
	LogLevel        string
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model
	kit    *toolchain.Kit
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. A nil kit selects
// the process-backed toolchain; tests inject stubs instead.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, kit *toolchain.Kit) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// A failure to load the release definition is a fatal startup error.
	model, err := loader.Load(ctx, appConfig.ReleasePath)
	if err != nil {
		panic(fmt.Errorf("failed to load release definition: %w", err))
	}
	logger.Debug("Release definition loaded.", "package", model.Release.Name, "version", model.Release.Version)

	if kit == nil {
		kit = toolchain.NewExecKit(toolchain.ExecConfig{
			PackageName:    model.Release.Name,
			PackageVersion: model.Release.Version,
		})
		logger.Debug("Process-backed toolchain selected.")
	}

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		model:  model,
		kit:    kit,
	}
}

// Model returns the loaded release model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
