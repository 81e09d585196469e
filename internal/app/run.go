package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/executor"
	"github.com/specialistvlad/wheelgrid/internal/fsutil"
	"github.com/specialistvlad/wheelgrid/internal/isolation"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
	"github.com/specialistvlad/wheelgrid/internal/staging"
)

// Run executes the full release: matrix expansion, parallel target chains,
// and the publish gate. The returned error is nil only if every expanded
// target reached Published.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	// A malformed matrix aborts the whole run before any target starts.
	targets, err := matrix.Expand(a.model)
	if err != nil {
		return fmt.Errorf("failed to expand target matrix: %w", err)
	}
	a.logger.Info("Target matrix expanded.", "targets", len(targets))

	if err := os.MkdirAll(a.config.StagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	store := staging.NewStore(a.config.StagingDir)

	exec := executor.New(a.kit, store, a.newEnvironment, a.model.Release, a.model.Verify, a.config.WorkerCount)
	a.logger.Info("🚀 Starting release run...", "package", a.model.Release.Name, "version", a.model.Release.Version)
	outcomes, runErr := exec.Run(ctx, targets)

	for _, out := range outcomes {
		if out.Failed() {
			a.logger.Error("Target failed.", "target", out.Target.ID(), "failed_step", out.FailedStep, "error", out.Err)
		} else {
			a.logger.Info("Target published.", "target", out.Target.ID(), "artifact", out.Artifact.ID())
		}
	}
	wheels, _ := fsutil.FindFilesByExtension(store.Dir(), ".whl")
	sdists, _ := fsutil.FindFilesByExtension(store.Dir(), ".tar.gz")
	a.logger.Info("🏁 Release run finished.",
		"staged", store.Len(),
		"targets", len(targets),
		"staging_dir", store.Dir(),
		"staged_files", len(wheels)+len(sdists))

	if runErr != nil {
		return fmt.Errorf("release run failed: %w", runErr)
	}
	return nil
}

// newEnvironment provisions one target's private sandbox with its own copy
// of the working-tree checkout, so concurrent builders never share a
// mutable source directory.
func (a *App) newEnvironment(ctx context.Context, t matrix.Target) (*isolation.Environment, error) {
	root, err := os.MkdirTemp("", "wheelgrid-"+strings.ReplaceAll(t.ID(), "/", "-")+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox root: %w", err)
	}

	env, err := isolation.NewEnvironment(root)
	if err != nil {
		return nil, err
	}
	env.KeepOnCleanup = a.config.KeepSandbox

	if err := fsutil.CopyDir(a.config.SourceDir, env.SourceDir); err != nil {
		return nil, fmt.Errorf("failed to copy source checkout into sandbox: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Sandbox provisioned.", "root", root)
	return env, nil
}
