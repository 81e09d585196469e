package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/wheelgrid/internal/app"
	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/executor"
	"github.com/specialistvlad/wheelgrid/internal/hclconfig"
	"github.com/specialistvlad/wheelgrid/internal/isolation"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
	"github.com/specialistvlad/wheelgrid/internal/toolchain"
	"github.com/specialistvlad/wheelgrid/internal/yamlconfig"
)

// Context returns a context carrying a debug logger writing into buf.
func Context(t *testing.T, buf *SafeBuffer) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger)
}

// EnvFactory returns an executor.EnvFactory provisioning sandboxes under
// the test's temporary directory, each with a small fake source tree for
// the named package.
func EnvFactory(t *testing.T, packageName string) executor.EnvFactory {
	t.Helper()
	return func(ctx context.Context, target matrix.Target) (*isolation.Environment, error) {
		root, err := os.MkdirTemp(t.TempDir(), "sandbox-*")
		if err != nil {
			return nil, err
		}
		env, err := isolation.NewEnvironment(root)
		if err != nil {
			return nil, err
		}
		pkgDir := filepath.Join(env.SourceDir, packageName)
		if err := os.MkdirAll(pkgDir, 0755); err != nil {
			return nil, err
		}
		content := fmt.Sprintf("# working-tree source for %s\n", target.ID())
		if err := os.WriteFile(filepath.Join(pkgDir, "__init__.py"), []byte(content), 0644); err != nil {
			return nil, err
		}
		return env, nil
	}
}

// HarnessResult holds the outcomes of a full application test run.
type HarnessResult struct {
	LogOutput  string
	Err        error
	App        *app.App
	StagingDir string
}

// StagedFiles lists the file names present in the staging directory.
func (r *HarnessResult) StagedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(r.StagingDir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// RunReleaseTest provides a standardized harness for running the whole
// application against a release definition file, with stubbed external
// collaborators. A nil kit exercises startup only up to the panic recovery.
func RunReleaseTest(t *testing.T, releaseFile string, releaseContent string, kit *toolchain.Kit) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	releasePath := filepath.Join(tmpDir, releaseFile)
	require.NoError(t, os.WriteFile(releasePath, []byte(releaseContent), 0644))

	sourceDir := filepath.Join(tmpDir, "checkout")
	require.NoError(t, os.MkdirAll(filepath.Join(sourceDir, "pkg"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "pkg", "__init__.py"), []byte("# source\n"), 0644))

	stagingDir := filepath.Join(tmpDir, "staging")

	appConfig := &app.Config{
		ReleasePath: releasePath,
		SourceDir:   sourceDir,
		StagingDir:  stagingDir,
		WorkerCount: 4,
		LogLevel:    "debug",
		LogFormat:   "text",
	}

	var loader config.Loader
	switch filepath.Ext(releaseFile) {
	case ".yaml", ".yml":
		loader = yamlconfig.NewLoader()
	default:
		loader = hclconfig.NewLoader()
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, loader, kit)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput:  logBuffer.String(),
			Err:        fmt.Errorf("application startup panicked | %v", panicErr),
			StagingDir: stagingDir,
		}
	}

	runErr := testApp.Run(context.Background())
	return &HarnessResult{
		LogOutput:  logBuffer.String(),
		Err:        runErr,
		App:        testApp,
		StagingDir: stagingDir,
	}
}
