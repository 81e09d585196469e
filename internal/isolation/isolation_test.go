package isolation

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return ctxlog.WithLogger(context.Background(), logger)
}

func newTestEnv(t *testing.T) *Environment {
	t.Helper()
	env, err := NewEnvironment(filepath.Join(t.TempDir(), "sandbox"))
	require.NoError(t, err)
	return env
}

func writePackage(t *testing.T, root, pkg, content string) {
	t.Helper()
	dir := filepath.Join(root, pkg)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "__init__.py"), []byte(content), 0644))
}

func TestResolver_WorkspaceIsActiveInitially(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")

	assert.Equal(t, NamespaceWorkspace, env.Resolver.Active())
	path, err := env.Resolver.Resolve("fastneighbors")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(env.SourceDir, "fastneighbors"), path)
}

func TestResolver_NeverAmbiguous(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	// The package exists in BOTH namespaces with different content.
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")
	writePackage(t, env.InstallDir, "fastneighbors", "# installed\n")

	env.Resolver.Switch(NamespaceInstalled)
	path, err := env.Resolver.Resolve("fastneighbors")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(path, "__init__.py"))
	require.NoError(t, err)
	assert.Equal(t, "# installed\n", string(content), "resolution must come from the active namespace only")
}

func TestResolver_MissingFromActiveNamespaceFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	// Present in the workspace, absent from the installed namespace.
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")

	env.Resolver.Switch(NamespaceInstalled)
	_, err := env.Resolver.Resolve("fastneighbors")
	require.Error(t, err, "the inactive namespace must never satisfy a resolution")
	assert.Contains(t, err.Error(), "installed namespace")
}

func TestGuard_RelocatesWithoutDeleting(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")
	ctx := testContext()

	require.NoError(t, env.Guard.Isolate(ctx))
	assert.True(t, env.Guard.Isolated())

	// Gone from the resolvable location, intact at the relocated one.
	_, err := os.Stat(env.SourceDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(env.Guard.RelocatedPath(), "fastneighbors", "__init__.py"))
	assert.NoError(t, err)
}

func TestGuard_IsolateIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := testContext()

	require.NoError(t, env.Guard.Isolate(ctx))
	require.NoError(t, env.Guard.Isolate(ctx), "second isolation of the same target is a no-op")
	assert.True(t, env.Guard.Isolated())
}

func TestGuard_RestoreRoundTrips(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")
	ctx := testContext()

	require.NoError(t, env.Guard.Isolate(ctx))
	require.NoError(t, env.Guard.Restore(ctx))
	assert.False(t, env.Guard.Isolated())

	content, err := os.ReadFile(filepath.Join(env.SourceDir, "fastneighbors", "__init__.py"))
	require.NoError(t, err)
	assert.Equal(t, "# source\n", string(content))

	// Restore without a prior Isolate is a no-op.
	require.NoError(t, env.Guard.Restore(ctx))
}

func TestEnvironment_IsolateSwitchesNamespace(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")
	writePackage(t, env.InstallDir, "fastneighbors", "# installed\n")

	require.NoError(t, env.Isolate(testContext()))

	assert.Equal(t, NamespaceInstalled, env.Resolver.Active())
	path, err := env.Resolver.Resolve("fastneighbors")
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(path, "__init__.py"))
	require.NoError(t, err)
	assert.Equal(t, "# installed\n", string(content))
}

func TestEnvironment_CleanupRestoresAndRemoves(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")
	ctx := testContext()

	require.NoError(t, env.Isolate(ctx))
	require.NoError(t, env.Cleanup(ctx))

	_, err := os.Stat(env.Root)
	assert.True(t, os.IsNotExist(err), "sandbox root should be removed")
}

func TestEnvironment_CleanupKeepsSandboxWhenAsked(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.KeepOnCleanup = true
	writePackage(t, env.SourceDir, "fastneighbors", "# source\n")
	ctx := testContext()

	require.NoError(t, env.Isolate(ctx))
	require.NoError(t, env.Cleanup(ctx))

	// Kept, and the source tree is back in place.
	_, err := os.Stat(filepath.Join(env.SourceDir, "fastneighbors", "__init__.py"))
	assert.NoError(t, err)
	assert.Equal(t, NamespaceWorkspace, env.Resolver.Active())
}
