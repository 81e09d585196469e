package isolation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
)

// Environment is the ephemeral verification sandbox of one target: a root
// directory holding the target's private source checkout, its artifact
// output directory and its install directory, plus the resolver and guard
// enforcing the isolation boundary between them.
type Environment struct {
	// Root is the sandbox root; everything below is target-private.
	Root string
	// SourceDir is the target's source checkout inside the sandbox.
	SourceDir string
	// ArtifactDir is where the builder writes the produced artifact.
	ArtifactDir string
	// InstallDir is where the install verifier places the artifact's
	// installed form.
	InstallDir string

	Resolver *Resolver
	Guard    *Guard

	// KeepOnCleanup leaves the sandbox on disk for debugging.
	KeepOnCleanup bool
}

// NewEnvironment lays out a sandbox under root and copies nothing: the
// caller decides how SourceDir is populated (checkout copy for real runs,
// a throwaway tree in tests).
func NewEnvironment(root string) (*Environment, error) {
	env := &Environment{
		Root:        root,
		SourceDir:   filepath.Join(root, "src"),
		ArtifactDir: filepath.Join(root, "artifacts"),
		InstallDir:  filepath.Join(root, "installed"),
	}
	for _, dir := range []string{env.SourceDir, env.ArtifactDir, env.InstallDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create sandbox directory %s: %w", dir, err)
		}
	}
	env.Resolver = NewResolver(env.SourceDir, env.InstallDir)
	env.Guard = NewGuard(env.SourceDir)
	return env, nil
}

// Isolate applies the boundary: the source tree is relocated and the
// resolver switches to the installed namespace. Idempotent per target.
func (e *Environment) Isolate(ctx context.Context) error {
	if err := e.Guard.Isolate(ctx); err != nil {
		return err
	}
	e.Resolver.Switch(NamespaceInstalled)
	return nil
}

// Cleanup releases the sandbox: the source tree is restored and, unless
// KeepOnCleanup is set, the sandbox root is removed. It runs under the
// caller's grace-period context.
func (e *Environment) Cleanup(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	if err := e.Guard.Restore(ctx); err != nil {
		return err
	}
	e.Resolver.Switch(NamespaceWorkspace)

	if e.KeepOnCleanup {
		logger.Debug("Sandbox kept for inspection.", "root", e.Root)
		return nil
	}
	if err := os.RemoveAll(e.Root); err != nil {
		return fmt.Errorf("failed to remove sandbox %s: %w", e.Root, err)
	}
	logger.Debug("Sandbox removed.", "root", e.Root)
	return nil
}
