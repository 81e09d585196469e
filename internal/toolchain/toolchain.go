package toolchain

import (
	"context"

	"github.com/specialistvlad/wheelgrid/internal/artifact"
	"github.com/specialistvlad/wheelgrid/internal/isolation"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
)

// DepInstaller installs the build-time tooling a target needs before its
// artifact can be built.
type DepInstaller interface {
	InstallDeps(ctx context.Context, env *isolation.Environment, t matrix.Target) error
}

// Builder produces exactly one artifact for the target, written under
// env.ArtifactDir, or fails.
type Builder interface {
	Build(ctx context.Context, env *isolation.Environment, t matrix.Target) (artifact.Artifact, error)
}

// InstallVerifier installs the just-built artifact into env.InstallDir
// from local files only; any attempt to reach a remote package index must
// be refused so the artifact is proven self-contained.
type InstallVerifier interface {
	VerifyInstall(ctx context.Context, env *isolation.Environment, t matrix.Target, a artifact.Artifact) error
}

// Augmenter installs the fixed set of optional runtime packages whose
// presence the software under test detects conditionally.
type Augmenter interface {
	InstallOptional(ctx context.Context, env *isolation.Environment, t matrix.Target, packages []string) error
}

// TestRunner executes the verification suite against the installed
// artifact. The caller bounds it with a hard wall-clock timeout.
type TestRunner interface {
	RunTests(ctx context.Context, env *isolation.Environment, t matrix.Target) error
}

// Kit bundles the five collaborators a driver needs.
type Kit struct {
	Deps      DepInstaller
	Builder   Builder
	Verifier  InstallVerifier
	Augmenter Augmenter
	Tests     TestRunner
}
