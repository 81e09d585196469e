package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/specialistvlad/wheelgrid/internal/artifact"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/isolation"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
)

// ExecConfig parameterizes the process-backed toolchain.
type ExecConfig struct {
	// Package identity, used for install verification and test selection.
	PackageName    string
	PackageVersion string

	// InterpreterCmd maps an interpreter version to a launcher binary.
	// Nil means "python" + version, e.g. "python3.8".
	InterpreterCmd func(version string) string
}

func (c ExecConfig) interpreter(version string) string {
	if c.InterpreterCmd != nil {
		return c.InterpreterCmd(version)
	}
	return "python" + version
}

// NewExecKit returns a Kit whose collaborators shell out to the real
// interpreter and packaging tools.
func NewExecKit(cfg ExecConfig) *Kit {
	return &Kit{
		Deps:      &execDepInstaller{cfg: cfg},
		Builder:   &execBuilder{cfg: cfg},
		Verifier:  &execVerifier{cfg: cfg},
		Augmenter: &execAugmenter{cfg: cfg},
		Tests:     &execTestRunner{cfg: cfg},
	}
}

// runCommand executes one external process inside the sandbox and folds a
// non-zero exit status, plus the process output, into the returned error.
func runCommand(ctx context.Context, dir string, name string, args ...string) error {
	return runCommandEnv(ctx, dir, nil, name, args...)
}

func runCommandEnv(ctx context.Context, dir string, extraEnv []string, name string, args ...string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Invoking external collaborator.", "cmd", name, "args", args, "dir", dir)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s exited abnormally: %w\n%s", name, err, output.String())
	}
	return nil
}

type execDepInstaller struct {
	cfg ExecConfig
}

func (d *execDepInstaller) InstallDeps(ctx context.Context, env *isolation.Environment, t matrix.Target) error {
	py := d.cfg.interpreter(t.Interpreter)
	return runCommand(ctx, env.SourceDir, py, "-m", "pip", "install", "--upgrade", "build", "setuptools", "wheel")
}

type execBuilder struct {
	cfg ExecConfig
}

func (b *execBuilder) Build(ctx context.Context, env *isolation.Environment, t matrix.Target) (artifact.Artifact, error) {
	py := b.cfg.interpreter(t.Interpreter)
	mode := "--wheel"
	if t.Kind == matrix.KindSource {
		mode = "--sdist"
	}
	if err := runCommand(ctx, env.SourceDir, py, "-m", "build", mode, "--outdir", env.ArtifactDir); err != nil {
		return artifact.Artifact{}, err
	}

	a := artifact.New(b.cfg.PackageName, b.cfg.PackageVersion, t)
	matches, err := filepath.Glob(filepath.Join(env.ArtifactDir, "*"))
	if err != nil || len(matches) == 0 {
		return artifact.Artifact{}, fmt.Errorf("builder produced no artifact in %s", env.ArtifactDir)
	}
	if len(matches) > 1 {
		return artifact.Artifact{}, fmt.Errorf("builder produced %d files in %s, expected exactly one", len(matches), env.ArtifactDir)
	}
	a.Path = matches[0]
	return a, nil
}

type execVerifier struct {
	cfg ExecConfig
}

func (v *execVerifier) VerifyInstall(ctx context.Context, env *isolation.Environment, t matrix.Target, a artifact.Artifact) error {
	py := v.cfg.interpreter(t.Interpreter)
	// --no-index forbids the remote package index; only the freshly built
	// artifact can satisfy the requirement.
	return runCommand(ctx, env.Root, py, "-m", "pip", "install",
		"--no-index",
		"--find-links", env.ArtifactDir,
		"--target", env.InstallDir,
		fmt.Sprintf("%s==%s", v.cfg.PackageName, v.cfg.PackageVersion),
	)
}

type execAugmenter struct {
	cfg ExecConfig
}

func (g *execAugmenter) InstallOptional(ctx context.Context, env *isolation.Environment, t matrix.Target, packages []string) error {
	if len(packages) == 0 {
		return nil
	}
	py := g.cfg.interpreter(t.Interpreter)
	args := append([]string{"-m", "pip", "install", "--target", env.InstallDir}, packages...)
	return runCommand(ctx, env.Root, py, args...)
}

type execTestRunner struct {
	cfg ExecConfig
}

func (r *execTestRunner) RunTests(ctx context.Context, env *isolation.Environment, t matrix.Target) error {
	py := r.cfg.interpreter(t.Interpreter)
	// Run from the sandbox root, not the (relocated) source tree, so the
	// suite can only import the installed artifact.
	return runCommandEnv(ctx, env.Root, []string{"PYTHONPATH=" + env.InstallDir},
		py, "-m", "pytest", "--pyargs", r.cfg.PackageName)
}
