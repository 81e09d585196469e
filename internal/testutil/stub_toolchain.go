package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/specialistvlad/wheelgrid/internal/artifact"
	"github.com/specialistvlad/wheelgrid/internal/isolation"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
	"github.com/specialistvlad/wheelgrid/internal/toolchain"
)

// StubToolchain is a fully in-process stand-in for the external
// collaborators. Each step can be failed globally or per target, and every
// invocation is recorded so tests can assert which steps ran.
type StubToolchain struct {
	PackageName    string
	PackageVersion string

	// Per-step failure injection. A FailFor map scopes the failure to the
	// listed target IDs; the plain error applies to every target.
	DepsErr     error
	BuildErr    error
	VerifyErr   error
	OptionalErr error
	TestsErr    error
	FailFor     map[string]string // target ID -> step name to fail

	// TestDelay makes the test-runner step sleep, to trigger timeouts.
	// SlowFor scopes the sleep to specific target IDs.
	TestDelay time.Duration
	SlowFor   map[string]time.Duration

	mu    sync.Mutex
	calls map[string][]string // target ID -> invoked step names
}

// NewStubToolchain creates an all-success stub for the given package.
func NewStubToolchain(name, version string) *StubToolchain {
	return &StubToolchain{
		PackageName:    name,
		PackageVersion: version,
		calls:          map[string][]string{},
	}
}

// Kit bundles the stub into the shape the driver consumes.
func (s *StubToolchain) Kit() *toolchain.Kit {
	return &toolchain.Kit{
		Deps:      stubStep{s, "install-deps"},
		Builder:   stubBuilder{s},
		Verifier:  stubVerifier{s},
		Augmenter: stubAugmenter{s},
		Tests:     stubTests{s},
	}
}

// Calls returns the step names invoked for the given target, in order.
func (s *StubToolchain) Calls(targetID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls[targetID]...)
}

func (s *StubToolchain) record(t matrix.Target, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[t.ID()] = append(s.calls[t.ID()], step)
}

func (s *StubToolchain) failure(t matrix.Target, step string, global error) error {
	if s.FailFor != nil && s.FailFor[t.ID()] == step {
		return errStubFailure(step)
	}
	return global
}

type errStubFailure string

func (e errStubFailure) Error() string {
	return "stub failure injected at " + string(e)
}

type stubStep struct {
	s    *StubToolchain
	name string
}

func (st stubStep) InstallDeps(ctx context.Context, env *isolation.Environment, t matrix.Target) error {
	st.s.record(t, st.name)
	return st.s.failure(t, st.name, st.s.DepsErr)
}

type stubBuilder struct {
	s *StubToolchain
}

func (sb stubBuilder) Build(ctx context.Context, env *isolation.Environment, t matrix.Target) (artifact.Artifact, error) {
	sb.s.record(t, "build")
	if err := sb.s.failure(t, "build", sb.s.BuildErr); err != nil {
		return artifact.Artifact{}, err
	}

	a := artifact.New(sb.s.PackageName, sb.s.PackageVersion, t)
	a.Path = filepath.Join(env.ArtifactDir, a.Filename())
	content := "stub artifact " + a.ID() + "\n"
	if err := os.WriteFile(a.Path, []byte(content), 0644); err != nil {
		return artifact.Artifact{}, err
	}
	return a, nil
}

type stubVerifier struct {
	s *StubToolchain
}

func (sv stubVerifier) VerifyInstall(ctx context.Context, env *isolation.Environment, t matrix.Target, a artifact.Artifact) error {
	sv.s.record(t, "install-artifact")
	if err := sv.s.failure(t, "install-artifact", sv.s.VerifyErr); err != nil {
		return err
	}
	// Materialize an "installed" copy of the package so the isolation
	// resolver has something to resolve to.
	pkgDir := filepath.Join(env.InstallDir, sv.s.PackageName)
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pkgDir, "__init__.py"), []byte("# installed from "+a.ID()+"\n"), 0644)
}

type stubAugmenter struct {
	s *StubToolchain
}

func (sa stubAugmenter) InstallOptional(ctx context.Context, env *isolation.Environment, t matrix.Target, packages []string) error {
	sa.s.record(t, "install-optional-deps")
	return sa.s.failure(t, "install-optional-deps", sa.s.OptionalErr)
}

type stubTests struct {
	s *StubToolchain
}

func (st stubTests) RunTests(ctx context.Context, env *isolation.Environment, t matrix.Target) error {
	st.s.record(t, "run-tests")
	delay := st.s.TestDelay
	if d, ok := st.s.SlowFor[t.ID()]; ok {
		delay = d
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return st.s.failure(t, "run-tests", st.s.TestsErr)
}
