package driver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/wheelgrid/internal/artifact"
	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/isolation"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
	"github.com/specialistvlad/wheelgrid/internal/toolchain"
)

// Step identities recorded in diagnostics when a chain fails.
const (
	StepProvisionSandbox    = "provision-sandbox"
	StepInstallDeps         = "install-deps"
	StepBuild               = "build"
	StepIsolateSource       = "isolate-source"
	StepInstallArtifact     = "install-artifact"
	StepInstallOptionalDeps = "install-optional-deps"
	StepRunTests            = "run-tests"
	StepPublish             = "publish"
)

// Outcome is the verdict of one target after its chain terminated. The
// publish gate later promotes Tested outcomes to Published.
type Outcome struct {
	Target     matrix.Target
	State      State
	Artifact   *artifact.Artifact
	FailedStep string
	Err        error
}

// Failed reports whether the target ended in failure.
func (o *Outcome) Failed() bool {
	return o.State == StateFailed
}

// Driver owns one target's chain. It is not reusable: a retry of a failed
// target is a fresh driver starting from Pending.
type Driver struct {
	target  matrix.Target
	kit     *toolchain.Kit
	env     *isolation.Environment
	release config.Release
	verify  config.Verify

	state atomic.Int32
}

// New creates a driver for one target over its private sandbox.
func New(t matrix.Target, kit *toolchain.Kit, env *isolation.Environment, release config.Release, verify config.Verify) *Driver {
	return &Driver{
		target:  t,
		kit:     kit,
		env:     env,
		release: release,
		verify:  verify,
	}
}

// State returns the target's current state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// advance moves the state machine forward by exactly one step. Transitions
// are forward-only; anything else is a programmer error.
func (d *Driver) advance(from, to State) {
	if !d.state.CompareAndSwap(int32(from), int32(to)) {
		panic(fmt.Sprintf("driver %s: invalid transition %s -> %s (current %s)",
			d.target.ID(), from, to, d.State()))
	}
}

// step is one link of the chain: a named transition plus the call that
// earns it.
type step struct {
	name string
	from State
	to   State
	fn   func(ctx context.Context) error
}

// Run drives the target's chain to a terminal verdict. The chain is bounded
// by the configured per-target timeout (when set); cleanup runs afterwards
// under the separate grace period so it cannot extend the deadline.
func (d *Driver) Run(ctx context.Context) *Outcome {
	logger := ctxlog.FromContext(ctx).With("target", d.target.ID())
	ctx = ctxlog.WithLogger(ctx, logger)

	if d.verify.TargetTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.verify.TargetTimeout)
		defer cancel()
	}
	defer d.cleanup(ctx)

	outcome := &Outcome{Target: d.target, State: StatePending}

	var built artifact.Artifact
	chain := []step{
		{StepInstallDeps, StatePending, StateDepsInstalled, func(ctx context.Context) error {
			err := d.withRetries(ctx, func(ctx context.Context) error {
				return d.kit.Deps.InstallDeps(ctx, d.env, d.target)
			})
			return classify(ErrDependencyInstall, err)
		}},
		{StepBuild, StateDepsInstalled, StateBuilt, func(ctx context.Context) error {
			a, err := d.kit.Builder.Build(ctx, d.env, d.target)
			if err != nil {
				return classify(ErrBuild, err)
			}
			built = a
			outcome.Artifact = &built
			return nil
		}},
		{StepIsolateSource, StateBuilt, StateIsolated, func(ctx context.Context) error {
			return classify(ErrIsolation, d.env.Isolate(ctx))
		}},
		{StepInstallArtifact, StateIsolated, StateInstalled, func(ctx context.Context) error {
			return classify(ErrInstallVerification, d.kit.Verifier.VerifyInstall(ctx, d.env, d.target, built))
		}},
		{StepInstallOptionalDeps, StateInstalled, StateOptionalDepsInstalled, func(ctx context.Context) error {
			err := d.withRetries(ctx, func(ctx context.Context) error {
				return d.kit.Augmenter.InstallOptional(ctx, d.env, d.target, d.verify.OptionalPackages)
			})
			return classify(ErrOptionalDependency, err)
		}},
		{StepRunTests, StateOptionalDepsInstalled, StateTested, d.runTests},
	}

	for _, s := range chain {
		logger.Debug("Step starting.", "step", s.name)
		if err := s.fn(ctx); err != nil {
			d.state.Store(int32(StateFailed))
			outcome.State = StateFailed
			outcome.FailedStep = s.name
			outcome.Err = &StepError{Step: s.name, Err: err}
			logger.Error("Step failed, skipping remainder of chain.", "step", s.name, "error", err)
			return outcome
		}
		d.advance(s.from, s.to)
		outcome.State = s.to
		logger.Debug("Step completed.", "step", s.name, "state", s.to)
	}

	logger.Info("Target verified.", "package", d.release.Name, "artifact", built.ID())
	return outcome
}

// runTests executes the suite under its own hard wall-clock timeout,
// tighter than any overall target timeout.
func (d *Driver) runTests(ctx context.Context) error {
	testCtx := ctx
	if d.verify.TestTimeout > 0 {
		var cancel context.CancelFunc
		testCtx, cancel = context.WithTimeout(ctx, d.verify.TestTimeout)
		defer cancel()
	}

	err := d.kit.Tests.RunTests(testCtx, d.env, d.target)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(testCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTestTimeout, err)
	}
	return classify(ErrTest, err)
}

// withRetries re-runs a network-dependent step up to the configured retry
// count. Only the failed step is retried, never the chain.
func (d *Driver) withRetries(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= d.verify.InstallRetries; attempt++ {
		if attempt > 0 {
			ctxlog.FromContext(ctx).Warn("Retrying install step.", "attempt", attempt, "error", err)
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

// cleanup releases the verification environment under the grace period,
// detached from the chain's own (possibly exceeded) deadline.
func (d *Driver) cleanup(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	grace := d.verify.GracePeriod
	if grace <= 0 {
		grace = config.DefaultGracePeriod
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()

	if err := d.env.Cleanup(cleanupCtx); err != nil {
		logger.Warn("Sandbox cleanup failed.", "error", err)
	}
}

// classify wraps a collaborator error with its step's failure class.
func classify(class error, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", class, err)
}
