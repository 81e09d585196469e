package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/driver"
	"github.com/specialistvlad/wheelgrid/internal/gate"
	"github.com/specialistvlad/wheelgrid/internal/isolation"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
	"github.com/specialistvlad/wheelgrid/internal/staging"
	"github.com/specialistvlad/wheelgrid/internal/toolchain"
)

// EnvFactory provisions one private verification environment per target.
type EnvFactory func(ctx context.Context, t matrix.Target) (*isolation.Environment, error)

// Executor fans the target set out over a worker pool and gates each
// outcome into the staging area.
type Executor struct {
	kit        *toolchain.Kit
	gate       *gate.Gate
	envFactory EnvFactory
	release    config.Release
	verify     config.Verify
	numWorkers int
}

// New creates an executor. workers is clamped to at least 1.
func New(kit *toolchain.Kit, store *staging.Store, envFactory EnvFactory, release config.Release, verify config.Verify, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		kit:        kit,
		gate:       gate.New(store),
		envFactory: envFactory,
		release:    release,
		verify:     verify,
		numWorkers: workers,
	}
}

// Run executes every target and returns all outcomes in target order. The
// returned error is non-nil if any target failed: the run status is
// non-partial even when sibling targets published their artifacts.
func (e *Executor) Run(ctx context.Context, targets []matrix.Target) ([]*driver.Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	outcomes := make([]*driver.Outcome, len(targets))
	work := make(chan int, len(targets))
	for i := range targets {
		work <- i
	}
	close(work)

	var wg sync.WaitGroup
	wg.Add(e.numWorkers)
	logger.Debug("Starting worker pool.", "workers", e.numWorkers, "targets", len(targets))
	for w := 0; w < e.numWorkers; w++ {
		go func(workerID int) {
			defer wg.Done()
			for i := range work {
				outcomes[i] = e.runTarget(ctx, targets[i], workerID)
			}
		}(w)
	}
	wg.Wait()
	logger.Debug("All targets terminated.")

	return outcomes, e.verdict(outcomes)
}

// runTarget drives one target's chain to its terminal state and applies
// the publish gate. Failures are target-local by construction.
func (e *Executor) runTarget(ctx context.Context, t matrix.Target, workerID int) *driver.Outcome {
	logger := ctxlog.FromContext(ctx).With("workerID", workerID, "target", t.ID())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Worker picked up target.")

	env, err := e.envFactory(ctx, t)
	if err != nil {
		return &driver.Outcome{
			Target:     t,
			State:      driver.StateFailed,
			FailedStep: driver.StepProvisionSandbox,
			Err:        &driver.StepError{Step: driver.StepProvisionSandbox, Err: fmt.Errorf("failed to provision sandbox: %w", err)},
		}
	}

	d := driver.New(t, e.kit, env, e.release, e.verify)
	out := d.Run(ctx)
	e.gate.Publish(ctx, out)
	return out
}

// verdict folds per-target outcomes into the run-level result: failed
// target IDs sorted for determinism, wrapping the first root cause.
func (e *Executor) verdict(outcomes []*driver.Outcome) error {
	var failed []string
	var rootCause error
	for _, out := range outcomes {
		if out == nil || !out.Failed() {
			continue
		}
		failed = append(failed, out.Target.ID())
		if rootCause == nil && out.Err != nil {
			rootCause = out.Err
		}
	}
	if len(failed) == 0 {
		return nil
	}
	sort.Strings(failed)
	if rootCause == nil {
		rootCause = fmt.Errorf("target failed without recorded error")
	}
	return fmt.Errorf("release failed for %s: %w", strings.Join(failed, ", "), rootCause)
}
