// Package gate implements the publish gate: the per-target decision of
// whether a verified artifact enters the staging area.
package gate

import (
	"context"
	"fmt"

	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/driver"
	"github.com/specialistvlad/wheelgrid/internal/staging"
)

// Gate copies artifacts of fully verified targets into the staging area.
// It runs once per target, as soon as that target's chain terminates;
// there is no cross-target barrier, so partial successes still publish.
type Gate struct {
	store *staging.Store
}

// New creates a gate over the shared staging area.
func New(store *staging.Store) *Gate {
	return &Gate{store: store}
}

// Publish applies the gate to one terminated chain and mutates the outcome
// to its final state: Tested becomes Published, everything else stays
// Failed and stages nothing.
func (g *Gate) Publish(ctx context.Context, out *driver.Outcome) {
	logger := ctxlog.FromContext(ctx).With("target", out.Target.ID())

	if out.State != driver.StateTested {
		// A chain that failed any step never reaches the staging area.
		out.State = driver.StateFailed
		logger.Debug("Publish gate closed.", "failed_step", out.FailedStep)
		return
	}
	if out.Artifact == nil {
		out.State = driver.StateFailed
		out.FailedStep = driver.StepPublish
		out.Err = &driver.StepError{Step: driver.StepPublish, Err: fmt.Errorf("tested target has no artifact")}
		logger.Error("Publish gate found no artifact for a tested target.")
		return
	}

	if err := g.store.Add(ctx, *out.Artifact); err != nil {
		out.State = driver.StateFailed
		out.FailedStep = driver.StepPublish
		out.Err = &driver.StepError{Step: driver.StepPublish, Err: err}
		logger.Error("Staging failed.", "error", err)
		return
	}

	out.State = driver.StatePublished
	logger.Info("Artifact published to staging area.", "artifact", out.Artifact.ID())
}
