package integrationtests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/driver"
	"github.com/specialistvlad/wheelgrid/internal/executor"
	"github.com/specialistvlad/wheelgrid/internal/matrix"
	"github.com/specialistvlad/wheelgrid/internal/staging"
	"github.com/specialistvlad/wheelgrid/internal/testutil"
)

var release = config.Release{Name: "fastneighbors", Version: "1.4.0"}

func fullMatrixModel() *config.Model {
	m := &config.Model{
		Release: release,
		Matrix: config.Matrix{
			OSes:         []string{"linux", "windows"},
			Interpreters: []string{"3.7", "3.8"},
		},
		Source: config.SourceJob{Interpreter: "3.8"},
		Verify: config.Verify{
			OptionalPackages: []string{"numpy-accel", "fastdist"},
			TestTimeout:      time.Minute,
			GracePeriod:      5 * time.Second,
		},
	}
	return m
}

func runRelease(t *testing.T, model *config.Model, stub *testutil.StubToolchain) (*staging.Store, []*driver.Outcome, error) {
	t.Helper()
	targets, err := matrix.Expand(model)
	require.NoError(t, err)

	store := staging.NewStore("")
	exec := executor.New(stub.Kit(), store, testutil.EnvFactory(t, release.Name), model.Release, model.Verify, 4)
	buf := &testutil.SafeBuffer{}
	outcomes, runErr := exec.Run(testutil.Context(t, buf), targets)
	return store, outcomes, runErr
}

// Scenario A: a 2×2 matrix where everything succeeds stages five artifacts
// with five distinct identities.
func TestScenario_FullMatrixSuccess(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubToolchain(release.Name, release.Version)
	store, outcomes, err := runRelease(t, fullMatrixModel(), stub)

	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	assert.Equal(t, 5, store.Len())
	assert.Equal(t, []string{
		"fastneighbors-1.4.0",
		"fastneighbors-1.4.0-cp37-linux",
		"fastneighbors-1.4.0-cp37-windows",
		"fastneighbors-1.4.0-cp38-linux",
		"fastneighbors-1.4.0-cp38-windows",
	}, store.IDs())
}

// Scenario B: the test runner exceeds its timeout for one target; the rest
// of the matrix still publishes, but the run as a whole is a failure.
func TestScenario_TestTimeoutFailsOneTarget(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubToolchain(release.Name, release.Version)
	stub.SlowFor = map[string]time.Duration{"binary/windows/3.8": 10 * time.Second}

	model := fullMatrixModel()
	model.Verify.TestTimeout = 100 * time.Millisecond

	store, outcomes, err := runRelease(t, model, stub)

	require.Error(t, err, "the run status is non-partial: one failed target fails the run")
	assert.Equal(t, 4, store.Len())
	for _, out := range outcomes {
		if out.Target.ID() == "binary/windows/3.8" {
			assert.Equal(t, driver.StateFailed, out.State)
			assert.ErrorIs(t, out.Err, driver.ErrTestTimeout)
			_, staged := store.Get("fastneighbors-1.4.0-cp38-windows")
			assert.False(t, staged)
			continue
		}
		assert.Equal(t, driver.StatePublished, out.State)
	}
}

// Scenario C: the optional-dependency augmenter fails for one target; the
// test runner never executes for it and the diagnostic names the step.
func TestScenario_OptionalDependencyFailureStopsBeforeTests(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubToolchain(release.Name, release.Version)
	stub.FailFor = map[string]string{"binary/linux/3.7": "install-optional-deps"}

	store, outcomes, err := runRelease(t, fullMatrixModel(), stub)

	require.Error(t, err)
	assert.Equal(t, 4, store.Len())

	for _, out := range outcomes {
		if out.Target.ID() != "binary/linux/3.7" {
			continue
		}
		assert.Equal(t, driver.StateFailed, out.State)
		assert.Equal(t, driver.StepInstallOptionalDeps, out.FailedStep)
		assert.ErrorIs(t, out.Err, driver.ErrOptionalDependency)
	}
	assert.NotContains(t, stub.Calls("binary/linux/3.7"), "run-tests",
		"the test runner must never execute after an optional-dependency failure")
}

// Scenario D: an empty OS axis aborts the run before any target executes.
func TestScenario_EmptyAxisAbortsRun(t *testing.T) {
	t.Parallel()

	model := fullMatrixModel()
	model.Matrix.OSes = nil

	targets, err := matrix.Expand(model)
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
	assert.Empty(t, targets, "zero artifacts produced, zero targets executed")
}

// Staging membership is exactly the set of Published targets.
func TestStagingMatchesPublishedStates(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubToolchain(release.Name, release.Version)
	stub.FailFor = map[string]string{
		"binary/linux/3.8": "build",
		"source/3.8":       "install-artifact",
	}

	store, outcomes, err := runRelease(t, fullMatrixModel(), stub)
	require.Error(t, err)

	for _, out := range outcomes {
		if out.Artifact == nil {
			assert.Equal(t, driver.StateFailed, out.State)
			continue
		}
		_, staged := store.Get(out.Artifact.ID())
		assert.Equal(t, out.State == driver.StatePublished, staged,
			"target %s: staged iff Published", out.Target.ID())
	}
}
