package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecConfig_InterpreterDefault(t *testing.T) {
	t.Parallel()

	cfg := ExecConfig{PackageName: "fastneighbors", PackageVersion: "1.4.0"}
	assert.Equal(t, "python3.8", cfg.interpreter("3.8"))
	assert.Equal(t, "python3.12", cfg.interpreter("3.12"))
}

func TestExecConfig_InterpreterOverride(t *testing.T) {
	t.Parallel()

	cfg := ExecConfig{
		InterpreterCmd: func(version string) string { return "/opt/py/" + version + "/bin/python" },
	}
	assert.Equal(t, "/opt/py/3.8/bin/python", cfg.interpreter("3.8"))
}

func TestNewExecKit_AllCollaboratorsPresent(t *testing.T) {
	t.Parallel()

	kit := NewExecKit(ExecConfig{PackageName: "fastneighbors", PackageVersion: "1.4.0"})
	require.NotNil(t, kit)
	assert.NotNil(t, kit.Deps)
	assert.NotNil(t, kit.Builder)
	assert.NotNil(t, kit.Verifier)
	assert.NotNil(t, kit.Augmenter)
	assert.NotNil(t, kit.Tests)
}
