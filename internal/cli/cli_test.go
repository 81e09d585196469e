package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PositionalReleasePath(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"release.hcl"}, out)

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "release.hcl", cfg.ReleasePath)
	assert.Equal(t, ".", cfg.SourceDir)
	assert.Equal(t, "dist/staging", cfg.StagingDir)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_FlagsOverrideDefaults(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{
		"-r", "rel.yaml",
		"-source", "/checkout",
		"-staging", "/tmp/out",
		"-workers", "8",
		"-keep-sandbox",
		"-log-format", "TEXT",
		"-log-level", "DEBUG",
	}, out)

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "rel.yaml", cfg.ReleasePath)
	assert.Equal(t, "/checkout", cfg.SourceDir)
	assert.Equal(t, "/tmp/out", cfg.StagingDir)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.True(t, cfg.KeepSandbox)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"bad log format", []string{"-log-format", "xml", "release.hcl"}, "invalid log-format"},
		{"bad log level", []string{"-log-level", "loud", "release.hcl"}, "invalid log-level"},
		{"zero workers", []string{"-workers", "0", "release.hcl"}, "invalid workers"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			_, _, err := Parse(tc.args, out)

			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
