package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *Model {
	return &Model{
		Release: Release{Name: "fastneighbors", Version: "1.4.0"},
		Matrix:  Matrix{OSes: []string{"linux"}, Interpreters: []string{"3.8"}},
		Source:  SourceJob{Interpreter: "3.8"},
	}
}

func TestValidate_AcceptsWellFormedModel(t *testing.T) {
	t.Parallel()
	require.NoError(t, validModel().Validate())
}

func TestValidate_RejectsMalformedModels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Model)
		field  string
	}{
		{"empty package name", func(m *Model) { m.Release.Name = "" }, "release.name"},
		{"empty version", func(m *Model) { m.Release.Version = "" }, "release.version"},
		{"empty os axis", func(m *Model) { m.Matrix.OSes = nil }, "matrix.os"},
		{"empty interpreter axis", func(m *Model) { m.Matrix.Interpreters = []string{} }, "matrix.interpreters"},
		{"missing source interpreter", func(m *Model) { m.Source.Interpreter = "" }, "source.interpreter"},
		{"negative retries", func(m *Model) { m.Verify.InstallRetries = -1 }, "verify.install_retries"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := validModel()
			tc.mutate(m)

			err := m.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	m := validModel()
	m.ApplyDefaults()
	assert.Equal(t, 15*time.Minute, m.Verify.TestTimeout)
	assert.Equal(t, 30*time.Second, m.Verify.GracePeriod)
	assert.Zero(t, m.Verify.TargetTimeout, "per-target timeout is unbounded by default")

	// Explicit values survive.
	m2 := validModel()
	m2.Verify.TestTimeout = time.Minute
	m2.ApplyDefaults()
	assert.Equal(t, time.Minute, m2.Verify.TestTimeout)
}
