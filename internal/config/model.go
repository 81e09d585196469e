// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"context"
	"time"
)

// Default timeouts applied when the release file leaves them unset.
const (
	DefaultTestTimeout = 15 * time.Minute
	DefaultGracePeriod = 30 * time.Second
)

// Model is the root of a loaded release definition.
type Model struct {
	Release Release
	Matrix  Matrix
	Source  SourceJob
	Verify  Verify
}

// Release identifies the package being released.
type Release struct {
	Name    string
	Version string
}

// Matrix declares the axes of the binary build matrix. Binary targets are
// the cartesian product of the two axes.
type Matrix struct {
	OSes         []string
	Interpreters []string
}

// SourceJob configures the single source-distribution target.
type SourceJob struct {
	// Interpreter is the fixed interpreter version used to produce and
	// verify the source artifact.
	Interpreter string
}

// Verify configures the verification chain applied to every target.
type Verify struct {
	// OptionalPackages is the fixed, named set of optional runtime packages
	// installed before the test run to exercise conditional code paths.
	OptionalPackages []string

	// TestTimeout bounds the test-runner step alone.
	TestTimeout time.Duration

	// TargetTimeout bounds one target's whole chain. Zero means unbounded.
	TargetTimeout time.Duration

	// GracePeriod bounds cleanup after a target's chain ends or is
	// cancelled. It never extends the chain's own deadline.
	GracePeriod time.Duration

	// InstallRetries is how many times the two network-dependent install
	// steps are retried on failure. Zero means never retry.
	InstallRetries int
}

// Loader turns a release file into a Model. Implementations are
// format-specific; the returned Model has defaults applied but is not yet
// validated.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}

// ApplyDefaults fills in the documented default values for any timeout the
// release file left unset.
func (m *Model) ApplyDefaults() {
	if m.Verify.TestTimeout == 0 {
		m.Verify.TestTimeout = DefaultTestTimeout
	}
	if m.Verify.GracePeriod == 0 {
		m.Verify.GracePeriod = DefaultGracePeriod
	}
}

// Validate checks the model for configuration errors that must abort the
// run before any target starts.
func (m *Model) Validate() error {
	if m.Release.Name == "" {
		return &ConfigurationError{Field: "release.name", Reason: "must not be empty"}
	}
	if m.Release.Version == "" {
		return &ConfigurationError{Field: "release.version", Reason: "must not be empty"}
	}
	if len(m.Matrix.OSes) == 0 {
		return &ConfigurationError{Field: "matrix.os", Reason: "axis must not be empty"}
	}
	if len(m.Matrix.Interpreters) == 0 {
		return &ConfigurationError{Field: "matrix.interpreters", Reason: "axis must not be empty"}
	}
	if m.Source.Interpreter == "" {
		return &ConfigurationError{Field: "source.interpreter", Reason: "must not be empty"}
	}
	if m.Verify.InstallRetries < 0 {
		return &ConfigurationError{Field: "verify.install_retries", Reason: "must not be negative"}
	}
	return nil
}
