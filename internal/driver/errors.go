package driver

import (
	"errors"
	"fmt"
)

// Failure classes, one per step of the chain. Every target-local failure
// wraps exactly one of these.
var (
	ErrDependencyInstall   = errors.New("dependency install failed")
	ErrBuild               = errors.New("build failed")
	ErrIsolation           = errors.New("source isolation failed")
	ErrInstallVerification = errors.New("install verification failed")
	ErrOptionalDependency  = errors.New("optional dependency install failed")
	ErrTest                = errors.New("test run failed")
	ErrTestTimeout         = errors.New("test run exceeded its timeout")
)

// StepError records which step of a target's chain failed and why.
type StepError struct {
	// Step is the failing step's identity, e.g. "install-artifact".
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

// Unwrap exposes the failure class and its cause to errors.Is/As.
func (e *StepError) Unwrap() error {
	return e.Err
}
