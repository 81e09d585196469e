package matrix

import (
	"fmt"

	"github.com/specialistvlad/wheelgrid/internal/config"
)

// Kind distinguishes the two artifact kinds a target can produce.
type Kind int

const (
	// KindBinary is a compiled, platform-specific artifact.
	KindBinary Kind = iota
	// KindSource is the single platform-independent source artifact.
	KindSource
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindSource:
		return "source"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Target is one (OS, interpreter, kind) combination to build and verify.
// It is immutable once the matrix is expanded.
type Target struct {
	OS          string
	Interpreter string
	Kind        Kind
}

// ID returns the canonical, unique identifier of the target.
func (t Target) ID() string {
	if t.Kind == KindSource {
		return fmt.Sprintf("source/%s", t.Interpreter)
	}
	return fmt.Sprintf("binary/%s/%s", t.OS, t.Interpreter)
}

// Expand enumerates the full target set from the model's declared axes.
//
// The result is ordered and duplicate-free: binary targets in declared axis
// order (OS major, interpreter minor), then the single source target.
// Re-running Expand on an unchanged model yields an identical sequence.
// An empty axis is a configuration error, never a silently empty matrix.
func Expand(m *config.Model) ([]Target, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[Target]struct{})
	targets := make([]Target, 0, len(m.Matrix.OSes)*len(m.Matrix.Interpreters)+1)
	for _, os := range m.Matrix.OSes {
		for _, interp := range m.Matrix.Interpreters {
			t := Target{OS: os, Interpreter: interp, Kind: KindBinary}
			if _, dup := seen[t]; dup {
				return nil, &config.ConfigurationError{
					Field:  "matrix",
					Reason: fmt.Sprintf("duplicate target %s", t.ID()),
				}
			}
			seen[t] = struct{}{}
			targets = append(targets, t)
		}
	}

	targets = append(targets, Target{Interpreter: m.Source.Interpreter, Kind: KindSource})
	return targets, nil
}
