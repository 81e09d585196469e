// Package artifact defines the identity and naming contract of built
// distribution artifacts.
package artifact

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/wheelgrid/internal/matrix"
)

// Artifact is one built, installable distribution unit. Identity for a
// binary artifact is (name, version, interpreter tag, platform tag); for
// the source artifact it is (name, version).
type Artifact struct {
	Name    string
	Version string
	Kind    matrix.Kind

	// InterpreterTag and PlatformTag are empty for source artifacts.
	InterpreterTag string
	PlatformTag    string

	// Path is the artifact file's location in its target's sandbox. It is
	// owned by the producing target until the publish gate copies it into
	// the staging area.
	Path string
}

// New derives the artifact identity a target is expected to produce.
func New(name, version string, t matrix.Target) Artifact {
	a := Artifact{Name: name, Version: version, Kind: t.Kind}
	if t.Kind == matrix.KindBinary {
		a.InterpreterTag = InterpreterTag(t.Interpreter)
		a.PlatformTag = PlatformTag(t.OS)
	}
	return a
}

// ID returns the canonical identity string. Distinct targets of a
// well-formed matrix always yield distinct IDs.
func (a Artifact) ID() string {
	if a.Kind == matrix.KindSource {
		return fmt.Sprintf("%s-%s", a.Name, a.Version)
	}
	return fmt.Sprintf("%s-%s-%s-%s", a.Name, a.Version, a.InterpreterTag, a.PlatformTag)
}

// Filename returns the file name the artifact is staged under. The name
// encodes everything a downstream consumer needs to pick the right file
// for its environment.
func (a Artifact) Filename() string {
	if a.Kind == matrix.KindSource {
		return fmt.Sprintf("%s-%s.tar.gz", a.Name, a.Version)
	}
	return fmt.Sprintf("%s-%s-%s-%s.whl", a.Name, a.Version, a.InterpreterTag, a.PlatformTag)
}

// InterpreterTag converts an interpreter version identifier ("3.8") into
// its compact tag form ("cp38").
func InterpreterTag(version string) string {
	return "cp" + strings.ReplaceAll(version, ".", "")
}

// PlatformTag normalizes an OS identifier into a tag-safe form.
func PlatformTag(os string) string {
	return strings.ReplaceAll(strings.ToLower(os), "-", "_")
}
