package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/specialistvlad/wheelgrid/internal/matrix"
)

func TestNew_BinaryIdentity(t *testing.T) {
	t.Parallel()

	target := matrix.Target{OS: "linux", Interpreter: "3.8", Kind: matrix.KindBinary}
	a := New("fastneighbors", "1.4.0", target)

	assert.Equal(t, "cp38", a.InterpreterTag)
	assert.Equal(t, "linux", a.PlatformTag)
	assert.Equal(t, "fastneighbors-1.4.0-cp38-linux", a.ID())
	assert.Equal(t, "fastneighbors-1.4.0-cp38-linux.whl", a.Filename())
}

func TestNew_SourceIdentity(t *testing.T) {
	t.Parallel()

	target := matrix.Target{Interpreter: "3.8", Kind: matrix.KindSource}
	a := New("fastneighbors", "1.4.0", target)

	assert.Empty(t, a.InterpreterTag)
	assert.Empty(t, a.PlatformTag)
	assert.Equal(t, "fastneighbors-1.4.0", a.ID())
	assert.Equal(t, "fastneighbors-1.4.0.tar.gz", a.Filename())
}

func TestIdentities_DistinctAcrossMatrix(t *testing.T) {
	t.Parallel()

	targets := []matrix.Target{
		{OS: "linux", Interpreter: "3.7", Kind: matrix.KindBinary},
		{OS: "linux", Interpreter: "3.8", Kind: matrix.KindBinary},
		{OS: "windows", Interpreter: "3.7", Kind: matrix.KindBinary},
		{OS: "windows", Interpreter: "3.8", Kind: matrix.KindBinary},
		{Interpreter: "3.8", Kind: matrix.KindSource},
	}

	seen := map[string]bool{}
	for _, target := range targets {
		id := New("fastneighbors", "1.4.0", target).ID()
		assert.False(t, seen[id], "identity collision: %s", id)
		seen[id] = true
	}
}

func TestPlatformTag_Normalizes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "manylinux2014_x86_64", PlatformTag("manylinux2014-x86-64"))
	assert.Equal(t, "windows", PlatformTag("Windows"))
}
