package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile_CreatesParentDirs(t *testing.T) {
	t.Parallel()

	src := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	dst := filepath.Join(t.TempDir(), "deep", "nested", "a.txt")
	require.NoError(t, CopyFile(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestCopyDir_CopiesTree(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "pkg", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "pkg", "__init__.py"), []byte("top"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "pkg", "sub", "mod.py"), []byte("nested"), 0644))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyDir(src, dst))

	top, err := os.ReadFile(filepath.Join(dst, "pkg", "__init__.py"))
	require.NoError(t, err)
	assert.Equal(t, "top", string(top))
	nested, err := os.ReadFile(filepath.Join(dst, "pkg", "sub", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, "nested", string(nested))
}
