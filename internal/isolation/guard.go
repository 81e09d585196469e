package isolation

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
)

// relocatedSuffix is appended to the source directory name while a target
// is isolated.
const relocatedSuffix = ".isolated"

// Guard relocates the working-tree source directory out of default
// resolution. Relocation is a rename, never a delete: Restore puts the
// tree back exactly where it was.
type Guard struct {
	mu        sync.Mutex
	sourceDir string
	relocated bool
}

// NewGuard creates a guard over the given source directory.
func NewGuard(sourceDir string) *Guard {
	return &Guard{sourceDir: sourceDir}
}

// Isolated reports whether the source is currently relocated.
func (g *Guard) Isolated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.relocated
}

// RelocatedPath returns where the source tree sits while isolated.
func (g *Guard) RelocatedPath() string {
	return g.sourceDir + relocatedSuffix
}

// Isolate renames the source directory so it is no longer reachable via
// default resolution. Calling it on an already isolated guard is a no-op.
func (g *Guard) Isolate(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.relocated {
		return nil
	}
	if err := os.Rename(g.sourceDir, g.RelocatedPath()); err != nil {
		return fmt.Errorf("failed to relocate source directory %s: %w", g.sourceDir, err)
	}
	g.relocated = true
	ctxlog.FromContext(ctx).Debug("Source directory relocated.", "from", g.sourceDir, "to", g.RelocatedPath())
	return nil
}

// Restore moves the source directory back. A guard that never isolated is
// a no-op.
func (g *Guard) Restore(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.relocated {
		return nil
	}
	if err := os.Rename(g.RelocatedPath(), g.sourceDir); err != nil {
		return fmt.Errorf("failed to restore source directory %s: %w", g.sourceDir, err)
	}
	g.relocated = false
	ctxlog.FromContext(ctx).Debug("Source directory restored.", "path", g.sourceDir)
	return nil
}
