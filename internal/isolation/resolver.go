package isolation

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Namespace names one of the two resolution scopes a package can resolve
// from.
type Namespace int

const (
	// NamespaceWorkspace resolves from the working-tree source.
	NamespaceWorkspace Namespace = iota
	// NamespaceInstalled resolves from the installed artifact.
	NamespaceInstalled
)

// String returns the canonical name of the namespace.
func (n Namespace) String() string {
	switch n {
	case NamespaceWorkspace:
		return "workspace"
	case NamespaceInstalled:
		return "installed"
	default:
		return fmt.Sprintf("Namespace(%d)", int(n))
	}
}

// Resolver is a two-namespace package resolver. Exactly one namespace is
// active at a time; Resolve never consults the inactive one, so a resolved
// package is never ambiguous between source and artifact.
type Resolver struct {
	mu           sync.Mutex
	active       Namespace
	workspaceDir string
	installedDir string
}

// NewResolver creates a resolver over the two namespace roots. The
// workspace namespace starts active.
func NewResolver(workspaceDir, installedDir string) *Resolver {
	return &Resolver{
		workspaceDir: workspaceDir,
		installedDir: installedDir,
	}
}

// Active reports the currently active namespace.
func (r *Resolver) Active() Namespace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Switch makes ns the active namespace.
func (r *Resolver) Switch(ns Namespace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = ns
}

// Resolve returns the path of pkg inside the active namespace. A package
// missing from the active namespace is an error even if the inactive
// namespace could satisfy it.
func (r *Resolver) Resolve(pkg string) (string, error) {
	r.mu.Lock()
	root := r.workspaceDir
	ns := r.active
	if ns == NamespaceInstalled {
		root = r.installedDir
	}
	r.mu.Unlock()

	path := filepath.Join(root, pkg)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("package %q not resolvable in %s namespace: %w", pkg, ns, err)
	}
	return path, nil
}
