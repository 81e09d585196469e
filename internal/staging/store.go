package staging

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/specialistvlad/wheelgrid/internal/artifact"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
	"github.com/specialistvlad/wheelgrid/internal/fsutil"
)

// ErrDuplicate is returned when an artifact identity is staged twice.
var ErrDuplicate = errors.New("artifact identity already staged")

// Store is the staging area. Artifacts are keyed by their canonical
// identity string and, when the store has a backing directory, their files
// are copied under it on insertion.
type Store struct {
	dir       string
	artifacts sync.Map // Key: artifact ID string, Value: artifact.Artifact
}

// NewStore creates a staging area backed by dir. An empty dir disables the
// file copy and keeps the store purely in-memory, which unit tests use.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the staging directory handed to the publishing sink.
func (s *Store) Dir() string {
	return s.dir
}

// Add inserts an artifact atomically by identity and copies its file into
// the staging directory. Ownership of the artifact transfers to the store.
func (s *Store) Add(ctx context.Context, a artifact.Artifact) error {
	logger := ctxlog.FromContext(ctx)

	if _, loaded := s.artifacts.LoadOrStore(a.ID(), a); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicate, a.ID())
	}

	if s.dir != "" && a.Path != "" {
		dst := filepath.Join(s.dir, a.Filename())
		if err := fsutil.CopyFile(a.Path, dst); err != nil {
			// Roll the key back: a member without a staged file would
			// break the store's invariant.
			s.artifacts.Delete(a.ID())
			return fmt.Errorf("failed to stage artifact %s: %w", a.ID(), err)
		}
		logger.Debug("Artifact file staged.", "artifact", a.ID(), "path", dst)
	}

	logger.Info("Artifact staged.", "artifact", a.ID(), "file", a.Filename())
	return nil
}

// Get retrieves a staged artifact by identity.
func (s *Store) Get(id string) (artifact.Artifact, bool) {
	v, ok := s.artifacts.Load(id)
	if !ok {
		return artifact.Artifact{}, false
	}
	return v.(artifact.Artifact), true
}

// Len reports how many artifacts have been staged.
func (s *Store) Len() int {
	n := 0
	s.artifacts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// IDs returns the sorted identities of all staged artifacts.
func (s *Store) IDs() []string {
	var ids []string
	s.artifacts.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	sort.Strings(ids)
	return ids
}
