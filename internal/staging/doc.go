// Package staging provides the shared staging area: an ephemeral,
// thread-safe, append-only store of published artifacts keyed by artifact
// identity.
//
// # Concurrency Model
//
// The store uses sync.Map because the publish gate writes from many target
// goroutines concurrently, and every write targets a distinct key: the
// matrix expander guarantees distinct target identities by construction,
// so distinct artifact identities follow. Insertion is atomic per key via
// LoadOrStore; a duplicate key is rejected rather than overwritten, since
// the area is append-only.
//
// # Invariant
//
// Every artifact in the store was added by the publish gate for a target
// whose chain fully succeeded. Nothing else writes here.
package staging
