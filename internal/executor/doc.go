// Package executor runs the expanded target set as independent parallel
// units of work on a bounded worker pool.
//
// Targets share no mutable state except the staging area, which accepts
// conflict-free per-key writes, so no ordering is guaranteed or required
// across targets. One target's failure never cancels its siblings; the run
// verdict is computed only after every chain has terminated.
package executor
