// Package matrix expands a release configuration into the ordered set of
// build targets: one binary target per (OS, interpreter) combination plus
// exactly one source-distribution target.
package matrix
