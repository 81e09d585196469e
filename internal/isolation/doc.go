// Package isolation guarantees that verification exercises only the
// installed artifact, never the working-tree source.
//
// The guarantee is modeled as an explicit resolution-scope boundary: a
// Resolver holds two namespaces (the working tree and the installed
// artifact) and an explicit switch between them, instead of relying on
// incidental filesystem layout. The Guard enforces the same boundary on
// disk by relocating the source directory out of default resolution —
// non-destructively, so cleanup can restore it.
package isolation
