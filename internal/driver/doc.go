// Package driver advances one build target through its verification chain.
//
// A target's life is a strict forward sequence:
//
//	Pending → DepsInstalled → Built → Isolated → Installed
//	        → OptionalDepsInstalled → Tested → {Published | Failed}
//
// Steps run sequentially because each one depends on the previous step's
// completed side effect. The first failing step moves the target straight
// to Failed, skips everything that remains (including publish), and is
// recorded by name for diagnostics. Nothing is retried automatically
// except the two network-dependent install steps, and only when the
// release configuration asks for it.
package driver
