// Package toolchain defines the external collaborators a target's chain
// invokes: the dependency installer, the artifact builder, the install
// verifier, the optional-dependency augmenter and the test runner.
//
// Each collaborator is an interface so the driver can be exercised with
// stubs; the Exec* implementations shell out to the real interpreter and
// packaging tools and translate a non-zero exit status into an error.
package toolchain
