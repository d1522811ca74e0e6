// Package version carries the build identity stamped in by the linker.
package version

// Set via -ldflags at release build time; the defaults identify a
// from-source build.
var (
	// Version is the semantic version of the binary.
	Version = "dev"
	// Commit is the Git hash the binary was built from.
	Commit = "<unknown>"
	// Date is the build timestamp.
	Date = "<unknown>"
)
