// Package version exposes the build version of the binaries.
package version

// Version is set at build time using ldflags:
// -ldflags "-X github.com/quantly-lab/quantly/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// GetVersion returns the current version of the binaries.
func GetVersion() string {
	return Version
}
