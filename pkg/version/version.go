// Package version provides the skylos tool version.
package version

// Version is the skylos tool version.
// Can be overridden at build time with:
//   go build -ldflags "-X github.com/duriantaco/skylos-go/pkg/version.Version=2.0.1"
var Version = "dev"
