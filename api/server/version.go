// version.go - Service & API version info
package server

// version is overridden at build time with -ldflags "-X carereviews/api/server.version=..."
var version = "v0.1.0-dev"

// ServiceVersion returns the current service software version.
func ServiceVersion() string {
	return version
}

// APIVersion returns the current API version.
func APIVersion() string {
	return "v1"
}
