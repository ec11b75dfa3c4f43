// Package version holds the build version, overridable at link time with
// -ldflags "-X flightrecorder/pkg/version.Version=...".
package version

// Version is the application version.
var Version = "v0.3.0"
