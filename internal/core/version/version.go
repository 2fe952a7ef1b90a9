package version

// Version is the current framegrab version.
// Overridden at build time via -ldflags "-X .../internal/core/version.Version=x.y.z".
var Version = "0.3.0"
