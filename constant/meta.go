// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// App is the canonical application identifier used for filesystem paths and CLI branding.
	App = "mpvsource"

	// Version is the current application semantic version string.
	Version = "0.1.0"
)

// Source identifiers exposed to the host when registering the media source.
const (
	SourceID   = "mpv_source"
	SourceName = "MPV Source"
)

// Build metadata, overridden at link time via -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
