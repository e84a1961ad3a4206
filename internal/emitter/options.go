package emitter

import (
	"strings"

	"golang.org/x/mod/semver"
)

const (
	// DefaultExtension is appended to the target name to form the artifact name
	DefaultExtension = "g.cs"
	// DefaultMarkerNamespace is the namespace the marker attribute is declared in
	DefaultMarkerNamespace = "ProxyGen"
	// DefaultMarkerName is the marker attribute name without the Attribute suffix
	DefaultMarkerName = "Proxy"
	// ToolName identifies the generator in headers and GeneratedCode attributes
	ToolName = "proxygen"
)

// Options controls the shape of emitted artifacts
type Options struct {
	Extension       string
	MarkerNamespace string
	MarkerName      string
	GeneratedCode   bool   // emit [GeneratedCode] on every forwarding type
	ToolVersion     string // semantic version, with or without the leading v
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Extension:       DefaultExtension,
		MarkerNamespace: DefaultMarkerNamespace,
		MarkerName:      DefaultMarkerName,
	}
}

func (o Options) withDefaults() Options {
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	o.Extension = strings.TrimPrefix(o.Extension, ".")
	if o.MarkerNamespace == "" {
		o.MarkerNamespace = DefaultMarkerNamespace
	}
	if o.MarkerName == "" {
		o.MarkerName = DefaultMarkerName
	}
	o.MarkerName = strings.TrimSuffix(o.MarkerName, "Attribute")
	return o
}

// NormalizeVersion turns a tool version into the dotted form GeneratedCode expects.
// Anything that is not a valid semantic version becomes 0.0.0.
func NormalizeVersion(v string) string {
	if v == "" {
		return "0.0.0"
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "0.0.0"
	}
	return strings.TrimPrefix(semver.Canonical(v), "v")
}
