package models

import "fmt"

// Artifact is one generated source unit
type Artifact struct {
	Name    string // file name, e.g. MyProxy.g.cs
	Dir     string // directory the artifact belongs in; empty means the output root
	Content string
	Target  string // qualified target name; empty for the bootstrap artifact
}

// SkipReason explains why a binding produced no artifact
type SkipReason int

const (
	SkipMissingContract SkipReason = iota
	SkipMalformedArguments
	SkipEmptyAccessor
	SkipUnresolvedContract
	SkipDuplicateBinding
	SkipUnsupportedTarget
)

// String returns the string representation of the skip reason
func (r SkipReason) String() string {
	switch r {
	case SkipMissingContract:
		return "missing_contract"
	case SkipMalformedArguments:
		return "malformed_arguments"
	case SkipEmptyAccessor:
		return "empty_accessor"
	case SkipUnresolvedContract:
		return "unresolved_contract"
	case SkipDuplicateBinding:
		return "duplicate_binding"
	case SkipUnsupportedTarget:
		return "unsupported_target"
	default:
		return "unknown"
	}
}

// SkippedBinding records a binding that was withheld from output
type SkippedBinding struct {
	Target string // qualified target name
	Reason SkipReason
	Detail string
	Source string
	Line   int
}

// String renders the skipped binding for diagnostics
func (s SkippedBinding) String() string {
	loc := s.Source
	if loc != "" && s.Line > 0 {
		loc = fmt.Sprintf("%s:%d", s.Source, s.Line)
	}
	msg := fmt.Sprintf("%s skipped (%s)", s.Target, s.Reason)
	if s.Detail != "" {
		msg += ": " + s.Detail
	}
	if loc != "" {
		msg = loc + ": " + msg
	}
	return msg
}

// GenerationSummary contains statistics about one generation run
type GenerationSummary struct {
	FilesScanned   int
	Contracts      int
	Targets        int
	Bindings       int
	GeneratedFiles []string
	UnchangedFiles []string
	PrunedFiles    []string
	Skipped        []SkippedBinding
}
