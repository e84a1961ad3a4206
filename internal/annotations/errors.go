package annotations

import (
	"fmt"
	"strings"
)

// SourceLocation represents a position in a C# source file
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String renders the location as file:line:column
func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// AnnotationError defines the interface for front end errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of front end errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	default:
		return "UnknownError"
	}
}

// SyntaxError represents a source file the grammar could not parse
type SyntaxError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("%s: syntax error: %s", e.Loc, e.Msg)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// ValidationError represents a marker attribute whose arguments have the wrong shape
type ValidationError struct {
	Parameter string         // Parameter name that failed validation
	Expected  string         // What was expected
	Actual    string         // What was provided
	Loc       SourceLocation // Where the error occurred
	Hint      string         // Suggested fix
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Describe())
}

// Describe renders the failure without its location
func (e *ValidationError) Describe() string {
	if e.Parameter == "" {
		return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
	}
	return fmt.Sprintf("argument '%s': expected %s, got %s", e.Parameter, e.Expected, e.Actual)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// NewSyntaxErrorWithContext creates a syntax error with a suggestion derived from the message
func NewSyntaxErrorWithContext(msg string, loc SourceLocation) *SyntaxError {
	return &SyntaxError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSyntaxSuggestion(msg),
	}
}

// generateSyntaxSuggestion provides suggestions for the syntax errors users hit most
func generateSyntaxSuggestion(msg string) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "invalid input text"):
		return "The file contains characters outside the supported C# token set"
	case strings.Contains(msg, "unexpected token \"<eof>\""):
		return "Check for an unclosed '{' or a missing ';'"
	case strings.Contains(msg, "unexpected token"):
		return "Only declarations are read; top-level statements and unbalanced braces are not supported"
	default:
		return ""
	}
}
