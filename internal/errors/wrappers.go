package errors

import (
	"fmt"

	"github.com/toyz/proxygen/internal/models"
)

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause).
		WithLocation(SourceLocation{File: item})
}

// WrapGenerateError wraps an error with a "failed to generate" message
func WrapGenerateError(item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", item), cause).
		WithContext("artifact", item)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return Wrap(TemplateErrorCode, message, cause).
		WithContext("template", templateName).
		WithContext("operation", operation)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// SkipError describes a skipped binding as a validation error, used when strict mode
// turns skips into failures.
func SkipError(s models.SkippedBinding) *BaseError {
	message := fmt.Sprintf("%s: binding skipped (%s)", s.Target, s.Reason)
	if s.Detail != "" {
		message += ": " + s.Detail
	}
	return New(ValidationErrorCode, message).
		WithLocation(SourceLocation{File: s.Source, Line: s.Line}).
		WithContext("reason", s.Reason.String()).
		WithSuggestion(skipSuggestion(s.Reason))
}

func skipSuggestion(reason models.SkipReason) string {
	switch reason {
	case models.SkipMissingContract:
		return "Pass the contract as the first argument: [Proxy(typeof(IContract), \"_inner\")]"
	case models.SkipMalformedArguments:
		return "The marker takes exactly typeof(...) and a string literal or nameof(...)"
	case models.SkipEmptyAccessor:
		return "Name the field or property the generated members forward to"
	case models.SkipUnresolvedContract:
		return "Make sure the contract is declared in a scanned file or in the model file"
	case models.SkipDuplicateBinding:
		return "Keep a single binding per target type"
	case models.SkipUnsupportedTarget:
		return "Only non-generic, namespace-level classes, structs and records can be targets"
	default:
		return ""
	}
}
