package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add adds a validator to the chain
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators in the chain and stops at the first failure
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// NotEmpty validates that a string is not empty
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if value == "" {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		return nil
	}
}

// MatchesRegex validates that a string matches a regex pattern
func MatchesRegex(field, pattern string) Validator[string] {
	regex := regexp.MustCompile(pattern)
	return func(value string) error {
		if !regex.MatchString(value) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must match pattern '%s'", pattern),
			}
		}
		return nil
	}
}

// IsIdentifier validates that a string is a C# identifier. A leading @ is accepted.
func IsIdentifier(field string) Validator[string] {
	return func(value string) error {
		if !isIdentifier(strings.TrimPrefix(value, "@")) {
			return ValidationError{Field: field, Value: value, Message: "must be a valid identifier"}
		}
		return nil
	}
}

// IsQualifiedName validates a dotted name such as Acme.Services.IService.
// A trailing type argument list is accepted when allowGeneric is set.
func IsQualifiedName(field string, allowGeneric bool) Validator[string] {
	return func(value string) error {
		name := value
		if allowGeneric {
			if i := strings.IndexByte(name, '<'); i > 0 && strings.HasSuffix(name, ">") {
				name = name[:i]
			}
		}
		for _, part := range strings.Split(name, ".") {
			if !isIdentifier(strings.TrimPrefix(part, "@")) {
				return ValidationError{Field: field, Value: value, Message: "must be a qualified type name"}
			}
		}
		return nil
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// IsOneOf validates that a value is one of the allowed values
func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		for _, allowedValue := range allowed {
			if value == allowedValue {
				return nil
			}
		}
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("must be one of: %v", allowed),
		}
	}
}

// SliceNotEmpty validates that a slice is not empty
func SliceNotEmpty[T any](field string) Validator[[]T] {
	return func(value []T) error {
		if len(value) == 0 {
			return ValidationError{Field: field, Value: value, Message: "cannot be empty"}
		}
		return nil
	}
}

// ValidateEach validates each item in a slice using the provided validator. The
// failing item's index replaces the item validator's field name.
func ValidateEach[T any](field string, itemValidator Validator[T]) Validator[[]T] {
	return func(value []T) error {
		for i, item := range value {
			if err := itemValidator(item); err != nil {
				message := err.Error()
				if ve, ok := err.(ValidationError); ok {
					message = ve.Message
				}
				return ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Value:   item,
					Message: message,
				}
			}
		}
		return nil
	}
}

// Custom validates using a custom function
func Custom[T any](field string, message string, validatorFunc func(T) bool) Validator[T] {
	return func(value T) error {
		if !validatorFunc(value) {
			return ValidationError{Field: field, Value: value, Message: message}
		}
		return nil
	}
}

// Conditional validates only if the condition is true
func Conditional[T any](condition func(T) bool, validator Validator[T]) Validator[T] {
	return func(value T) error {
		if condition(value) {
			return validator(value)
		}
		return nil
	}
}

// ValidateExtension validates an artifact extension such as g.cs. The extension needs a
// qualifier before .cs so artifacts never collide with the sources they are built from.
func ValidateExtension(field string) Validator[string] {
	return NewValidatorChain[string](
		NotEmpty(field),
		MatchesRegex(field, `^\.?[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)+$`),
		func(value string) error {
			return IsOneOf(field, SourceExtension)(filepath.Ext(value))
		},
	).Validate
}

// ValidateMarkerNamespace validates the namespace the marker attribute is declared in
func ValidateMarkerNamespace(field string) Validator[string] {
	return NewValidatorChain(
		NotEmpty(field),
		IsQualifiedName(field, false),
	).Validate
}

// ValidateMarkerName validates the marker attribute name
func ValidateMarkerName(field string) Validator[string] {
	return NewValidatorChain(
		NotEmpty(field),
		IsIdentifier(field),
	).Validate
}
