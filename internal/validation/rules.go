// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Printable validates that a string has no control characters
var Printable = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.IndexFunc(s, unicode.IsControl) < 0
	},
	validation.NewError("validation_printable", "must not contain control characters"),
)

// CallerIdentity validates one entry of a caller allow-list: a non-blank, single-token identity
// such as a contract address.
var CallerIdentity = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_caller_identity_type", "must be a string")
	}
	if strings.TrimSpace(s) == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return validation.NewError("validation_caller_identity", "must be a non-empty identity without whitespace")
	}
	if len(s) > 256 {
		return validation.NewError("validation_caller_identity_length", "must be at most 256 characters")
	}
	return nil
})
