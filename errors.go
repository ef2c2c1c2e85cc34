package smartgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorCode classifies an Error for callers and exit handling.
type ErrorCode string

const (
	CodeInvalidConfig   ErrorCode = "invalid_config"
	CodeInvalidSnapshot ErrorCode = "invalid_snapshot"
)

// Error is a configuration or input error.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewError creates a new error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf creates a new error with a formatted message. A %w verb in format
// becomes the error's cause.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Code: code, Message: err.Error(), cause: errors.Unwrap(err)}
}

// WithDetail returns a copy of e with one more detail. e is not modified.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// wrapValidation turns validator errors into an *Error with one detail per
// field. Other errors are wrapped unchanged.
func wrapValidation(code ErrorCode, subject string, err error) *Error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return &Error{Code: code, Message: subject + ": " + err.Error(), cause: err}
	}
	details := make(map[string]any, len(valErrs))
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		msg := formatValidationError(ve)
		details[ve.Field()] = msg
		messages = append(messages, ve.Field()+": "+msg)
	}
	sort.Strings(messages)
	return &Error{
		Code:    code,
		Message: subject + ": " + strings.Join(messages, "; "),
		Details: details,
		cause:   err,
	}
}

// formatValidationError renders one failed rule the way it reads in a
// configuration file.
func formatValidationError(ve validator.FieldError) string {
	param := ve.Param()
	switch ve.Tag() {
	case "required":
		return "required"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "oneof":
		return "must be one of: " + param
	case "startswith":
		return fmt.Sprintf("must start with %q", param)
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", param)
	case "csharpname":
		return "must be a metadata name such as Ns.Type`2"
	case "csharpident":
		return "must be a simple identifier"
	}
	if param == "" {
		return "failed " + ve.Tag() + " validation"
	}
	return "failed " + ve.Tag() + "=" + param + " validation"
}
