package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Error kinds surfaced by authorization, platform fetches and the catalog store
	ErrAuthorization = errors.New("authorization error")
	ErrTransport     = errors.New("transport error")
	ErrParse         = errors.New("parse error")
	ErrConfig        = errors.New("config error")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

// Error is a classified failure carrying a human-readable message and an optional cause.
//
// Kind is one of [ErrAuthorization], [ErrTransport], [ErrParse] or [ErrConfig], so callers branch with [errors.Is].
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Cause)
}

// Unwrap exposes both the kind and the cause to [errors.Is] and [errors.As].
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// AuthorizationError covers bind failures, cancelled waits and missing or rejected codes.
func AuthorizationError(msg string, cause error) error {
	return &Error{Kind: ErrAuthorization, Message: msg, Cause: cause}
}

// TransportError covers network failures and non-success HTTP statuses.
func TransportError(msg string, cause error) error {
	return &Error{Kind: ErrTransport, Message: msg, Cause: cause}
}

// ParseError is returned when a payload does not match the expected schema.
func ParseError(msg string, cause error) error {
	return &Error{Kind: ErrParse, Message: msg, Cause: cause}
}

// ConfigError is returned when a required credential or setting is missing.
func ConfigError(msg string, cause error) error {
	return &Error{Kind: ErrConfig, Message: msg, Cause: cause}
}
