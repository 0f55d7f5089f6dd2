package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

// Publishing pipeline failure classes. Loops branch on these with Is.
var (
	// ErrInvalidState marks an operation invoked on a post in the wrong lifecycle state.
	ErrInvalidState = errors.New("invalid post state")
	// ErrDelivery marks a transient failure sending a post to the channel.
	ErrDelivery = errors.New("delivery failed")
	// ErrProviderQuery marks a transient failure reading payment status.
	ErrProviderQuery = errors.New("payment provider query failed")
	// ErrRepository marks a storage failure that aborts the current tick.
	ErrRepository = errors.New("repository failure")
)

// Codes attached by Classify.
const (
	CodeInvalidState  = "invalid_state"
	CodeDelivery      = "delivery_failure"
	CodeProviderQuery = "provider_query_failure"
	CodeRepository    = "repository_failure"
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
	Kind    error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error and, when set, the failure class
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// Classify wraps err as the given failure class so that Is(err, kind) holds
// while the original cause stays reachable.
func Classify(err error, kind error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
		Kind:    kind,
	}
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden returns true if the error is a forbidden error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsBadRequest returns true if the error is a bad request error
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsInvalidState returns true if the error is an invalid post state error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsDelivery returns true if the error is a delivery failure
func IsDelivery(err error) bool {
	return errors.Is(err, ErrDelivery)
}

// IsProviderQuery returns true if the error is a payment provider failure
func IsProviderQuery(err error) bool {
	return errors.Is(err, ErrProviderQuery)
}

// IsRepository returns true if the error is a repository failure
func IsRepository(err error) bool {
	return errors.Is(err, ErrRepository)
}
