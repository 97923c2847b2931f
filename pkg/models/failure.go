package models

import (
	"errors"
	"fmt"
)

// FailureKind classifies a failed generation.
type FailureKind string

const (
	KindValidation    FailureKind = "ValidationError"
	KindConfiguration FailureKind = "ConfigurationError"
	KindNetwork       FailureKind = "NetworkError"
	KindBackend       FailureKind = "BackendError"
)

// Sentinel errors matched by errors.Is against a *Failure of the same kind.
var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNetwork       = errors.New("network error")
	ErrBackend       = errors.New("backend error")
)

// Failure is the error returned for every unsuccessful generation.
type Failure struct {
	Kind    FailureKind
	Message string
	// Status is the upstream HTTP status, when there was one.
	Status int
	Err    error
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", f.Kind, f.Message, f.Status)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the sentinel error for the failure's kind.
func (f *Failure) Is(target error) bool {
	return target == f.Kind.sentinel()
}

func (k FailureKind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConfiguration:
		return ErrConfiguration
	case KindNetwork:
		return ErrNetwork
	case KindBackend:
		return ErrBackend
	}
	return nil
}

// Validationf builds a ValidationError failure.
func Validationf(format string, args ...any) *Failure {
	return &Failure{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Configurationf builds a ConfigurationError failure.
func Configurationf(format string, args ...any) *Failure {
	return &Failure{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NetworkFailure wraps a transport error or timeout.
func NetworkFailure(message string, err error) *Failure {
	return &Failure{Kind: KindNetwork, Message: message, Err: err}
}

// BackendFailure reports an upstream error status or an unusable payload.
func BackendFailure(status int, message string, err error) *Failure {
	return &Failure{Kind: KindBackend, Message: message, Status: status, Err: err}
}

// AsFailure extracts a *Failure from err. Errors of any other type are
// reported as BackendError.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return BackendFailure(0, err.Error(), err)
}
