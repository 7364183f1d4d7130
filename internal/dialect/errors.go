package dialect

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("dialect: invalid configuration")

	// ErrUnsupported is matched by every UnsupportedError.
	ErrUnsupported = errors.New("dialect: unsupported by dialect")

	// ErrUnknownDialect is returned when no dialect is registered under a name.
	ErrUnknownDialect = errors.New("dialect: unknown dialect")
)

// ConfigurationError reports that the caller did not supply enough
// information to produce valid SQL, such as a binary column without a length.
// It is not retryable without correcting the input.
type ConfigurationError struct {
	Dialect string
	Subject string
	Reason  string
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Dialect, e.Subject, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// UnsupportedError reports an operation that has no valid representation
// for a vendor. The gap is permanent: retrying never changes the outcome.
type UnsupportedError struct {
	Dialect   string
	Operation string
	Reason    string
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Operation)
	}
	return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Operation, e.Reason)
}

// Is reports whether target is ErrUnsupported.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// ExecutionError annotates a failure the database raised while executing
// generated SQL with the dialect and the statement that failed.
type ExecutionError struct {
	Dialect   string
	Statement string
	Err       error
}

// Error returns the error string.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: failed to execute %q: %v", e.Dialect, e.Statement, e.Err)
}

// Unwrap returns the driver error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Unsupported returns an UnsupportedError for the named dialect.
func Unsupported(dialect, operation, reason string) *UnsupportedError {
	return &UnsupportedError{Dialect: dialect, Operation: operation, Reason: reason}
}

// Misconfigured returns a ConfigurationError for the named dialect.
func Misconfigured(dialect, subject, reason string) *ConfigurationError {
	return &ConfigurationError{Dialect: dialect, Subject: subject, Reason: reason}
}

// IsUnsupported returns true if err is or wraps an UnsupportedError.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// IsConfiguration returns true if err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
