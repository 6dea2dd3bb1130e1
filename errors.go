package conform

import (
	"errors"
	"fmt"
)

// RuntimeError represents an operational error that should lead to exit
// code 3. Examples include configuration errors, unknown suites, and
// unreachable spec files.
type RuntimeError struct {
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError creates a new RuntimeError
func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

// IsRuntimeError checks if the error is or wraps a RuntimeError
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}

// TestFailureError represents a run whose worst outcome counts as a failure
// (exit code 2).
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}

// WarningError represents a run that passed with warnings (exit code 1).
type WarningError struct {
	Message string
}

func (e *WarningError) Error() string {
	return fmt.Sprintf("completed with warnings: %s", e.Message)
}

// NewWarningError creates a new WarningError
func NewWarningError(message string) *WarningError {
	return &WarningError{Message: message}
}

// IsWarningError checks if the error is or wraps a WarningError
func IsWarningError(err error) bool {
	var warnErr *WarningError
	return err != nil && errors.As(err, &warnErr)
}
