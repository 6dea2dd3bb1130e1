package runner

import "fmt"

// ConfigurationError reports an incomplete or invalid endpoint binding,
// surfaced before any test executes. Partial configuration is never
// accepted.
type ConfigurationError struct {
	Suite string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for suite %s: %v", e.Suite, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// HookError reports a failed pre-run or post-run hook. A pre-run hook
// failure aborts the run before any result is produced.
type HookError struct {
	Hook string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook failed: %v", e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
