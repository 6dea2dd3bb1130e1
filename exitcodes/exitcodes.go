// Package exitcodes defines the standard exit codes used by conform.
package exitcodes

// Exit code constants used by the non-interactive CLI:
//
//   - Success (0): every evaluated case passed, or was optional, manual,
//     not applicable, or disabled
//   - Warning (1): the worst evaluated outcome was a warning
//   - TestFailure (2): at least one evaluated case failed, errored, or could
//     not be tested
//   - RuntimeErr (3): configuration or selection errors, panics, and other
//     faults that prevented a complete run
const (
	Success     = 0
	Warning     = 1
	TestFailure = 2
	RuntimeErr  = 3
)
