package types

import "time"

// Result captures the outcome of a single executed test case. Every case
// produces exactly one Result, including cases that raised an unhandled
// fault. Name is unique within a run and stable across reruns.
type Result struct {
	Name        string
	Description string
	Outcome     Outcome
	Detail      string // human-readable reason, required for non-pass outcomes
	Link        string // optional URI to further documentation
	StartTime   time.Time
	EndTime     time.Time
}

// Duration returns the elapsed execution time of the case.
func (r Result) Duration() time.Duration {
	if r.EndTime.IsZero() || r.StartTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Test carries the identity of the case currently executing and builds its
// Result. Cases receive a Test and return exactly one of its outcomes.
type Test struct {
	Name        string
	Description string
	Link        string
}

func (t Test) result(outcome Outcome, detail string) Result {
	return Result{
		Name:        t.Name,
		Description: t.Description,
		Outcome:     outcome,
		Detail:      detail,
		Link:        t.Link,
	}
}

// Pass reports a successful check. Detail may be empty.
func (t Test) Pass(detail string) Result { return t.result(OutcomePass, detail) }

// Fail reports a specification violation.
func (t Test) Fail(detail string) Result { return t.result(OutcomeFail, detail) }

// Warning reports behavior that is permitted but not recommended.
func (t Test) Warning(detail string) Result { return t.result(OutcomeWarning, detail) }

// Disabled reports a case excluded from this run.
func (t Test) Disabled(detail string) Result { return t.result(OutcomeDisabled, detail) }

// Unclear reports that a prior response made this case meaningless.
func (t Test) Unclear(detail string) Result { return t.result(OutcomeUnclear, detail) }

// Optional reports a recommended or optional feature that is absent.
func (t Test) Optional(detail string) Result { return t.result(OutcomeOptional, detail) }

// Manual reports a check that must be performed by a human.
func (t Test) Manual(detail string) Result { return t.result(OutcomeManual, detail) }

// NA reports a check excluded by version or configuration.
func (t Test) NA(detail string) Result { return t.result(OutcomeNA, detail) }
