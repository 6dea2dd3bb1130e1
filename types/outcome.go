package types

// Outcome represents the possible states of an executed test case
type Outcome string

const (
	OutcomePass     Outcome = "pass"
	OutcomeFail     Outcome = "fail"
	OutcomeWarning  Outcome = "warning"
	OutcomeDisabled Outcome = "disabled"
	OutcomeUnclear  Outcome = "unclear"
	OutcomeOptional Outcome = "optional"
	OutcomeManual   Outcome = "manual"
	OutcomeNA       Outcome = "not_applicable"

	// OutcomeError is reserved for unhandled faults raised inside a test
	// case. Test cases never return it directly; the runner does.
	OutcomeError Outcome = "error"
)

// Valid reports whether o is a member of the closed outcome set.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePass, OutcomeFail, OutcomeWarning, OutcomeDisabled,
		OutcomeUnclear, OutcomeOptional, OutcomeManual, OutcomeNA, OutcomeError:
		return true
	}
	return false
}

// Severity orders outcomes for failure classification. Higher is worse.
// fail > error > unclear > warning > optional > manual/not_applicable/disabled > pass
func (o Outcome) Severity() int {
	switch o {
	case OutcomeFail:
		return 7
	case OutcomeError:
		return 6
	case OutcomeUnclear:
		return 5
	case OutcomeWarning:
		return 4
	case OutcomeOptional:
		return 3
	case OutcomeManual, OutcomeNA, OutcomeDisabled:
		return 2
	case OutcomePass:
		return 1
	default:
		return 0
	}
}

// CountsAsFailure reports whether the outcome should make a run count as
// failed for CI exit-code purposes.
func (o Outcome) CountsAsFailure() bool {
	switch o {
	case OutcomeFail, OutcomeError, OutcomeUnclear:
		return true
	}
	return false
}

func (o Outcome) String() string {
	return string(o)
}

// WorstOutcome returns the single worst outcome in a result set per the
// severity ordering. An empty set is reported as a pass.
func WorstOutcome(results []Result) Outcome {
	worst := OutcomePass
	for _, r := range results {
		if r.Outcome.Severity() > worst.Severity() {
			worst = r.Outcome
		}
	}
	return worst
}
