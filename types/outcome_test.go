package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeValid(t *testing.T) {
	for _, o := range []Outcome{
		OutcomePass, OutcomeFail, OutcomeWarning, OutcomeDisabled,
		OutcomeUnclear, OutcomeOptional, OutcomeManual, OutcomeNA, OutcomeError,
	} {
		assert.True(t, o.Valid(), "outcome %s should be valid", o)
	}
	assert.False(t, Outcome("bogus").Valid())
	assert.False(t, Outcome("").Valid())
}

func TestSeverityOrdering(t *testing.T) {
	ordered := []Outcome{
		OutcomePass, OutcomeDisabled, OutcomeOptional, OutcomeWarning,
		OutcomeUnclear, OutcomeError, OutcomeFail,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Severity(), ordered[i-1].Severity(),
			"%s should be more severe than %s", ordered[i], ordered[i-1])
	}

	// The neutral outcomes share one rank.
	assert.Equal(t, OutcomeManual.Severity(), OutcomeNA.Severity())
	assert.Equal(t, OutcomeManual.Severity(), OutcomeDisabled.Severity())
}

func TestCountsAsFailure(t *testing.T) {
	assert.True(t, OutcomeFail.CountsAsFailure())
	assert.True(t, OutcomeError.CountsAsFailure())
	assert.True(t, OutcomeUnclear.CountsAsFailure())

	assert.False(t, OutcomePass.CountsAsFailure())
	assert.False(t, OutcomeWarning.CountsAsFailure())
	assert.False(t, OutcomeOptional.CountsAsFailure())
	assert.False(t, OutcomeManual.CountsAsFailure())
	assert.False(t, OutcomeNA.CountsAsFailure())
	assert.False(t, OutcomeDisabled.CountsAsFailure())
}

func TestWorstOutcome(t *testing.T) {
	require.Equal(t, OutcomePass, WorstOutcome(nil))

	results := []Result{
		{Name: "a", Outcome: OutcomePass},
		{Name: "b", Outcome: OutcomeWarning},
		{Name: "c", Outcome: OutcomeManual},
	}
	assert.Equal(t, OutcomeWarning, WorstOutcome(results))

	results = append(results, Result{Name: "d", Outcome: OutcomeUnclear})
	assert.Equal(t, OutcomeUnclear, WorstOutcome(results))

	results = append(results, Result{Name: "e", Outcome: OutcomeFail})
	assert.Equal(t, OutcomeFail, WorstOutcome(results))
}

func TestTestBuildersCarryIdentity(t *testing.T) {
	tc := Test{Name: "case_01", Description: "desc", Link: "https://example.com/doc"}

	r := tc.Fail("broken")
	assert.Equal(t, "case_01", r.Name)
	assert.Equal(t, "desc", r.Description)
	assert.Equal(t, "https://example.com/doc", r.Link)
	assert.Equal(t, OutcomeFail, r.Outcome)
	assert.Equal(t, "broken", r.Detail)

	assert.Equal(t, OutcomePass, tc.Pass("").Outcome)
	assert.Equal(t, OutcomeWarning, tc.Warning("w").Outcome)
	assert.Equal(t, OutcomeUnclear, tc.Unclear("u").Outcome)
	assert.Equal(t, OutcomeManual, tc.Manual("m").Outcome)
	assert.Equal(t, OutcomeNA, tc.NA("n").Outcome)
	assert.Equal(t, OutcomeOptional, tc.Optional("o").Outcome)
	assert.Equal(t, OutcomeDisabled, tc.Disabled("d").Outcome)
}
