package reporting

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/broadcastkit/conform/types"
)

type junitTestSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitMessage `xml:"failure,omitempty"`
	Error     *junitMessage `xml:"error,omitempty"`
	Skipped   *junitMessage `xml:"skipped,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr,omitempty"`
}

// WriteJUnit renders a JUnit-style XML document. Fail maps to a failed test
// case and error to an errored one; disabled, unclear, optional, manual and
// not-applicable outcomes map to skipped; pass and warning count as passed.
func WriteJUnit(w io.Writer, r Report) error {
	s := junitSuite{
		Name:  r.Suite,
		Tests: len(r.Results),
		Time:  fmt.Sprintf("%.3f", r.Summary.Duration.Seconds()),
	}

	for _, res := range r.Results {
		tc := junitTestCase{
			Name:      res.Name,
			ClassName: r.Suite,
			Time:      fmt.Sprintf("%.3f", res.Duration().Seconds()),
		}
		switch res.Outcome {
		case types.OutcomeFail:
			tc.Failure = &junitMessage{Message: res.Detail, Type: res.Outcome.String()}
			s.Failures++
		case types.OutcomeError:
			tc.Error = &junitMessage{Message: res.Detail, Type: res.Outcome.String()}
			s.Errors++
		case types.OutcomeDisabled, types.OutcomeUnclear, types.OutcomeOptional,
			types.OutcomeManual, types.OutcomeNA:
			tc.Skipped = &junitMessage{Message: res.Detail, Type: res.Outcome.String()}
			s.Skipped++
		}
		s.Cases = append(s.Cases, tc)
	}

	doc := junitTestSuites{Suites: []junitSuite{s}}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JUnit report: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
