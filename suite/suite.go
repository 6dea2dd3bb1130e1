// Package suite defines test suites by composition: a suite is an explicit
// list of manually authored cases plus an adapter that derives auto cases
// from a machine-readable API specification. Suites never execute anything
// themselves; the runner does.
package suite

import (
	"context"
	"fmt"

	"github.com/broadcastkit/conform/types"
)

// CaseFunc executes one test case against the shared run context. It returns
// exactly one result, or an error which the runner records as an engine-level
// error outcome for the case.
type CaseFunc func(ctx context.Context, rc *RunContext, t types.Test) (types.Result, error)

// Case is a named, idempotent, self-contained test operation bound to a
// suite. Auto reports whether the case was derived from a specification;
// auto cases are selected as a single group, never individually.
type Case struct {
	Name        string
	Description string
	Link        string
	Auto        bool
	Run         CaseFunc
}

// Hook runs before the first case or after the last. A pre-run hook failure
// aborts the run before any case executes.
type Hook func(ctx context.Context, rc *RunContext) error

// EndpointSpec declares one endpoint placeholder a suite requires. Bindings
// supplied at run time are matched positionally against these specs.
type EndpointSpec struct {
	APIKey          string // path segment of the API, e.g. "connection"
	Name            string // human-readable API name
	RequireSelector bool
}

// SpecAdapter produces the specification-derived cases of a suite. Listing
// must be deterministic and must not touch the implementation under test.
type SpecAdapter interface {
	AutoCases() []Case
}

// Suite is a named collection of test cases targeting one specification
// area.
type Suite struct {
	ID          string
	Name        string
	Description string

	EndpointSpecs []EndpointSpec
	ManualCases   []Case
	Adapter       SpecAdapter // nil when the suite has no auto cases

	PreRun  Hook
	PostRun Hook
}

// Cases returns all cases in canonical order: manual cases in declaration
// order, then auto cases in specification order.
func (s *Suite) Cases() []Case {
	cases := make([]Case, 0, len(s.ManualCases))
	cases = append(cases, s.ManualCases...)
	if s.Adapter != nil {
		cases = append(cases, s.Adapter.AutoCases()...)
	}
	return cases
}

// Validate checks the suite definition for the mistakes an author is most
// likely to make: missing identity, duplicate case names, nil case funcs.
func (s *Suite) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("suite ID is required")
	}
	seen := make(map[string]struct{})
	for _, c := range s.Cases() {
		if c.Name == "" {
			return fmt.Errorf("suite %s: case with empty name", s.ID)
		}
		if c.Run == nil {
			return fmt.Errorf("suite %s: case %s has no run function", s.ID, c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("suite %s: duplicate case name %s", s.ID, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
