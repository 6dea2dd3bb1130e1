// Package registry holds the registered test suites and resolves run
// selections into ordered case lists. Registration is explicit at process
// start; nothing is discovered by reflection.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/broadcastkit/conform/suite"
	"github.com/broadcastkit/conform/types"
)

// Registry manages suite definitions.
type Registry struct {
	mu     sync.RWMutex
	suites map[string]*suite.Suite
	order  []string
}

// CaseInfo describes one runnable case without executing it.
type CaseInfo struct {
	Name        string
	Description string
	Auto        bool
}

func New() *Registry {
	return &Registry{suites: make(map[string]*suite.Suite)}
}

// Register adds a suite definition. Suite IDs are unique.
func (r *Registry) Register(s *suite.Suite) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid suite: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.suites[s.ID]; exists {
		return fmt.Errorf("suite %s is already registered", s.ID)
	}
	r.suites[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

// MustRegister is Register for suite definitions fixed at compile time.
func (r *Registry) MustRegister(s *suite.Suite) {
	if err := r.Register(s); err != nil {
		panic(err)
	}
}

// Suite returns a registered suite by ID.
func (r *Registry) Suite(id string) (*suite.Suite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suites[id]
	if !ok {
		return nil, &SelectionError{Suite: id, Reason: "suite does not exist"}
	}
	return s, nil
}

// SuiteIDs returns all registered suite IDs, sorted.
func (r *Registry) SuiteIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)
	return ids
}

// ListCases enumerates a suite's cases in canonical order: manual cases in
// declaration order, then auto cases in specification order. It performs no
// network I/O and is stable across calls.
func (r *Registry) ListCases(suiteID string) ([]CaseInfo, error) {
	s, err := r.Suite(suiteID)
	if err != nil {
		return nil, err
	}
	cases := s.Cases()
	infos := make([]CaseInfo, 0, len(cases))
	for _, c := range cases {
		infos = append(infos, CaseInfo{Name: c.Name, Description: c.Description, Auto: c.Auto})
	}
	return infos, nil
}

// Resolve turns a selection into the ordered list of cases to run. Unknown
// case names fail with a SelectionError before anything executes. Auto cases
// form a single group: naming one individually is rejected rather than
// silently widened.
func (r *Registry) Resolve(suiteID string, sel Selection) ([]suite.Case, error) {
	s, err := r.Suite(suiteID)
	if err != nil {
		return nil, err
	}
	all := s.Cases()

	byName := make(map[string]suite.Case, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}
	for _, name := range append(append([]string{}, sel.Names...), sel.Ignore...) {
		c, ok := byName[name]
		if !ok {
			return nil, &SelectionError{Suite: suiteID, Case: name, Reason: "case does not exist in suite"}
		}
		if c.Auto && len(sel.Names) > 0 && contains(sel.Names, name) {
			return nil, &SelectionError{
				Suite: suiteID, Case: name,
				Reason: "auto cases run as a single group; select them with 'auto'",
			}
		}
	}

	ignored := make(map[string]struct{}, len(sel.Ignore))
	for _, name := range sel.Ignore {
		ignored[name] = struct{}{}
	}

	var resolved []suite.Case
	for _, c := range all {
		if _, skip := ignored[c.Name]; skip {
			continue
		}
		switch {
		case sel.All:
			resolved = append(resolved, c)
		case sel.Auto:
			if c.Auto {
				resolved = append(resolved, c)
			}
		default:
			if contains(sel.Names, c.Name) {
				resolved = append(resolved, c)
			}
		}
	}
	return resolved, nil
}

// ResolveFailed builds the selection for a re-run of the failed subset:
// exactly the cases whose most recent outcome was fail, error, or unclear,
// in canonical case order.
func (r *Registry) ResolveFailed(suiteID string, prior []types.Result) ([]suite.Case, error) {
	s, err := r.Suite(suiteID)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]types.Outcome, len(prior))
	for _, res := range prior {
		latest[res.Name] = res.Outcome
	}

	var resolved []suite.Case
	for _, c := range s.Cases() {
		if outcome, ran := latest[c.Name]; ran && outcome.CountsAsFailure() {
			resolved = append(resolved, c)
		}
	}
	return resolved, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// SelectionError reports a selection that cannot be resolved. Nothing runs
// when one is returned.
type SelectionError struct {
	Suite  string
	Case   string
	Reason string
}

func (e *SelectionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "selection error in suite %q", e.Suite)
	if e.Case != "" {
		fmt.Fprintf(&b, ", case %q", e.Case)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	return b.String()
}
