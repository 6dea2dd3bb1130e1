// Package reporting accumulates the results of one run and renders them for
// humans and CI: a live-queryable collector, a JSON document mirroring every
// result field, a JUnit XML document, and a plain console listing.
package reporting

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/broadcastkit/conform/types"
)

// ErrDuplicateResult reports a second result for a case name within the same
// run. Every case contributes at most one result.
var ErrDuplicateResult = errors.New("duplicate result name")

// Collector is the ordered accumulator of one run's results. Appends
// preserve execution order; snapshots are safe at any time, including
// mid-run.
type Collector struct {
	mu      sync.RWMutex
	results []types.Result
	names   map[string]struct{}
}

func NewCollector() *Collector {
	return &Collector{names: make(map[string]struct{})}
}

// Append records a result. It is O(1) and rejects duplicate names.
func (c *Collector) Append(r types.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.names[r.Name]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateResult, r.Name)
	}
	c.names[r.Name] = struct{}{}
	c.results = append(c.results, r)
	return nil
}

// Snapshot returns the results recorded so far, in execution order.
func (c *Collector) Snapshot() []types.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.Result, len(c.results))
	copy(out, c.results)
	return out
}

// Len returns the number of results recorded so far.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Summary aggregates a result set for exit-status decisions and footers.
type Summary struct {
	Total    int
	Counts   map[types.Outcome]int
	Worst    types.Outcome
	Duration time.Duration
}

// Summarize computes per-outcome counts and the single worst outcome.
func (c *Collector) Summarize() Summary {
	return Summarize(c.Snapshot())
}

// Summarize computes the summary of an arbitrary result set.
func Summarize(results []types.Result) Summary {
	s := Summary{
		Total:  len(results),
		Counts: make(map[types.Outcome]int),
		Worst:  types.WorstOutcome(results),
	}
	for _, r := range results {
		s.Counts[r.Outcome]++
		s.Duration += r.Duration()
	}
	return s
}
