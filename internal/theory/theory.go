// Package theory implements the theory-solver coordination protocol: a
// registry of pluggable theory solvers, a preprocessing pass that may inject
// static lemmas into the clause store, and the per-candidate-model Solve
// callback that lifts theory conflicts into learned blocking clauses.
package theory

import (
	"fmt"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
)

// Theory is implemented by a registered theory solver. The coordinator
// drives every theory through Preprocess once, then Reset once per try and
// Solve once per Boolean-feasible candidate within a try.
type Theory interface {
	// Tag names this theory for diagnostics and conflict attribution.
	Tag() string

	// Preprocess runs once after the clause store is frozen. It may append
	// further clauses (e.g. sorted-bound implication chains) directly to
	// store. Returning a non-nil error aborts solving before search begins.
	Preprocess(store *clause.Store) error

	// Solve is called whenever the SLS core reaches a Boolean-feasible
	// candidate assignment. It inspects which of its theory propositions are
	// true in st, runs its own procedure, and either commits variable
	// values into builder or returns a Conflict.
	Solve(st *assign.State, builder *SolutionBuilder) (*Conflict, error)

	// Reset clears any per-solve-attempt state between tries.
	Reset()
}

// Conflict is a minimal subset of proposition literals whose combined truth
// in the candidate assignment caused a theory to fail. The coordinator lifts
// this into a blocking clause forbidding that exact combination in future
// candidates.
type Conflict struct {
	Theory string
	Lits   []clause.Lit
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("theory %s: conflict over %d proposition(s)", c.Theory, len(c.Lits))
}

// SolutionBuilder accumulates theory-committed variable values across every
// registered theory's Solve call during one candidate-model check. Values
// are keyed by (theory tag, variable name) so distinct theories never
// collide.
type SolutionBuilder struct {
	values map[string]map[string]any
}

// NewSolutionBuilder returns an empty builder.
func NewSolutionBuilder() *SolutionBuilder {
	return &SolutionBuilder{values: make(map[string]map[string]any)}
}

// Commit records that theory tag resolved its variable name to value.
func (b *SolutionBuilder) Commit(tag, name string, value any) {
	m, ok := b.values[tag]
	if !ok {
		m = make(map[string]any)
		b.values[tag] = m
	}
	m[name] = value
}

// Value returns the committed value for (tag, name), and whether it was set.
func (b *SolutionBuilder) Value(tag, name string) (any, bool) {
	m, ok := b.values[tag]
	if !ok {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// Tags reports every theory tag that committed at least one value.
func (b *SolutionBuilder) Tags() []string {
	out := make([]string, 0, len(b.values))
	for tag := range b.values {
		out = append(out, tag)
	}
	return out
}
