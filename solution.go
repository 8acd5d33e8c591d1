package catsat

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kr/pretty"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
	"github.com/catsat/catsat/internal/theory"
)

// Solution is an immutable snapshot of a satisfying Boolean assignment plus,
// per registered theory solver, the committed theory variable values. It is
// independent of the Problem that produced it and safe to retain after the
// Problem is no longer used.
type Solution struct {
	ID uuid.UUID

	names   map[string]clause.Atom
	values  map[clause.Atom]bool
	builder *theory.SolutionBuilder
}

func newSolution(store *clause.Store, st *assign.State, builder *theory.SolutionBuilder, id uuid.UUID) *Solution {
	names := make(map[string]clause.Atom, store.NumAtoms())
	values := make(map[clause.Atom]bool, store.NumAtoms())
	for a := 1; a <= store.NumAtoms(); a++ {
		atom := clause.Atom(a)
		info, err := store.Atom(atom)
		if err != nil {
			continue
		}
		names[info.Name] = atom
		values[atom] = st.Value(atom)
	}
	return &Solution{ID: id, names: names, values: values, builder: builder}
}

// Get returns the truth value of atom in this solution.
func (s *Solution) Get(a clause.Atom) bool { return s.values[a] }

// GetNamed looks up an atom by the name it was created with and returns its
// value, or ok=false if no atom has that name.
func (s *Solution) GetNamed(name string) (value, ok bool) {
	a, found := s.names[name]
	if !found {
		return false, false
	}
	return s.values[a], true
}

// Theory returns the value a registered theory solver tagged tag committed
// for its variable name, or ok=false if nothing was committed under that
// key.
func (s *Solution) Theory(tag, name string) (value any, ok bool) {
	if s.builder == nil {
		return nil, false
	}
	return s.builder.Value(tag, name)
}

// GoString renders a readable dump of the solution for failure messages and
// debugging.
func (s *Solution) GoString() string {
	return fmt.Sprintf("Solution{ID: %s, values: %# v}", s.ID, pretty.Formatter(s.values))
}

// Stats reports counters about how a Solve call found its answer.
// Diagnostic only — never required for correctness.
type Stats struct {
	Tries            int
	Flips            int
	Restarts         int
	ConflictsLearned int
	TheoryCalls      int
	BestObjective    int
}
