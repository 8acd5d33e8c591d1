// Package assign implements the Truth-Assignment State: the current
// candidate model plus incremental satisfaction counters per clause, the
// structure flipped by the SLS search loop.
package assign

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/catsat/catsat/internal/clause"
)

// State is the mutable candidate assignment the search loop flips. It is
// built once per Store and reset at the start of every solve attempt.
type State struct {
	store *clause.Store

	value *bitset.BitSet // value.Test(uint(atom)) == current truth value

	satCount []int  // per-clause count of currently-satisfied literals
	unsat    *bitset.BitSet // membership bitset: clause index -> unsatisfied
	unsatList []int // dense list of unsatisfied clause indexes, kept in sync with unsat
	unsatPos  []int // clause index -> position in unsatList, or -1

	numAtoms int

	clock    int   // monotonically increasing flip counter
	lastFlip []int // atom -> clock value when it was last flipped (0 = never)
}

// New builds a State for the frozen store s. Call Init to populate an
// initial assignment before using it.
func New(s *clause.Store) *State {
	n := s.NumAtoms()
	nc := len(s.Clauses())
	st := &State{
		store:    s,
		value:    bitset.New(uint(n + 1)),
		satCount: make([]int, nc),
		unsat:    bitset.New(uint(nc)),
		unsatPos: make([]int, nc),
		numAtoms: n,
		lastFlip: make([]int, n+1),
	}
	for i := range st.unsatPos {
		st.unsatPos[i] = -1
	}
	return st
}

// Value returns the current truth value of atom a.
func (st *State) Value(a clause.Atom) bool { return st.value.Test(uint(a)) }

// Satisfied reports whether literal l is currently true.
func (st *State) Satisfied(l clause.Lit) bool {
	v := st.value.Test(uint(l.Atom()))
	return v == l.Positive()
}

// NumUnsat returns the number of currently-unsatisfied clauses.
func (st *State) NumUnsat() int { return len(st.unsatList) }

// UnsatClauses returns the dense (unordered) list of unsatisfied clause
// indexes. Callers must not mutate the returned slice.
func (st *State) UnsatClauses() []int { return st.unsatList }

// IsUnsat reports whether clause index ci is currently unsatisfied.
func (st *State) IsUnsat(ci int) bool { return st.unsatPos[ci] >= 0 }

func (st *State) markUnsat(ci int) {
	if st.unsatPos[ci] >= 0 {
		return
	}
	st.unsatPos[ci] = len(st.unsatList)
	st.unsatList = append(st.unsatList, ci)
	st.unsat.Set(uint(ci))
}

func (st *State) markSat(ci int) {
	pos := st.unsatPos[ci]
	if pos < 0 {
		return
	}
	last := len(st.unsatList) - 1
	movedIdx := st.unsatList[last]
	st.unsatList[pos] = movedIdx
	st.unsatPos[movedIdx] = pos
	st.unsatList = st.unsatList[:last]
	st.unsatPos[ci] = -1
	st.unsat.Clear(uint(ci))
}

// countSatisfied counts how many literals of clause c are currently true.
func (st *State) countSatisfied(c clause.Clause) int {
	n := 0
	for _, l := range c.Lits {
		if st.Satisfied(l) {
			n++
		}
	}
	return n
}

// refreshClause recomputes satCount[ci] and its unsat-set membership from
// scratch. Used during (re)initialization.
func (st *State) refreshClause(ci int, c clause.Clause) {
	n := st.countSatisfied(c)
	st.satCount[ci] = n
	if n < c.Min || n > c.Max {
		st.markUnsat(ci)
	} else {
		st.markSat(ci)
	}
}

// Recompute rebuilds satCount and the unsat set for every clause in the
// store's current clause set. Called after Init and after new clauses are
// appended mid-search (e.g. a learned blocking clause).
func (st *State) Recompute() {
	clauses := st.store.Clauses()
	if need := len(clauses); need > len(st.satCount) {
		grown := make([]int, need)
		copy(grown, st.satCount)
		st.satCount = grown
		// unsatList is cleared below, so every old position is stale.
		growPos := make([]int, need)
		for i := range growPos {
			growPos[i] = -1
		}
		st.unsatPos = growPos
		st.unsat = bitset.New(uint(need))
		st.unsatList = st.unsatList[:0]
	}
	for ci, c := range clauses {
		st.refreshClause(ci, c)
	}
}

// RecomputeOne recomputes a single newly-appended clause without touching
// the others; used when the theory coordinator lifts a conflict into a new
// blocking clause mid-search, which must not disturb the rest of the
// incremental state.
func (st *State) RecomputeOne(ci int) {
	clauses := st.store.Clauses()
	if ci >= len(st.satCount) {
		grown := make([]int, len(clauses))
		copy(grown, st.satCount)
		st.satCount = grown
		growPos := make([]int, len(clauses))
		copy(growPos, st.unsatPos)
		for i := len(st.unsatPos); i < len(growPos); i++ {
			growPos[i] = -1
		}
		st.unsatPos = growPos
		grownSet := bitset.New(uint(len(clauses)))
		st.unsat.Copy(grownSet)
		st.unsat = grownSet
	}
	st.refreshClause(ci, clauses[ci])
}

// set forces atom a's value without touching satisfaction bookkeeping; only
// safe to call before the clause-level counters have been computed (i.e.
// during Init).
func (st *State) set(a clause.Atom, v bool) {
	if v {
		st.value.Set(uint(a))
	} else {
		st.value.Clear(uint(a))
	}
}

// NumAtoms returns the number of atoms this state tracks.
func (st *State) NumAtoms() int { return st.numAtoms }

// LastFlipped returns the clock value at which atom a was last flipped, or
// 0 if it has never been flipped. Lower values are "less recently
// flipped", used by the SLS core's recency tie-break.
func (st *State) LastFlipped(a clause.Atom) int { return st.lastFlip[a] }

// Clone returns an independent deep copy of st, used to retain the best
// feasible assignment observed across restarts/optimization.
func (st *State) Clone() *State {
	out := &State{
		store:     st.store,
		value:     st.value.Clone(),
		satCount:  append([]int(nil), st.satCount...),
		unsat:     st.unsat.Clone(),
		unsatList: append([]int(nil), st.unsatList...),
		unsatPos:  append([]int(nil), st.unsatPos...),
		numAtoms:  st.numAtoms,
		clock:     st.clock,
		lastFlip:  append([]int(nil), st.lastFlip...),
	}
	return out
}
