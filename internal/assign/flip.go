package assign

import (
	"math/rand"

	"github.com/catsat/catsat/internal/clause"
)

// Init assigns every atom true with probability equal to its initial bias
// (default 0.5 when no bias is set), then forces fixed atoms to their fixed
// value, and finally computes satCount/unsat from scratch.
func (st *State) Init(rng *rand.Rand) {
	for a := 1; a <= st.numAtoms; a++ {
		atom := clause.Atom(a)
		info, err := st.store.Atom(atom)
		if err != nil {
			continue
		}
		if info.Fixed {
			st.set(atom, info.FixedValue)
			continue
		}
		bias := info.Bias
		if bias < 0 {
			bias = 0.5
		}
		st.set(atom, rng.Float64() < bias)
	}
	st.Recompute()
}

// polarityOf returns the literal of clause c whose atom is a, and whether
// found. Clauses never contain duplicate atoms, so this is
// unambiguous.
func polarityOf(c clause.Clause, a clause.Atom) (clause.Lit, bool) {
	for _, l := range c.Lits {
		if l.Atom() == a {
			return l, true
		}
	}
	return 0, false
}

// FlipCost returns the net change in |unsat_set| that flipping atom a would
// cause: negative means flipping a reduces the number of unsatisfied
// clauses (a "beneficial" flip), positive means it would make things worse.
// It does not mutate the state.
func (st *State) FlipCost(a clause.Atom) int {
	delta := 0
	cur := st.Value(a)
	for _, ci := range st.store.ClausesTouching(a) {
		c := st.store.Clauses()[ci]
		l, ok := polarityOf(c, a)
		if !ok {
			continue
		}
		wasUnsat := st.IsUnsat(ci)
		newCount := st.satCount[ci]
		if l.Positive() == cur {
			newCount--
		} else {
			newCount++
		}
		nowUnsat := newCount < c.Min || newCount > c.Max
		switch {
		case wasUnsat && !nowUnsat:
			delta--
		case !wasUnsat && nowUnsat:
			delta++
		}
	}
	return delta
}

// Flip toggles atom a's value and incrementally updates satCount and
// unsat-set membership for every clause touching a. O(clauses touching a ×
// clause width).
func (st *State) Flip(a clause.Atom) {
	cur := st.Value(a)
	st.set(a, !cur)
	st.clock++
	st.lastFlip[a] = st.clock
	for _, ci := range st.store.ClausesTouching(a) {
		c := st.store.Clauses()[ci]
		l, ok := polarityOf(c, a)
		if !ok {
			continue
		}
		if l.Positive() == cur {
			st.satCount[ci]--
		} else {
			st.satCount[ci]++
		}
		n := st.satCount[ci]
		if n < c.Min || n > c.Max {
			st.markUnsat(ci)
		} else {
			st.markSat(ci)
		}
	}
}

// AtomsTouchingClause returns the distinct atoms appearing in clause ci,
// used by the search loop to pick a candidate atom from an unsatisfied
// clause.
func (st *State) AtomsTouchingClause(ci int) []clause.Atom {
	c := st.store.Clauses()[ci]
	out := make([]clause.Atom, len(c.Lits))
	for i, l := range c.Lits {
		out[i] = l.Atom()
	}
	return out
}

// Clause returns the generalized clause at index ci.
func (st *State) Clause(ci int) clause.Clause { return st.store.Clauses()[ci] }

// MovesTowardSatisfied reports whether flipping the atom of literal l would
// move clause ci's satisfied-count toward its [min,max] band: a clause
// below min wants more true literals (flip a false literal whose positive
// form is l true), a clause above max wants fewer (flip a true literal to
// false). Used by the SLS core to restrict atom selection to literals
// whose flip is directionally useful.
func (st *State) MovesTowardSatisfied(ci int, l clause.Lit) bool {
	c := st.Clause(ci)
	n := st.satCount[ci]
	isTrue := st.Satisfied(l)
	if n < c.Min {
		// Need more true literals: flipping a currently-false literal true helps.
		return !isTrue
	}
	if n > c.Max {
		// Need fewer true literals: flipping a currently-true literal false helps.
		return isTrue
	}
	return false
}
