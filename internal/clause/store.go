package clause

import (
	"fmt"
)

// Kind classifies how an atom's truth is determined.
type Kind int

const (
	// Plain atoms are free for the search to assign.
	Plain Kind = iota
	// Derived atoms are supported only by rule bodies (logic-programming
	// semantics); their truth is constrained by the completion encoding.
	Derived
	// TheoryShadow atoms are owned by a registered theory solver.
	TheoryShadow
	// StructuralUnique marks an atom used purely as a grounding/bookkeeping
	// device (e.g. a cardinality helper), never part of a caller-visible
	// model directly.
	StructuralUnique
)

// AtomInfo is the per-atom metadata the Variable Store keeps.
type AtomInfo struct {
	Name       string
	Kind       Kind
	Bias       float64 // initial P(true) on a fresh assignment; -1 means "use default"
	Fixed      bool
	FixedValue bool
}

// Store is the Clause Store plus Variable Store: it owns the atom set, the
// generalized clauses, the logic-programming rules, and — after Freeze —
// the completion encoding and per-literal indexes.
//
// Atoms and clauses are added monotonically during construction. Freeze is
// idempotent; once frozen, further mutation is an error.
type Store struct {
	atoms   []AtomInfo // index 0 unused; atom i lives at atoms[i]
	clauses []Clause
	rules   map[Atom][]Rule // head atom -> its alternative rule bodies

	frozen bool

	// Built by Freeze:
	litIndex    map[Lit][]int // literal -> indexes into clauses of clauses it appears in
	atomIndex   map[Atom][]int
	derivedSeen map[Atom]bool // not populated: Freeze leaves it nil and nothing reads it
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		atoms: make([]AtomInfo, 1), // atoms[0] is a dummy; real atoms start at 1
		rules: make(map[Atom][]Rule),
	}
}

// NewAtom allocates a fresh atom. bias, if non-negative, sets the initial
// probability of the atom starting true; pass a negative value for "use
// the engine default".
func (s *Store) NewAtom(name string, kind Kind, bias float64) (Atom, error) {
	if s.frozen {
		return 0, fmt.Errorf("catsat: cannot add atom %q to a frozen problem", name)
	}
	a := Atom(len(s.atoms))
	s.atoms = append(s.atoms, AtomInfo{Name: name, Kind: kind, Bias: bias})
	return a, nil
}

// Atom returns the metadata for a, or an error if a is not a known atom.
func (s *Store) Atom(a Atom) (AtomInfo, error) {
	if int(a) <= 0 || int(a) >= len(s.atoms) {
		return AtomInfo{}, fmt.Errorf("catsat: atom %d is not defined", a)
	}
	return s.atoms[a], nil
}

// NumAtoms returns the number of atoms allocated so far (not counting the
// unused index 0).
func (s *Store) NumAtoms() int { return len(s.atoms) - 1 }

// Fix forces atom a to always take the given value. A conflicting fixation
// (the same atom fixed both true and false) is not an error here: the second
// value is kept as a unit clause opposite the first fixation's unit clause,
// so the frozen clause set holds a contradictory unit pair that the solver
// reports as unsatisfiable.
func (s *Store) Fix(a Atom, value bool) error {
	if s.frozen {
		return fmt.Errorf("catsat: cannot fix atom %d on a frozen problem", a)
	}
	info, err := s.Atom(a)
	if err != nil {
		return err
	}
	if info.Fixed && info.FixedValue != value {
		l := Lit(a)
		if !value {
			l = l.Negate()
		}
		s.clauses = append(s.clauses, Clause{Min: 1, Max: 1, Lits: []Lit{l}})
		return nil
	}
	info.Fixed = true
	info.FixedValue = value
	s.atoms[a] = info
	return nil
}

// AddClause adds a generalized clause to the store.
func (s *Store) AddClause(min, max int, lits ...Lit) error {
	if s.frozen {
		return fmt.Errorf("catsat: cannot add a clause to a frozen problem")
	}
	c := Clause{Min: min, Max: max, Lits: append([]Lit(nil), lits...)}
	if err := validate(c); err != nil {
		return err
	}
	for _, l := range c.Lits {
		if _, err := s.Atom(l.Atom()); err != nil {
			return fmt.Errorf("catsat: clause references unknown atom: %w", err)
		}
	}
	s.clauses = append(s.clauses, c)
	return nil
}

// AddRule adds a rule head <- body. head must already exist as a Derived
// atom, and every body literal must name an existing atom; AddRule rejects
// anything else immediately (Freeze checks the head kind again).
func (s *Store) AddRule(head Atom, body ...Lit) error {
	if s.frozen {
		return fmt.Errorf("catsat: cannot add a rule to a frozen problem")
	}
	info, err := s.Atom(head)
	if err != nil {
		return err
	}
	if info.Kind != Derived {
		return fmt.Errorf("catsat: rule head %d (%s) is not a derived atom", head, info.Name)
	}
	for _, l := range body {
		if _, err := s.Atom(l.Atom()); err != nil {
			return fmt.Errorf("catsat: rule body references unknown atom: %w", err)
		}
	}
	s.rules[head] = append(s.rules[head], Rule{Head: head, Body: append([]Lit(nil), body...)})
	return nil
}

// Clauses returns the frozen clause set (including the completion
// encoding). It must only be called after Freeze.
func (s *Store) Clauses() []Clause { return s.clauses }

// ClausesTouching returns the indexes of clauses in Clauses() that mention
// atom a, in either polarity.
func (s *Store) ClausesTouching(a Atom) []int {
	return s.atomIndex[a]
}

// ClausesTouchingLit returns the indexes of clauses containing exactly l
// (matching polarity).
func (s *Store) ClausesTouchingLit(l Lit) []int {
	return s.litIndex[l]
}

// IsFrozen reports whether Freeze has been called.
func (s *Store) IsFrozen() bool { return s.frozen }

// Snapshot returns a defensive, independently-mutable copy of this store's
// clause set for use by solution-sampling scratch problems (the negation-
// clause iterator that avoids re-returning an already-seen solution). Only
// legal after Freeze.
func (s *Store) Snapshot() []Clause {
	out := make([]Clause, len(s.clauses))
	for i, c := range s.clauses {
		out[i] = Clause{Min: c.Min, Max: c.Max, Lits: append([]Lit(nil), c.Lits...)}
	}
	return out
}

// AppendClause appends an already-built clause directly to the frozen
// clause set and refreshes the literal/atom indexes for it. Used by the
// theory coordinator to lift a conflict into a blocking clause and
// by the SLS core's scratch problems for learned negation clauses. It does
// not require the store to be unfrozen — this is the one mutation allowed
// on a frozen problem, and it is restricted to appending (never removing
// or mutating existing clauses), so all previously built indexes remain
// valid.
func (s *Store) AppendClause(c Clause) (int, error) {
	if err := validate(c); err != nil {
		return 0, err
	}
	idx := len(s.clauses)
	s.clauses = append(s.clauses, c)
	s.indexClause(idx, c)
	return idx, nil
}
