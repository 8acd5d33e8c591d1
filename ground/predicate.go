// Package ground expands typed predicate, fluent, and action builders into
// ground atoms and rules, generalizing what a narrow operator-overloaded
// front end would otherwise hide behind implicit conversions: symmetric
// binary predicates canonicalize their argument order so p(a,b) and p(b,a)
// denote one atom, fluents get a time-indexed atom family linked by frame
// axioms, and actions get precondition/effect clauses and rules.
package ground

import (
	"fmt"

	"github.com/catsat/catsat/internal/clause"
)

// Domain is a finite, totally ordered set of named elements. The order is
// used to canonicalize symmetric predicate argument tuples.
type Domain struct {
	elems []string
	index map[string]int
}

// NewDomain builds a Domain from elems, in the given order (their position
// here defines the total order used for canonicalization).
func NewDomain(elems ...string) *Domain {
	d := &Domain{elems: append([]string(nil), elems...), index: make(map[string]int, len(elems))}
	for i, e := range elems {
		d.index[e] = i
	}
	return d
}

// Elems returns the domain's elements in canonical order.
func (d *Domain) Elems() []string { return d.elems }

// Less reports whether a precedes b in this domain's total order.
func (d *Domain) Less(a, b string) bool { return d.index[a] < d.index[b] }

// PredicateID names a registered predicate.
type PredicateID int

// PredicateDescriptor is the typed replacement for a static per-predicate
// domain registry: it records a predicate's arity and whether its (binary)
// arguments should be canonicalized.
type PredicateDescriptor struct {
	Name      string
	Arity     int
	Symmetric bool // only meaningful when Arity == 2
}

// Grounder owns the atom set backing a predicate/fluent/action vocabulary
// and the Clause Store those atoms and their rules are emitted into.
type Grounder struct {
	store  *clause.Store
	domain *Domain

	descs map[PredicateID]PredicateDescriptor
	atoms map[string]clause.Atom // canonical key -> atom, shared across predicates/fluents/actions
	next  PredicateID
}

// New returns a Grounder emitting into store, using domain's total order for
// symmetric-predicate canonicalization.
func New(store *clause.Store, domain *Domain) *Grounder {
	return &Grounder{
		store:  store,
		domain: domain,
		descs:  make(map[PredicateID]PredicateDescriptor),
		atoms:  make(map[string]clause.Atom),
	}
}

// DeclarePredicate registers a new predicate and returns its id.
func (g *Grounder) DeclarePredicate(name string, arity int, symmetric bool) PredicateID {
	id := g.next
	g.next++
	g.descs[id] = PredicateDescriptor{Name: name, Arity: arity, Symmetric: symmetric}
	return id
}

// canonicalArgs reorders args into canonical form for symmetric binary
// predicates; all other predicates pass args through unchanged.
func (g *Grounder) canonicalArgs(desc PredicateDescriptor, args []string) ([]string, error) {
	if len(args) != desc.Arity {
		return nil, fmt.Errorf("catsat/ground: predicate %q expects %d argument(s), got %d", desc.Name, desc.Arity, len(args))
	}
	if !desc.Symmetric {
		return args, nil
	}
	if desc.Arity != 2 {
		return nil, fmt.Errorf("catsat/ground: predicate %q marked symmetric but arity is %d, not 2", desc.Name, desc.Arity)
	}
	a, b := args[0], args[1]
	if g.domain.Less(b, a) {
		a, b = b, a
	}
	return []string{a, b}, nil
}

func key(name string, args []string) string {
	return fmt.Sprintf("%s(%v)", name, args)
}

// Ground returns the atom for predicate id applied to args, allocating it on
// first use. Symmetric binary predicates canonicalize args first, so
// Ground(p, "a", "b") and Ground(p, "b", "a") always return the same atom.
func (g *Grounder) Ground(id PredicateID, args ...string) (clause.Atom, error) {
	desc, ok := g.descs[id]
	if !ok {
		return 0, fmt.Errorf("catsat/ground: unknown predicate id %d", id)
	}
	canon, err := g.canonicalArgs(desc, args)
	if err != nil {
		return 0, err
	}
	k := key(desc.Name, canon)
	if a, ok := g.atoms[k]; ok {
		return a, nil
	}
	a, err := g.store.NewAtom(k, clause.Plain, -1)
	if err != nil {
		return 0, err
	}
	g.atoms[k] = a
	return a, nil
}

// CanonicalPairs returns every unordered pair {a,b} (a != b) from the
// Grounder's domain exactly once, in domain order — the iteration a
// symmetric predicate's caller should use instead of all ordered pairs, so
// frame axioms or other per-pair clauses are never emitted twice for what a
// symmetric predicate has already canonicalized into one atom.
func (g *Grounder) CanonicalPairs() [][2]string {
	elems := g.domain.elems
	var out [][2]string
	for i := 0; i < len(elems); i++ {
		for j := i + 1; j < len(elems); j++ {
			out = append(out, [2]string{elems[i], elems[j]})
		}
	}
	return out
}
