// Package fd implements the finite-domain (enumeration) theory: one
// proposition per (variable, value) pair, with a cardinality clause
// enforcing exactly one value selected or, for conditional variables, at
// most one value and at least one whenever the condition holds.
package fd

import (
	"fmt"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
	"github.com/catsat/catsat/internal/theory"
)

// Variable is one finite-domain variable: a name, an ordered value domain,
// and the proposition literal standing for each (variable, value) pair.
type Variable struct {
	Name  string
	Values []string

	atoms map[string]clause.Lit
	cond  clause.Lit // zero if unconditional
}

// Lit returns the proposition literal for value, or false if value is not
// in this variable's domain.
func (v *Variable) Lit(value string) (clause.Lit, bool) {
	l, ok := v.atoms[value]
	return l, ok
}

// Theory is the registered finite-domain enumeration theory solver.
type Theory struct {
	vars []*Variable
}

// New returns an empty finite-domain theory. Variables are added with Var
// before Freeze is called on the owning clause store.
func New() *Theory { return &Theory{} }

// Tag identifies this theory for conflict attribution and solution lookup.
func (t *Theory) Tag() string { return "fd" }

// Var registers a finite-domain variable over values, allocating one
// TheoryShadow atom per value plus the cardinality clause(s) enforcing
// single selection. If cond is the zero Lit the variable is unconditional
// (exactly one value always selected); otherwise a value is only required
// when cond is true.
func (t *Theory) Var(store *clause.Store, name string, values []string, cond clause.Lit) (*Variable, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("catsat/fd: variable %q has an empty domain", name)
	}
	v := &Variable{Name: name, Values: append([]string(nil), values...), atoms: make(map[string]clause.Lit, len(values)), cond: cond}
	lits := make([]clause.Lit, 0, len(values))
	for _, val := range values {
		a, err := store.NewAtom(fmt.Sprintf("fd(%s=%s)", name, val), clause.TheoryShadow, -1)
		if err != nil {
			return nil, err
		}
		l := clause.Lit(a)
		v.atoms[val] = l
		lits = append(lits, l)
	}

	if cond == 0 {
		if err := store.AddClause(1, 1, lits...); err != nil {
			return nil, err
		}
	} else {
		atMostOne := append([]clause.Lit(nil), lits...)
		if err := store.AddClause(0, 1, atMostOne...); err != nil {
			return nil, err
		}
		atLeastIfCond := append(append([]clause.Lit(nil), lits...), cond.Negate())
		if err := store.AddClause(1, len(atLeastIfCond), atLeastIfCond...); err != nil {
			return nil, err
		}
	}

	t.vars = append(t.vars, v)
	return v, nil
}

// Preprocess requires no static lemma injection: the cardinality clauses
// emitted by Var already make the domain well-formed for the SAT core.
func (t *Theory) Preprocess(store *clause.Store) error { return nil }

// Solve commits, for every registered variable, the unique value whose
// proposition is true in st. Because the cardinality clause is part of the
// frozen clause set, any Boolean-feasible candidate already satisfies it, so
// this never reports a Conflict.
func (t *Theory) Solve(st *assign.State, builder *theory.SolutionBuilder) (*theory.Conflict, error) {
	for _, v := range t.vars {
		for _, val := range v.Values {
			if st.Satisfied(v.atoms[val]) {
				builder.Commit(t.Tag(), v.Name, val)
				break
			}
		}
	}
	return nil, nil
}

// Reset is a no-op: this theory carries no per-try mutable state beyond the
// atoms and clauses already fixed at registration time.
func (t *Theory) Reset() {}
