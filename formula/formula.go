// Package formula is an explicit builder expression tree for Boolean
// formulas: a small AST with named constructors (And, Or, Not, Implies,
// AtMost) that compiles down to ordinary generalized clauses, replacing an
// operator-overloaded/implicit-conversion DSL with plain function calls.
package formula

import (
	"fmt"

	"github.com/catsat/catsat/internal/clause"
)

// Expr is a node in a Boolean formula tree. Compile lowers it to a literal
// usable anywhere a literal is expected (another Expr, a clause, a rule
// body), allocating a fresh indicator atom and its defining clauses for any
// compound node.
type Expr interface {
	Compile(store *clause.Store) (clause.Lit, error)
}

// Var wraps an existing atom as a leaf expression.
func Var(a clause.Atom) Expr { return litExpr(clause.Lit(a)) }

// Literal wraps an existing literal (atom or its negation) as a leaf
// expression.
func Literal(l clause.Lit) Expr { return litExpr(l) }

type litExpr clause.Lit

func (l litExpr) Compile(*clause.Store) (clause.Lit, error) { return clause.Lit(l), nil }

type notExpr struct{ e Expr }

// Not negates e.
func Not(e Expr) Expr { return notExpr{e} }

func (n notExpr) Compile(store *clause.Store) (clause.Lit, error) {
	l, err := n.e.Compile(store)
	if err != nil {
		return 0, err
	}
	return l.Negate(), nil
}

type andExpr struct{ es []Expr }

// And is the conjunction of es.
func And(es ...Expr) Expr { return andExpr{es} }

func (a andExpr) Compile(store *clause.Store) (clause.Lit, error) {
	if len(a.es) == 0 {
		return 0, fmt.Errorf("catsat/formula: And() with no operands")
	}
	lits, err := compileAll(store, a.es)
	if err != nil {
		return 0, err
	}
	if len(lits) == 1 {
		return lits[0], nil
	}
	ind, err := store.NewAtom("$and", clause.StructuralUnique, -1)
	if err != nil {
		return 0, err
	}
	indL := clause.Lit(ind)
	// ind -> each conjunct
	for _, l := range lits {
		if err := store.AddClause(1, 2, indL.Negate(), l); err != nil {
			return 0, err
		}
	}
	// (AND of conjuncts) -> ind, i.e. (not l1 v ... v not lk v ind)
	body := make([]clause.Lit, 0, len(lits)+1)
	for _, l := range lits {
		body = append(body, l.Negate())
	}
	body = append(body, indL)
	if err := store.AddClause(1, len(body), body...); err != nil {
		return 0, err
	}
	return indL, nil
}

type orExpr struct{ es []Expr }

// Or is the disjunction of es.
func Or(es ...Expr) Expr { return orExpr{es} }

func (o orExpr) Compile(store *clause.Store) (clause.Lit, error) {
	if len(o.es) == 0 {
		return 0, fmt.Errorf("catsat/formula: Or() with no operands")
	}
	lits, err := compileAll(store, o.es)
	if err != nil {
		return 0, err
	}
	if len(lits) == 1 {
		return lits[0], nil
	}
	ind, err := store.NewAtom("$or", clause.StructuralUnique, -1)
	if err != nil {
		return 0, err
	}
	indL := clause.Lit(ind)
	// each disjunct -> ind
	for _, l := range lits {
		if err := store.AddClause(1, 2, l.Negate(), indL); err != nil {
			return 0, err
		}
	}
	// ind -> (l1 v ... v lk)
	body := make([]clause.Lit, 0, len(lits)+1)
	body = append(body, indL.Negate())
	body = append(body, lits...)
	if err := store.AddClause(1, len(body), body...); err != nil {
		return 0, err
	}
	return indL, nil
}

type impliesExpr struct{ a, b Expr }

// Implies is "a -> b", equivalent to Or(Not(a), b).
func Implies(a, b Expr) Expr { return impliesExpr{a, b} }

func (i impliesExpr) Compile(store *clause.Store) (clause.Lit, error) {
	return Or(Not(i.a), i.b).Compile(store)
}

// cardMode distinguishes the three cardinality shapes AssertCardinality can
// lower to; N alone cannot tell Exactly(n) apart from AtMost(n) since both
// carry the same bound.
type cardMode int

const (
	cardAtMost cardMode = iota
	cardAtLeast
	cardExactly
)

// AtMost is a cardinality constraint over exprs: at most n of them may be
// true. Unlike And/Or/Not/Implies, AtMost is asserted directly as a
// generalized clause rather than compiled to a reusable literal: a
// cardinality bound has no natural if-and-only-if encoding into a single
// indicator atom without a sequential-counter circuit, and every use in
// this codebase asserts cardinality constraints standalone rather than
// nesting them inside a larger formula.
type AtMostExpr struct {
	N     int
	Exprs []Expr

	mode cardMode
}

// AtMost builds an AtMostExpr asserting at most n of exprs are true.
func AtMost(n int, exprs ...Expr) AtMostExpr { return AtMostExpr{N: n, Exprs: exprs, mode: cardAtMost} }

// AtLeast builds a cardinality assertion requiring at least n of exprs true.
func AtLeast(n int, exprs ...Expr) AtMostExpr {
	return AtMostExpr{N: n, Exprs: exprs, mode: cardAtLeast}
}

// Exactly builds a cardinality assertion requiring exactly n of exprs true.
func Exactly(n int, exprs ...Expr) AtMostExpr {
	return AtMostExpr{N: n, Exprs: exprs, mode: cardExactly}
}

// Assert compiles e (an And/Or/Not/Implies tree) to a literal and asserts
// it unconditionally true, i.e. the unit clause (1,1,lit).
func Assert(store *clause.Store, e Expr) error {
	l, err := e.Compile(store)
	if err != nil {
		return err
	}
	return store.AddClause(1, 1, l)
}

// AssertCardinality asserts a cardinality constraint directly as a
// generalized clause: exactly, at-most, or at-least n of c.Exprs, per how c
// was built (Exactly/AtMost/AtLeast).
func AssertCardinality(store *clause.Store, c AtMostExpr) error {
	lits, err := compileAll(store, c.Exprs)
	if err != nil {
		return err
	}
	min, max := 0, c.N
	switch c.mode {
	case cardAtLeast:
		min, max = c.N, len(lits)
	case cardExactly:
		min, max = c.N, c.N
	}
	return store.AddClause(min, max, lits...)
}

func compileAll(store *clause.Store, es []Expr) ([]clause.Lit, error) {
	out := make([]clause.Lit, len(es))
	for i, e := range es {
		l, err := e.Compile(store)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}
