// Package catsat is a declarative constraint-solving library: callers
// describe a space of legal Boolean models — optionally extended with
// logic-programming rules, cardinality/pseudo-Boolean constraints, and
// pluggable theory solvers for non-Boolean variables such as finite-domain
// selections, floats, and fluent/action temporal structure — and Solve
// returns a uniformly-sampled satisfying model found by stochastic local
// search.
//
// The engine is single-threaded and non-suspending within one solve: a
// Problem must not be mutated or solved concurrently from multiple
// goroutines. A frozen Problem (one that has been solved at least once) is
// immutable; Solve and Solutions reuse its clause set.
package catsat

import "github.com/catsat/catsat/internal/clause"

// Lit is a signed atom id, re-exported so callers never need to import an
// internal package to build clause/rule bodies.
type Lit = clause.Lit

// Atom is a stable positive integer identifying a propositional variable.
type Atom = clause.Atom
