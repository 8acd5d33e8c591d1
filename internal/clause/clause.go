// Package clause implements the clause store: a compact representation of
// generalized clauses (min ≤ Σ literals ≤ max) plus the logic-programming
// rules that get compiled down to clauses via Clark completion.
package clause

import (
	"fmt"
	"math"
)

// Atom is a stable positive integer identifying a propositional variable.
// Atom values start at 1; 0 is never a valid atom.
type Atom int

// Lit is a signed Atom id: positive is the atom, negative is its negation.
// Lit 0 is reserved and never appears in a well-formed clause.
type Lit int

// Atom returns the unsigned atom underlying l.
func (l Lit) Atom() Atom {
	if l < 0 {
		return Atom(-l)
	}
	return Atom(l)
}

// Positive reports whether l is a positive occurrence of its atom.
func (l Lit) Positive() bool { return l > 0 }

// Negate returns the complementary literal.
func (l Lit) Negate() Lit { return -l }

func (l Lit) String() string {
	if l < 0 {
		return fmt.Sprintf("¬a%d", -l)
	}
	return fmt.Sprintf("a%d", l)
}

// MaxUnbounded marks a clause's max bound as +∞ ("at least min" with no
// upper limit).
const MaxUnbounded = math.MaxInt32

// Clause is a generalized cardinality constraint: the number of literals
// among Lits that are satisfied in an assignment must lie in [Min, Max].
//
//	(1, k)    - classical disjunction
//	(1, 1)    - exactly one
//	(0, n)    - at most n
//	(n, k)    - at least n
type Clause struct {
	Min, Max int
	Lits     []Lit
}

// Width reports the number of literals in the clause.
func (c Clause) Width() int { return len(c.Lits) }

func (c Clause) String() string {
	return fmt.Sprintf("(%d,%d,%v)", c.Min, c.Max, c.Lits)
}

// Rule is a logic-programming rule head <- body. Head must name an atom of
// kind Derived; Body is a conjunction of literals (a positive literal in
// Body requires the atom true, a negative literal requires it false).
type Rule struct {
	Head Atom
	Body []Lit
}

// validate checks the basic clause invariants: 0 <= min <= max, at least
// one literal, no duplicate atoms within the clause.
func validate(c Clause) error {
	if c.Min < 0 || c.Min > c.Max {
		return fmt.Errorf("clause%v: invalid bounds: min=%d max=%d", c.Lits, c.Min, c.Max)
	}
	if len(c.Lits) == 0 {
		return fmt.Errorf("clause: no literals")
	}
	seen := make(map[Atom]bool, len(c.Lits))
	for _, l := range c.Lits {
		if l == 0 {
			return fmt.Errorf("clause%v: literal 0 is reserved", c.Lits)
		}
		a := l.Atom()
		if seen[a] {
			return fmt.Errorf("clause%v: duplicate atom %d", c.Lits, a)
		}
		seen[a] = true
	}
	return nil
}
