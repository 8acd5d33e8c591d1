// Package float implements the float interval theory: variables own a
// static [lo,hi] interval, propositions assert constant or variable-to-
// variable bounds and equality aliasing, and solving propagates active
// bounds to a fixed point before sampling each variable uniformly inside
// its final interval.
package float

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
	"github.com/catsat/catsat/internal/theory"
)

// Variable is one float-typed variable with a static interval.
type Variable struct {
	Name   string
	Lo, Hi float64

	leConsts []leConst // x <= c propositions, built during Var/LE registration
	geConsts []geConst
}

type leConst struct {
	c   float64
	lit clause.Lit
}

type geConst struct {
	c   float64
	lit clause.Lit
}

type edgeKind int

const (
	leEdge edgeKind = iota // a <= b
	eqEdge                 // a == b (propagated both directions)
)

type edge struct {
	kind edgeKind
	a, b *Variable
	lit  clause.Lit
}

// Theory is the registered float interval theory solver.
type Theory struct {
	vars  []*Variable
	edges []edge
	rng   *rand.Rand
}

// New returns an empty float theory, seeded from seed for reproducible
// sampling.
func New(seed uint64) *Theory {
	return &Theory{rng: rand.New(rand.NewSource(int64(seed)))}
}

// Tag identifies this theory for conflict attribution and solution lookup.
func (t *Theory) Tag() string { return "float" }

// Var registers a float variable with static bounds [lo,hi].
func (t *Theory) Var(name string, lo, hi float64) (*Variable, error) {
	if lo > hi {
		return nil, fmt.Errorf("catsat/float: variable %q has empty static interval [%v,%v]", name, lo, hi)
	}
	v := &Variable{Name: name, Lo: lo, Hi: hi}
	t.vars = append(t.vars, v)
	return v, nil
}

// LE registers the proposition "v <= c", returning its literal.
func (t *Theory) LE(store *clause.Store, v *Variable, c float64) (clause.Lit, error) {
	a, err := store.NewAtom(fmt.Sprintf("float-le(%s,%v)", v.Name, c), clause.TheoryShadow, -1)
	if err != nil {
		return 0, err
	}
	l := clause.Lit(a)
	v.leConsts = append(v.leConsts, leConst{c: c, lit: l})
	return l, nil
}

// GE registers the proposition "v >= c", returning its literal.
func (t *Theory) GE(store *clause.Store, v *Variable, c float64) (clause.Lit, error) {
	a, err := store.NewAtom(fmt.Sprintf("float-ge(%s,%v)", v.Name, c), clause.TheoryShadow, -1)
	if err != nil {
		return 0, err
	}
	l := clause.Lit(a)
	v.geConsts = append(v.geConsts, geConst{c: c, lit: l})
	return l, nil
}

// LEVar registers the proposition "a <= b" between two variables.
func (t *Theory) LEVar(store *clause.Store, a, b *Variable) (clause.Lit, error) {
	lit, err := store.NewAtom(fmt.Sprintf("float-le(%s,%s)", a.Name, b.Name), clause.TheoryShadow, -1)
	if err != nil {
		return 0, err
	}
	l := clause.Lit(lit)
	t.edges = append(t.edges, edge{kind: leEdge, a: a, b: b, lit: l})
	return l, nil
}

// GEVar registers the proposition "a >= b" between two variables, encoded
// internally as "b <= a".
func (t *Theory) GEVar(store *clause.Store, a, b *Variable) (clause.Lit, error) {
	return t.LEVar(store, b, a)
}

// Eq registers the proposition "a == b" (union-find alias) between two
// variables.
func (t *Theory) Eq(store *clause.Store, a, b *Variable) (clause.Lit, error) {
	lit, err := store.NewAtom(fmt.Sprintf("float-eq(%s,%s)", a.Name, b.Name), clause.TheoryShadow, -1)
	if err != nil {
		return 0, err
	}
	l := clause.Lit(lit)
	t.edges = append(t.edges, edge{kind: eqEdge, a: a, b: b, lit: l})
	return l, nil
}

// Preprocess sorts each variable's constant bound propositions and injects
// implication chains so the SAT core never proposes a locally-inconsistent
// combination (e.g. "x <= 3" true alongside "x <= 5" false): for ascending
// constants a < b, "x <= a" implies "x <= b", and for descending constants
// "x >= b" implies "x >= a".
func (t *Theory) Preprocess(store *clause.Store) error {
	for _, v := range t.vars {
		sort.Slice(v.leConsts, func(i, j int) bool { return v.leConsts[i].c < v.leConsts[j].c })
		for i := 0; i+1 < len(v.leConsts); i++ {
			lo, hi := v.leConsts[i], v.leConsts[i+1]
			if _, err := store.AppendClause(clause.Clause{Min: 1, Max: 2, Lits: []clause.Lit{lo.lit.Negate(), hi.lit}}); err != nil {
				return err
			}
		}
		sort.Slice(v.geConsts, func(i, j int) bool { return v.geConsts[i].c < v.geConsts[j].c })
		for i := 0; i+1 < len(v.geConsts); i++ {
			lo, hi := v.geConsts[i], v.geConsts[i+1]
			if _, err := store.AppendClause(clause.Clause{Min: 1, Max: 2, Lits: []clause.Lit{hi.lit.Negate(), lo.lit}}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Solve propagates every true bound/alias proposition to a fixed point over
// each variable's interval, then samples each variable uniformly inside its
// final interval; variables joined by true Eq propositions share one sample.
// Reports a Conflict over the propositions touching any variable whose
// interval collapsed to empty.
func (t *Theory) Solve(st *assign.State, builder *theory.SolutionBuilder) (*theory.Conflict, error) {
	lo := make(map[*Variable]float64, len(t.vars))
	hi := make(map[*Variable]float64, len(t.vars))
	cause := make(map[*Variable][]clause.Lit, len(t.vars))
	for _, v := range t.vars {
		lo[v], hi[v] = v.Lo, v.Hi
		for _, c := range v.leConsts {
			if st.Satisfied(c.lit) && c.c < hi[v] {
				hi[v] = c.c
				cause[v] = append(cause[v], c.lit)
			}
		}
		for _, c := range v.geConsts {
			if st.Satisfied(c.lit) && c.c > lo[v] {
				lo[v] = c.c
				cause[v] = append(cause[v], c.lit)
			}
		}
	}

	for pass := 0; pass < len(t.vars)+len(t.edges)+1; pass++ {
		changed := false
		for _, e := range t.edges {
			if !st.Satisfied(e.lit) {
				continue
			}
			switch e.kind {
			case leEdge:
				if hi[e.b] < hi[e.a] {
					hi[e.a] = hi[e.b]
					cause[e.a] = append(cause[e.a], e.lit)
					changed = true
				}
				if lo[e.a] > lo[e.b] {
					lo[e.b] = lo[e.a]
					cause[e.b] = append(cause[e.b], e.lit)
					changed = true
				}
			case eqEdge:
				m := max(lo[e.a], lo[e.b])
				n := min(hi[e.a], hi[e.b])
				if lo[e.a] != m || lo[e.b] != m {
					lo[e.a], lo[e.b] = m, m
					cause[e.a] = append(cause[e.a], e.lit)
					cause[e.b] = append(cause[e.b], e.lit)
					changed = true
				}
				if hi[e.a] != n || hi[e.b] != n {
					hi[e.a], hi[e.b] = n, n
					cause[e.a] = append(cause[e.a], e.lit)
					cause[e.b] = append(cause[e.b], e.lit)
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for _, v := range t.vars {
		if lo[v] > hi[v] {
			return &theory.Conflict{Theory: t.Tag(), Lits: dedupe(cause[v])}, nil
		}
	}

	alias := make(map[*Variable]*Variable)
	find := func(v *Variable) *Variable {
		for alias[v] != nil {
			v = alias[v]
		}
		return v
	}
	for _, e := range t.edges {
		if e.kind == eqEdge && st.Satisfied(e.lit) {
			if ra, rb := find(e.a), find(e.b); ra != rb {
				alias[rb] = ra
			}
		}
	}
	sampled := make(map[*Variable]float64, len(t.vars))
	for _, v := range t.vars {
		val, ok := sampled[find(v)]
		if !ok {
			val = lo[v]
			if hi[v] > lo[v] {
				val = lo[v] + t.rng.Float64()*(hi[v]-lo[v])
			}
			sampled[find(v)] = val
		}
		builder.Commit(t.Tag(), v.Name, val)
	}
	return nil, nil
}

// Reset is a no-op: Solve recomputes every interval from scratch each call.
func (t *Theory) Reset() {}

func dedupe(lits []clause.Lit) []clause.Lit {
	seen := make(map[clause.Lit]bool, len(lits))
	out := lits[:0:0]
	for _, l := range lits {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
