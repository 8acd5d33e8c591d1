package assign

import (
	"math/rand"
	"testing"

	"github.com/catsat/catsat/internal/clause"
)

func buildExactlyOne(t *testing.T) (*clause.Store, clause.Atom, clause.Atom, clause.Atom) {
	t.Helper()
	s := clause.New()
	a, _ := s.NewAtom("a", clause.Plain, -1)
	b, _ := s.NewAtom("b", clause.Plain, -1)
	c, _ := s.NewAtom("c", clause.Plain, -1)
	if err := s.AddClause(1, 1, clause.Lit(a), clause.Lit(b), clause.Lit(c)); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}
	return s, a, b, c
}

func TestInitAndFlipConsistency(t *testing.T) {
	s, a, b, c := buildExactlyOne(t)
	st := New(s)
	rng := rand.New(rand.NewSource(1))
	st.Init(rng)

	// Force a deterministic all-false starting point by flipping until so.
	for _, v := range []clause.Atom{a, b, c} {
		if st.Value(v) {
			st.Flip(v)
		}
	}
	if st.NumUnsat() != 1 {
		t.Fatalf("expected the exactly-one clause unsatisfied when all false, got %d unsat", st.NumUnsat())
	}

	st.Flip(a)
	if st.NumUnsat() != 0 {
		t.Fatalf("expected satisfied after flipping a true, got %d unsat", st.NumUnsat())
	}
	if !st.Value(a) || st.Value(b) || st.Value(c) {
		t.Fatalf("unexpected values a=%v b=%v c=%v", st.Value(a), st.Value(b), st.Value(c))
	}

	st.Flip(b)
	if st.NumUnsat() != 1 {
		t.Fatalf("expected violated exactly-one with two true, got %d unsat", st.NumUnsat())
	}
}

func TestFlipCostMatchesActualFlip(t *testing.T) {
	s, a, b, c := buildExactlyOne(t)
	st := New(s)
	rng := rand.New(rand.NewSource(2))
	st.Init(rng)
	for _, v := range []clause.Atom{a, b, c} {
		if st.Value(v) {
			st.Flip(v)
		}
	}
	before := st.NumUnsat()
	cost := st.FlipCost(a)
	st.Flip(a)
	after := st.NumUnsat()
	if after-before != cost {
		t.Fatalf("FlipCost predicted delta %d, actual delta %d", cost, after-before)
	}
}

func TestRecomputeAfterAppendedClause(t *testing.T) {
	s, a, b, _ := buildExactlyOne(t)
	st := New(s)
	rng := rand.New(rand.NewSource(3))
	st.Init(rng)

	ci, err := s.AppendClause(clause.Clause{Min: 1, Max: 1, Lits: []clause.Lit{clause.Lit(a), clause.Lit(b)}})
	if err != nil {
		t.Fatal(err)
	}
	st.RecomputeOne(ci)
	if ci >= len(st.satCount) {
		t.Fatalf("state not grown to accommodate new clause index %d", ci)
	}
}
