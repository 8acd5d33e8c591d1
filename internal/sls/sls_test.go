package sls

import (
	"testing"
	"time"

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

func TestRunFindsExactlyOneModel(t *testing.T) {
	s, a, b, c := buildExactlyOne(t)
	e := New(s, 1)
	st, outcome, stats := e.Run(DefaultLimits(), nil)
	if outcome != Found {
		t.Fatalf("outcome = %v, want Found", outcome)
	}
	if st.NumUnsat() != 0 {
		t.Fatalf("returned state is not feasible: %d unsat", st.NumUnsat())
	}
	n := 0
	for _, v := range []clause.Atom{a, b, c} {
		if st.Value(v) {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly one atom true, got %d", n)
	}
	if stats.Tries == 0 {
		t.Fatal("expected Stats.Tries to be recorded")
	}
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	s, _, _, _ := buildExactlyOne(t)

	run := func() []bool {
		e := New(s, 42)
		st, outcome, _ := e.Run(DefaultLimits(), nil)
		if outcome != Found {
			t.Fatalf("outcome = %v, want Found", outcome)
		}
		vals := make([]bool, st.NumAtoms()+1)
		for a := 1; a <= st.NumAtoms(); a++ {
			vals[a] = st.Value(clause.Atom(a))
		}
		return vals
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("atom %d differs across runs with the same seed: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRunUnsatisfiableReturnsExhaustedUnknown(t *testing.T) {
	s := clause.New()
	a, _ := s.NewAtom("a", clause.Plain, -1)
	if err := s.AddClause(1, 1, clause.Lit(a)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddClause(0, 0, clause.Lit(a)); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}

	e := New(s, 7)
	lim := Limits{MaxTries: 3, MaxFlips: 50, Noise: 0.5, CheckEvery: 16}
	_, outcome, stats := e.Run(lim, nil)
	if outcome != ExhaustedUnknown {
		t.Fatalf("outcome = %v, want ExhaustedUnknown", outcome)
	}
	if stats.Tries != lim.MaxTries {
		t.Fatalf("Tries = %d, want %d", stats.Tries, lim.MaxTries)
	}
}

func TestRunRespectsTimeout(t *testing.T) {
	s := clause.New()
	// Build a clause set large enough that an immediate solve is unlikely,
	// so the timeout branch has a chance to fire before convergence.
	atoms := make([]clause.Atom, 40)
	for i := range atoms {
		a, _ := s.NewAtom("x", clause.Plain, -1)
		atoms[i] = a
	}
	lits := make([]clause.Lit, len(atoms))
	for i, a := range atoms {
		lits[i] = clause.Lit(a)
	}
	if err := s.AddClause(20, 20, lits...); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}

	e := New(s, 3)
	lim := Limits{MaxTries: 1, MaxFlips: 1 << 30, Noise: 0.5, Timeout: time.Nanosecond, CheckEvery: 1}
	_, outcome, _ := e.Run(lim, nil)
	if outcome != TimedOut && outcome != Found {
		t.Fatalf("outcome = %v, want TimedOut or Found", outcome)
	}
}

func TestOptimizeImprovesObjectiveWithoutLosingFeasibility(t *testing.T) {
	s := clause.New()
	a, _ := s.NewAtom("a", clause.Plain, -1)
	b, _ := s.NewAtom("b", clause.Plain, -1)
	if err := s.AddClause(0, 1, clause.Lit(a), clause.Lit(b)); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}

	obj := &Objective{Atoms: []clause.Atom{a, b}, Weights: []int{1, 5}}
	e := New(s, 9)
	lim := Limits{MaxTries: 10, MaxFlips: 200, Noise: 0.5, CheckEvery: 32}
	st, outcome, stats := e.Run(lim, obj)
	if outcome != Found {
		t.Fatalf("outcome = %v, want Found", outcome)
	}
	if st.NumUnsat() != 0 {
		t.Fatalf("optimized state is infeasible: %d unsat", st.NumUnsat())
	}
	if stats.BestObjective != obj.value(st) {
		t.Fatalf("Stats.BestObjective = %d, want %d", stats.BestObjective, obj.value(st))
	}
	if !st.Value(b) {
		t.Fatalf("expected optimizer to prefer the higher-weight atom b")
	}
}
