package fd

import (
	"math/rand"
	"testing"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
	"github.com/catsat/catsat/internal/theory"
)

func TestUnconditionalVariableCommitsUniqueValue(t *testing.T) {
	s := clause.New()
	fdt := New()
	v, err := fdt.Var(s, "color", []string{"red", "green", "blue"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}
	if err := fdt.Preprocess(s); err != nil {
		t.Fatal(err)
	}

	st := assign.New(s)
	st.Init(rand.New(rand.NewSource(1)))
	// Force a legal assignment: only "green" true.
	for _, val := range v.Values {
		l, _ := v.Lit(val)
		want := val == "green"
		if st.Value(l.Atom()) != want {
			st.Flip(l.Atom())
		}
	}
	if st.NumUnsat() != 0 {
		t.Fatalf("expected feasible assignment, got %d unsat", st.NumUnsat())
	}

	builder := theory.NewSolutionBuilder()
	conflict, err := fdt.Solve(st, builder)
	if err != nil || conflict != nil {
		t.Fatalf("unexpected conflict/err: %v %v", conflict, err)
	}
	got, ok := builder.Value("fd", "color")
	if !ok || got != "green" {
		t.Fatalf("committed value = %v (ok=%v), want green", got, ok)
	}
}

func TestConditionalVariableAllowsNoValueWhenConditionFalse(t *testing.T) {
	s := clause.New()
	cond, _ := s.NewAtom("cond", clause.Plain, -1)
	fdt := New()
	v, err := fdt.Var(s, "shape", []string{"circle", "square"}, clause.Lit(cond))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(cond, false); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}

	st := assign.New(s)
	st.Init(rand.New(rand.NewSource(2)))
	for _, val := range v.Values {
		l, _ := v.Lit(val)
		if st.Value(l.Atom()) {
			st.Flip(l.Atom())
		}
	}
	if st.NumUnsat() != 0 {
		t.Fatalf("expected feasible with cond fixed false and no value atoms set, got %d unsat", st.NumUnsat())
	}
}
