package float

import (
	"testing"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
	"github.com/catsat/catsat/internal/theory"
)

func TestBoundsNarrowInterval(t *testing.T) {
	s := clause.New()
	ft := New(1)
	v, err := ft.Var("x", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	le5, err := ft.LE(s, v, 5)
	if err != nil {
		t.Fatal(err)
	}
	ge3, err := ft.GE(s, v, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(le5.Atom(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(ge3.Atom(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}
	if err := ft.Preprocess(s); err != nil {
		t.Fatal(err)
	}

	st := assign.New(s)
	st.Init(nil)
	builder := theory.NewSolutionBuilder()
	conflict, err := ft.Solve(st, builder)
	if err != nil || conflict != nil {
		t.Fatalf("unexpected conflict/err: %v %v", conflict, err)
	}
	got, _ := builder.Value("float", "x")
	val := got.(float64)
	if val < 3 || val > 5 {
		t.Fatalf("x = %v, want within [3,5]", val)
	}
}

func TestEqualityAliasPropagatesBounds(t *testing.T) {
	s := clause.New()
	ft := New(2)
	x, err := ft.Var("x", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	y, err := ft.Var("y", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	eq, err := ft.Eq(s, x, y)
	if err != nil {
		t.Fatal(err)
	}
	geY, err := ft.GE(s, y, 7)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(eq.Atom(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(geY.Atom(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}

	st := assign.New(s)
	st.Init(nil)
	builder := theory.NewSolutionBuilder()
	conflict, err := ft.Solve(st, builder)
	if err != nil || conflict != nil {
		t.Fatalf("unexpected conflict/err: %v %v", conflict, err)
	}
	gotX, _ := builder.Value("float", "x")
	if gotX.(float64) < 7 {
		t.Fatalf("expected x >= 7 via alias to y, got %v", gotX)
	}
}

func TestConflictingBoundsReportsConflict(t *testing.T) {
	s := clause.New()
	ft := New(3)
	v, err := ft.Var("x", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	le2, err := ft.LE(s, v, 2)
	if err != nil {
		t.Fatal(err)
	}
	ge8, err := ft.GE(s, v, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(le2.Atom(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(ge8.Atom(), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}

	st := assign.New(s)
	st.Init(nil)
	builder := theory.NewSolutionBuilder()
	conflict, err := ft.Solve(st, builder)
	if err != nil {
		t.Fatal(err)
	}
	if conflict == nil {
		t.Fatal("expected a conflict for x <= 2 and x >= 8 simultaneously true")
	}
}
