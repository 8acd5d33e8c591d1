package theory

import (
	"math/rand"
	"testing"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
)

// alwaysConflict is a fake theory that conflicts on its first N calls
// (while its watched literal is true), then succeeds, letting tests
// exercise the blocking-clause lifting path deterministically.
type alwaysConflict struct {
	lit    clause.Lit
	calls  int
	failOn int
}

func (a *alwaysConflict) Tag() string                   { return "fake" }
func (a *alwaysConflict) Preprocess(*clause.Store) error { return nil }
func (a *alwaysConflict) Reset()                         { a.calls = 0 }
func (a *alwaysConflict) Solve(st *assign.State, b *SolutionBuilder) (*Conflict, error) {
	a.calls++
	if a.calls <= a.failOn && st.Satisfied(a.lit) {
		return &Conflict{Theory: "fake", Lits: []clause.Lit{a.lit}}, nil
	}
	b.Commit("fake", "x", st.Satisfied(a.lit))
	return nil, nil
}

func TestCoordinatorLiftsConflictIntoBlockingClause(t *testing.T) {
	s := clause.New()
	a, _ := s.NewAtom("a", clause.Plain, -1)
	if err := s.AddClause(1, 1, clause.Lit(a)); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}
	clausesBefore := len(s.Clauses())

	fake := &alwaysConflict{lit: clause.Lit(a), failOn: 1}
	coord, err := NewCoordinator(s, 16, fake)
	if err != nil {
		t.Fatal(err)
	}
	if err := coord.Preprocess(); err != nil {
		t.Fatal(err)
	}

	st := assign.New(s)
	st.Init(rand.New(rand.NewSource(1)))
	if !st.Value(a) {
		st.Flip(a)
	}

	if _, ok, err := coord.Check(st); err != nil || ok {
		t.Fatalf("expected first Check to report a conflict, ok=%v err=%v", ok, err)
	}
	if got := len(s.Clauses()); got != clausesBefore+1 {
		t.Fatalf("expected one blocking clause appended, clauses went from %d to %d", clausesBefore, got)
	}

	builder, ok, err := coord.Check(st)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected second Check to succeed once the fake theory stops conflicting")
	}
	v, found := builder.Value("fake", "x")
	if !found || v != true {
		t.Fatalf("expected committed value true, got %v (found=%v)", v, found)
	}
}

func TestCoordinatorEmpty(t *testing.T) {
	s := clause.New()
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}
	coord, err := NewCoordinator(s, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !coord.Empty() {
		t.Fatal("expected Empty() with no registered theories")
	}
}
