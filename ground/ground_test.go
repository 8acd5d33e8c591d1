package ground

import (
	"testing"

	"github.com/catsat/catsat/internal/clause"
)

func TestSymmetricPredicateCanonicalizesArgumentOrder(t *testing.T) {
	s := clause.New()
	d := NewDomain("alice", "bob")
	g := New(s, d)
	friends := g.DeclarePredicate("friends", 2, true)

	ab, err := g.Ground(friends, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := g.Ground(friends, "bob", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Fatalf("friends(alice,bob) = %d, friends(bob,alice) = %d; want equal", ab, ba)
	}
}

func TestAsymmetricPredicateKeepsArgumentsDistinct(t *testing.T) {
	s := clause.New()
	d := NewDomain("alice", "bob")
	g := New(s, d)
	likes := g.DeclarePredicate("likes", 2, false)

	ab, err := g.Ground(likes, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := g.Ground(likes, "bob", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if ab == ba {
		t.Fatal("expected likes(alice,bob) and likes(bob,alice) to be distinct atoms")
	}
}

func TestCanonicalPairsCoversEachUnorderedPairOnce(t *testing.T) {
	d := NewDomain("a", "b", "c")
	g := New(clause.New(), d)
	pairs := g.CanonicalPairs()
	if len(pairs) != 3 {
		t.Fatalf("got %d pairs, want 3", len(pairs))
	}
	seen := map[[2]string]bool{}
	for _, p := range pairs {
		if seen[p] {
			t.Fatalf("pair %v emitted twice", p)
		}
		seen[p] = true
	}
}

func TestFrameAxiomsLinkAdjacentTimepoints(t *testing.T) {
	s := clause.New()
	d := NewDomain("room1", "room2")
	g := New(s, d)
	f, err := g.Fluent("at", 2)
	if err != nil {
		t.Fatal(err)
	}
	act, err := g.Action("goto", 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Effect(act, f, 0, true); err != nil {
		t.Fatal(err)
	}

	if err := s.Fix(f.At(0), false); err != nil {
		t.Fatal(err)
	}
	if err := s.Fix(act.Atom, true); err != nil {
		t.Fatal(err)
	}
	if err := s.Freeze(); err != nil {
		t.Fatal(err)
	}

	foundFiring := false
	foundFrame := false
	for _, c := range s.Clauses() {
		has := map[clause.Lit]bool{}
		for _, l := range c.Lits {
			has[l] = true
		}
		if has[clause.Lit(act.Atom).Negate()] && has[clause.Lit(f.Activate(0))] {
			foundFiring = true
		}
		if len(c.Lits) == 2 && has[clause.Lit(f.Activate(0)).Negate()] && has[clause.Lit(f.At(1))] {
			foundFrame = true
		}
	}
	if !foundFiring {
		t.Fatal("expected a rule-firing clause deriving activate(at@0) from goto@0")
	}
	if !foundFrame {
		t.Fatal("expected the frame axiom activate(at@0) -> at@1")
	}
}
