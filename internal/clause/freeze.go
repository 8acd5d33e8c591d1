package clause

import (
	"fmt"
	"sort"
)

// Freeze synthesizes the Clark-completion encoding for every derived atom,
// forbids unsupported cycles via loop formulas over strongly-connected
// components of the positive body graph, and builds the per-literal and
// per-atom indexes used by ClausesTouching/ClausesTouchingLit. Freeze is
// idempotent.
func (s *Store) Freeze() error {
	if s.frozen {
		return nil
	}

	for head := range s.rules {
		info, err := s.Atom(head)
		if err != nil {
			return err
		}
		if info.Kind != Derived {
			return fmt.Errorf("catsat: rule head %d (%s) is not a derived atom", head, info.Name)
		}
	}

	s.emitCompletion()
	s.emitLoopFormulas()
	s.emitFixedClauses()

	s.frozen = true
	s.buildIndexes()
	return nil
}

func (s *Store) emitFixedClauses() {
	for a := 1; a < len(s.atoms); a++ {
		info := s.atoms[a]
		if !info.Fixed {
			continue
		}
		l := Lit(a)
		if !info.FixedValue {
			l = l.Negate()
		}
		s.clauses = append(s.clauses, Clause{Min: 1, Max: 1, Lits: []Lit{l}})
	}
}

// emitCompletion emits, for every derived atom a with rule bodies B1..Bn:
//
//	a -> B1 v ... v Bn   (support)
//	Bi -> a              (rule firing), for each i
//
// encoded as ordinary clauses via the standard a<->body_i Tseitin-free
// expansion: each body Bi is itself a conjunction of literals, so "Bi -> a"
// is the clause (¬b1 v ... v ¬bk v a) and "a -> (B1 v...v Bn)" needs one
// auxiliary literal per body when n>1 and |Bi|>1; CatSAT instead encodes
// support directly as a single generalized clause using body-indicator
// atoms only when a body has width > 1, falling back to a plain clause
// when every body is a single literal.
//
// A derived atom with zero rules becomes permanently false.
func (s *Store) emitCompletion() {
	for a := 1; a < len(s.atoms); a++ {
		if s.atoms[a].Kind != Derived {
			continue
		}
		head := Atom(a)
		bodies := s.rules[head]
		if len(bodies) == 0 {
			s.clauses = append(s.clauses, Clause{Min: 0, Max: 0, Lits: []Lit{Lit(head)}})
			continue
		}

		// Rule firing: Bi -> head, i.e. (not b1 v ... v not bk v head)
		for _, r := range bodies {
			lits := make([]Lit, 0, len(r.Body)+1)
			for _, b := range r.Body {
				lits = append(lits, b.Negate())
			}
			lits = append(lits, Lit(head))
			lits = dedupLits(lits)
			if len(lits) > 0 {
				s.clauses = append(s.clauses, Clause{Min: 1, Max: len(lits), Lits: lits})
			}
		}

		// Support: head -> B1 v ... v Bn. Each body of width 1 contributes
		// its single literal directly; a body of width > 1 needs a support
		// indicator atom standing for "this body is fully true", defined
		// by the usual indicator<->conjunction pair of clauses.
		supportLits := make([]Lit, 0, len(bodies))
		for _, r := range bodies {
			if len(r.Body) == 1 {
				supportLits = append(supportLits, r.Body[0])
				continue
			}
			ind, _ := s.NewAtom(fmt.Sprintf("$support(%s,%d)", s.atoms[head].Name, len(s.atoms)), StructuralUnique, -1)
			// ind -> each body literal
			for _, b := range r.Body {
				s.clauses = append(s.clauses, Clause{Min: 1, Max: 2, Lits: []Lit{Lit(ind).Negate(), b}})
			}
			// (AND of body) -> ind, i.e. (not b1 v...v not bk v ind)
			lits := make([]Lit, 0, len(r.Body)+1)
			for _, b := range r.Body {
				lits = append(lits, b.Negate())
			}
			lits = append(lits, Lit(ind))
			s.clauses = append(s.clauses, Clause{Min: 1, Max: len(lits), Lits: dedupLits(lits)})
			supportLits = append(supportLits, Lit(ind))
		}
		supportLits = append(supportLits, Lit(head).Negate())
		s.clauses = append(s.clauses, Clause{Min: 1, Max: len(supportLits), Lits: dedupLits(supportLits)})
	}
}

func dedupLits(lits []Lit) []Lit {
	seen := make(map[Lit]bool, len(lits))
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

// emitLoopFormulas forbids unsupported cycles among derived atoms: for each
// non-trivial strongly-connected component C of the positive-body
// dependency graph (an edge head -> b for every positive literal b in one
// of head's rule bodies), and for every atom a in C, emit the loop formula
//
//	a -> OR(body literal, for every rule of a with no positive reference
//	         back into C)
//
// Plain Clark completion alone permits a model where every member of a
// cycle is "supported" purely by other members of the same cycle (e.g.
// a<-b, b<-a with no other rules), which has no grounding in any external
// fact. The loop formula tightens this: a can only be true by way of a
// rule whose body does not itself depend on the cycle it is trying to
// justify. If a has no such rule at all, the clause degenerates to
// forbidding a outright.
//
// Tie-breaking (which component is processed, and the order atoms are
// visited within it) is deterministic on atom id.
func (s *Store) emitLoopFormulas() {
	heads := make([]Atom, 0, len(s.rules))
	for h := range s.rules {
		heads = append(heads, h)
	}
	sort.Slice(heads, func(i, j int) bool { return heads[i] < heads[j] })

	graph := map[Atom][]Atom{}
	for _, h := range heads {
		for _, r := range s.rules[h] {
			for _, b := range r.Body {
				if !b.Positive() {
					continue
				}
				if s.atoms[b.Atom()].Kind != Derived {
					continue
				}
				graph[h] = append(graph[h], b.Atom())
			}
		}
	}

	sccs := tarjanSCC(heads, graph)
	for _, comp := range sccs {
		if len(comp) < 2 && !selfLoop(graph, comp[0]) {
			continue
		}
		inComp := make(map[Atom]bool, len(comp))
		for _, a := range comp {
			inComp[a] = true
		}
		for _, a := range comp {
			externalSupport := make([]Lit, 0, len(s.rules[a]))
			for _, r := range s.rules[a] {
				if ruleHasInternalSupport(r, inComp) {
					// This rule's body depends positively on another
					// member of the cycle, so it cannot by itself justify
					// a without already assuming some other C-member true;
					// excluded from the loop formula's support set.
					continue
				}
				if len(r.Body) == 1 {
					externalSupport = append(externalSupport, r.Body[0])
					continue
				}
				ind, _ := s.NewAtom(fmt.Sprintf("$loopsupport(%d,%d)", a, len(s.atoms)), StructuralUnique, -1)
				for _, b := range r.Body {
					s.clauses = append(s.clauses, Clause{Min: 1, Max: 2, Lits: []Lit{Lit(ind).Negate(), b}})
				}
				lits := make([]Lit, 0, len(r.Body)+1)
				for _, b := range r.Body {
					lits = append(lits, b.Negate())
				}
				lits = append(lits, Lit(ind))
				s.clauses = append(s.clauses, Clause{Min: 1, Max: len(lits), Lits: dedupLits(lits)})
				externalSupport = append(externalSupport, Lit(ind))
			}
			lits := append(externalSupport, Lit(a).Negate())
			s.clauses = append(s.clauses, Clause{Min: 1, Max: len(lits), Lits: dedupLits(lits)})
		}
	}
}

// ruleHasInternalSupport reports whether r's body contains a positive
// reference to another member of the same strongly-connected component,
// meaning this rule alone cannot externally justify its head.
func ruleHasInternalSupport(r Rule, inComp map[Atom]bool) bool {
	for _, b := range r.Body {
		if b.Positive() && inComp[b.Atom()] {
			return true
		}
	}
	return false
}

func selfLoop(graph map[Atom][]Atom, a Atom) bool {
	for _, b := range graph[a] {
		if b == a {
			return true
		}
	}
	return false
}

// tarjanSCC computes strongly-connected components of graph restricted to
// the given deterministic atom ordering, returning components in an order
// that only depends on atom ids.
func tarjanSCC(order []Atom, graph map[Atom][]Atom) [][]Atom {
	index := map[Atom]int{}
	low := map[Atom]int{}
	onStack := map[Atom]bool{}
	var stack []Atom
	counter := 0
	var sccs [][]Atom

	var strongconnect func(v Atom)
	strongconnect = func(v Atom) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		neighbors := append([]Atom(nil), graph[v]...)
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
		for _, w := range neighbors {
			if _, ok := index[w]; !ok {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var comp []Atom
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Slice(comp, func(i, j int) bool { return comp[i] < comp[j] })
			sccs = append(sccs, comp)
		}
	}

	for _, v := range order {
		if _, ok := index[v]; !ok {
			strongconnect(v)
		}
	}
	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	return sccs
}

func (s *Store) buildIndexes() {
	s.litIndex = make(map[Lit][]int)
	s.atomIndex = make(map[Atom][]int)
	for i, c := range s.clauses {
		s.indexClause(i, c)
	}
}

func (s *Store) indexClause(i int, c Clause) {
	for _, l := range c.Lits {
		s.litIndex[l] = append(s.litIndex[l], i)
		a := l.Atom()
		already := false
		for _, existing := range s.atomIndex[a] {
			if existing == i {
				already = true
				break
			}
		}
		if !already {
			s.atomIndex[a] = append(s.atomIndex[a], i)
		}
	}
}
