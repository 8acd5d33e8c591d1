package theory

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
)

// Coordinator runs registered theories in registration order against each
// Boolean-feasible candidate the SLS core produces, lifting any Conflict
// into a blocking clause appended to the shared store.
type Coordinator struct {
	store    *clause.Store
	theories []Theory
	seen     *lru.Cache[string, struct{}]
}

// NewCoordinator builds a Coordinator over store, running theories in the
// order given. cacheSize bounds how many distinct conflict signatures are
// remembered per solve attempt, avoiding re-appending a blocking clause
// already learned for the same proposition combination.
func NewCoordinator(store *clause.Store, cacheSize int, theories ...Theory) (*Coordinator, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, struct{}](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("catsat: building conflict cache: %w", err)
	}
	return &Coordinator{store: store, theories: theories, seen: cache}, nil
}

// Preprocess runs every theory's Preprocess hook once, in registration
// order, after the store is frozen.
func (c *Coordinator) Preprocess() error {
	for _, t := range c.theories {
		if err := t.Preprocess(c.store); err != nil {
			return fmt.Errorf("catsat: theory %s preprocessing: %w", t.Tag(), err)
		}
	}
	return nil
}

// Reset clears every theory's per-try state and forgets learned-conflict
// signatures from the previous try.
func (c *Coordinator) Reset() {
	for _, t := range c.theories {
		t.Reset()
	}
	c.seen.Purge()
}

// Empty reports whether no theories are registered, letting callers skip
// the coordination loop entirely for pure-Boolean problems.
func (c *Coordinator) Empty() bool { return len(c.theories) == 0 }

// Check runs every registered theory against the Boolean-feasible candidate
// st, in registration order. If every theory commits successfully, it
// returns the accumulated SolutionBuilder and ok=true. If a theory reports a
// Conflict, the coordinator appends a blocking clause (the negation of the
// conflicting literals) to store, refreshes st's bookkeeping for the new
// clause, and returns ok=false so the caller resumes the SLS search from
// the now-locally-infeasible st rather than restarting from scratch.
func (c *Coordinator) Check(st *assign.State) (*SolutionBuilder, bool, error) {
	builder := NewSolutionBuilder()
	for _, t := range c.theories {
		conflict, err := t.Solve(st, builder)
		if err != nil {
			return nil, false, fmt.Errorf("catsat: theory %s: %w", t.Tag(), err)
		}
		if conflict == nil {
			continue
		}
		key := conflictKey(conflict)
		if _, ok := c.seen.Get(key); ok {
			return nil, false, nil
		}
		c.seen.Add(key, struct{}{})
		if err := c.block(conflict, st); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return builder, true, nil
}

// block appends the blocking clause for conflict to the store and brings
// st's incremental bookkeeping up to date with the new clause. Appended
// clauses mutate the frozen store via its one permitted post-freeze
// operation (append-only), so existing indexes stay valid.
func (c *Coordinator) block(conflict *Conflict, st *assign.State) error {
	lits := make([]clause.Lit, len(conflict.Lits))
	for i, l := range conflict.Lits {
		lits[i] = l.Negate()
	}
	lits = dedupeLits(lits)
	if len(lits) == 0 {
		return fmt.Errorf("catsat: theory %s reported an empty conflict", conflict.Theory)
	}
	idx, err := c.store.AppendClause(clause.Clause{Min: 1, Max: len(lits), Lits: lits})
	if err != nil {
		return err
	}
	st.RecomputeOne(idx)
	return nil
}

func conflictKey(c *Conflict) string {
	lits := append([]clause.Lit(nil), c.Lits...)
	sort.Slice(lits, func(i, j int) bool { return lits[i] < lits[j] })
	var b strings.Builder
	b.WriteString(c.Theory)
	for _, l := range lits {
		fmt.Fprintf(&b, "|%d", l)
	}
	return b.String()
}

func dedupeLits(lits []clause.Lit) []clause.Lit {
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
