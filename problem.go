package catsat

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
	"github.com/catsat/catsat/internal/sls"
	"github.com/catsat/catsat/internal/theory"
)

// Problem is the builder for a constraint problem: atoms, clauses, rules, an
// optional objective, and any registered theory solvers. It is not safe for
// concurrent use — callers must serialize all access to one Problem,
// including Solve.
type Problem struct {
	store *clause.Store

	seed   uint64
	limits sls.Limits

	objAtoms   []clause.Atom
	objWeights []int

	theories []theory.Theory

	logger Logger

	// session seeds Solution.ID generation: each returned solution gets a
	// uuid.NewSHA1 over this problem's session tag and a monotonic counter,
	// so solution IDs are reproducible for a given session without needing
	// a separately-tracked dedup set.
	session  uuid.UUID
	solveSeq int
}

// New returns an empty Problem with default limits (see
// github.com/catsat/catsat/internal/sls.DefaultLimits) and a random seed.
func New() *Problem {
	session := uuid.New()
	return &Problem{
		store:   clause.New(),
		seed:    binary.BigEndian.Uint64(session[:8]),
		limits:  sls.DefaultLimits(),
		session: session,
	}
}

// NewAtom allocates a fresh plain atom with the given diagnostic name. bias,
// if non-negative, sets the probability the atom starts true on a fresh
// assignment; pass a negative value for the engine default.
func (p *Problem) NewAtom(name string, bias float64) (clause.Atom, error) {
	a, err := p.store.NewAtom(name, clause.Plain, bias)
	if err != nil {
		return 0, &InvalidProblem{Which: err.Error()}
	}
	return a, nil
}

// NewDerivedAtom allocates an atom whose truth must be supported by at least
// one rule added via AddRule.
func (p *Problem) NewDerivedAtom(name string) (clause.Atom, error) {
	a, err := p.store.NewAtom(name, clause.Derived, -1)
	if err != nil {
		return 0, &InvalidProblem{Which: err.Error()}
	}
	return a, nil
}

// Fix forces atom to always take value.
func (p *Problem) Fix(a clause.Atom, value bool) error {
	if err := p.store.Fix(a, value); err != nil {
		return &InvalidProblem{Which: err.Error()}
	}
	return nil
}

// AddClause adds the generalized clause (min <= sum(lits) <= max).
func (p *Problem) AddClause(min, max int, lits ...clause.Lit) error {
	if err := p.store.AddClause(min, max, lits...); err != nil {
		return &InvalidProblem{Which: err.Error()}
	}
	return nil
}

// AddRule adds an alternative support "head <- body" for a derived atom.
func (p *Problem) AddRule(head clause.Atom, body ...clause.Lit) error {
	if err := p.store.AddRule(head, body...); err != nil {
		return &InvalidProblem{Which: err.Error()}
	}
	return nil
}

// AddObjective registers atom as contributing weight to the optimization
// objective once a feasible model is found. Weights may be negative.
func (p *Problem) AddObjective(a clause.Atom, weight int) {
	p.objAtoms = append(p.objAtoms, a)
	p.objWeights = append(p.objWeights, weight)
}

// RegisterTheorySolver adds t to the set of theory solvers consulted after
// every Boolean-feasible candidate, in registration order.
func (p *Problem) RegisterTheorySolver(t theory.Theory) {
	p.theories = append(p.theories, t)
}

// SetSeed fixes the random seed driving search. The same (seed, frozen
// problem) pair always reproduces the same solution.
func (p *Problem) SetSeed(seed uint64) { p.seed = seed }

// Limits are the caller-tunable search budgets, re-exported from the SLS
// core so callers never need to import an internal package.
type Limits = sls.Limits

// DefaultLimits returns the default search budget.
func DefaultLimits() Limits { return sls.DefaultLimits() }

// SetLimits overrides this problem's search budget.
func (p *Problem) SetLimits(lim Limits) { p.limits = lim }

// Store exposes the underlying clause store for collaborator packages
// (ground, formula, theory/*) that build atoms/clauses/rules directly.
// External collaborators are expected to hold this reference for the
// lifetime of problem construction.
func (p *Problem) Store() *clause.Store { return p.store }

func (p *Problem) objective() *sls.Objective {
	if len(p.objAtoms) == 0 {
		return nil
	}
	return &sls.Objective{Atoms: p.objAtoms, Weights: p.objWeights}
}

// detectProvedUnsat scans the frozen clause set for a pair of unit/zero
// clauses that force the same atom both true and false — the cheap half of
// preprocessor-level UNSAT proof described in the error-handling design.
// Deeper completion-collapse detection (a derived atom with zero rules, see
// internal/clause.emitCompletion) also surfaces here because it emits
// exactly such a (0,0,head) clause.
func detectProvedUnsat(store *clause.Store) (string, bool) {
	forcedTrue := map[clause.Atom]bool{}
	forcedFalse := map[clause.Atom]bool{}
	for _, c := range store.Clauses() {
		if len(c.Lits) == 0 {
			continue
		}
		if c.Min == len(c.Lits) && c.Max == len(c.Lits) {
			for _, l := range c.Lits {
				if l.Positive() {
					forcedTrue[l.Atom()] = true
				} else {
					forcedFalse[l.Atom()] = true
				}
			}
		}
		if c.Min == 0 && c.Max == 0 {
			for _, l := range c.Lits {
				if l.Positive() {
					forcedFalse[l.Atom()] = true
				} else {
					forcedTrue[l.Atom()] = true
				}
			}
		}
	}
	for a := range forcedTrue {
		if forcedFalse[a] {
			info, _ := store.Atom(a)
			return fmt.Sprintf("atom %d (%s) is forced both true and false by unit clauses", a, info.Name), true
		}
	}
	return "", false
}

// nextSolutionID returns a reproducible ID for the next solution returned
// from this problem: the session tag salted with a monotonic counter.
func (p *Problem) nextSolutionID() uuid.UUID {
	id := uuid.NewSHA1(p.session, []byte(strconv.Itoa(p.solveSeq)))
	p.solveSeq++
	return id
}

// Solve freezes the problem (on first call) and searches for a feasible,
// theory-consistent model. Subsequent calls to Solve or Solutions reuse the
// frozen clause set; the problem may not be mutated after the first Solve.
func (p *Problem) Solve() (*Solution, Stats, error) {
	return p.solve(nil)
}

// solve drives the SLS core one Step at a time, consulting the theory
// coordinator every time the candidate becomes Boolean-feasible, until a
// theory-consistent model is found or the search budget (or scratch,
// an extra forbidden-model clause set used by Solutions) is exhausted.
func (p *Problem) solve(forbid []clause.Clause) (*Solution, Stats, error) {
	var stats Stats

	if !p.store.IsFrozen() {
		if err := p.store.Freeze(); err != nil {
			return nil, stats, &InvalidProblem{Which: err.Error()}
		}
	}
	if reason, proved := detectProvedUnsat(p.store); proved {
		return nil, stats, &Unsatisfiable{Reason: reason}
	}

	store := p.store
	if len(forbid) > 0 {
		snap := p.store.Snapshot()
		scratch := clause.New()
		for a := 1; a <= p.store.NumAtoms(); a++ {
			info, err := p.store.Atom(clause.Atom(a))
			if err != nil {
				return nil, stats, &InvalidProblem{Which: err.Error()}
			}
			// The original store's clauses already carry the full Clark
			// completion for derived atoms (emitted at its own Freeze);
			// every scratch atom is created Plain so the scratch Freeze
			// does not re-run completion and spuriously force every
			// derived atom false for "having no rules" in this copy.
			if _, err := scratch.NewAtom(info.Name, clause.Plain, info.Bias); err != nil {
				return nil, stats, &InvalidProblem{Which: err.Error()}
			}
			if info.Fixed {
				if err := scratch.Fix(clause.Atom(a), info.FixedValue); err != nil {
					return nil, stats, &InvalidProblem{Which: err.Error()}
				}
			}
		}
		for _, c := range snap {
			if err := scratch.AddClause(c.Min, c.Max, c.Lits...); err != nil {
				return nil, stats, &InvalidProblem{Which: err.Error()}
			}
		}
		for _, c := range forbid {
			if err := scratch.AddClause(c.Min, c.Max, c.Lits...); err != nil {
				return nil, stats, &InvalidProblem{Which: err.Error()}
			}
		}
		if err := scratch.Freeze(); err != nil {
			return nil, stats, &InvalidProblem{Which: err.Error()}
		}
		store = scratch
	}

	engine := sls.New(store, p.seed)
	coord, err := theory.NewCoordinator(store, 256, p.theories...)
	if err != nil {
		return nil, stats, err
	}
	if err := coord.Preprocess(); err != nil {
		return nil, stats, &TheoryFailure{Solver: "coordinator", Reason: err.Error()}
	}

	lim := p.limits
	var deadline time.Time
	if lim.Timeout > 0 {
		deadline = time.Now().Add(lim.Timeout)
	}
	checkEvery := lim.CheckEvery
	if checkEvery <= 0 {
		checkEvery = 256
	}
	maxTries := lim.MaxTries
	if maxTries <= 0 {
		maxTries = 1
	}
	maxFlips := lim.MaxFlips
	if maxFlips <= 0 {
		maxFlips = 1
	}

	st := engine.NewState()
	for try := 0; try < maxTries; try++ {
		stats.Tries++
		engine.InitState(st)
		coord.Reset()

		for flip := 0; flip < maxFlips; flip++ {
			if !deadline.IsZero() && flip%checkEvery == 0 && time.Now().After(deadline) {
				return nil, stats, &Timeout{Elapsed: lim.Timeout.String()}
			}
			if st.NumUnsat() == 0 {
				if coord.Empty() {
					p.maybeOptimize(engine, st, lim, deadline, &stats)
					sol := newSolution(store, st, nil, p.nextSolutionID())
					return sol, stats, nil
				}
				stats.TheoryCalls++
				builder, ok, err := coord.Check(st)
				if err != nil {
					return nil, stats, err
				}
				if ok {
					p.maybeOptimize(engine, st, lim, deadline, &stats)
					sol := newSolution(store, st, builder, p.nextSolutionID())
					return sol, stats, nil
				}
				stats.ConflictsLearned++
				p.log("learned blocking clause on try %d, flip %d", try, flip)
				continue
			}
			engine.Step(st, lim.Noise)
			stats.Flips++
		}
		stats.Restarts++
	}

	return nil, stats, &Unknown{Tries: stats.Tries, Flips: stats.Flips}
}

// maybeOptimize runs the optimization pass directly (mirroring
// internal/sls.Engine.optimize, which is unexported and tied to Engine.Run's
// single-theory-free loop) so a theory-coordinated Solve still improves its
// objective once feasible.
func (p *Problem) maybeOptimize(engine *sls.Engine, st *assign.State, lim Limits, deadline time.Time, stats *Stats) {
	obj := p.objective()
	if obj == nil {
		return
	}
	budget := lim.MaxFlips
	if budget <= 0 {
		budget = 1000
	}
	checkEvery := lim.CheckEvery
	if checkEvery <= 0 {
		checkEvery = 256
	}
	rng := rand.New(rand.NewSource(int64(p.seed)))
	best := objectiveValue(obj, st)
	for i := 0; i < budget; i++ {
		if i%checkEvery == 0 && !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		a := clause.Atom(1 + rng.Intn(st.NumAtoms()))
		if st.FlipCost(a) > 0 {
			continue
		}
		delta := objectiveDelta(obj, st, a)
		if delta <= 0 {
			continue
		}
		st.Flip(a)
		best += delta
		stats.BestObjective = best
	}
	if stats.BestObjective == 0 {
		stats.BestObjective = best
	}
}

func objectiveValue(obj *sls.Objective, st *assign.State) int {
	total := 0
	for i, a := range obj.Atoms {
		if st.Value(a) {
			total += obj.Weights[i]
		}
	}
	return total
}

func objectiveDelta(obj *sls.Objective, st *assign.State, a clause.Atom) int {
	for i, oa := range obj.Atoms {
		if oa == a {
			if st.Value(a) {
				return -obj.Weights[i]
			}
			return obj.Weights[i]
		}
	}
	return 0
}

// Solutions returns up to n distinct solutions by repeatedly solving over a
// scratch copy of the frozen clause set with a negation clause for each
// previously returned solution injected, so the same model is never
// returned twice within one call. The frozen Problem itself is never
// mutated — the negation clauses live only in the scratch copy used by this
// call.
func (p *Problem) Solutions(n int) ([]*Solution, error) {
	if n <= 0 {
		return nil, nil
	}
	if !p.store.IsFrozen() {
		if err := p.store.Freeze(); err != nil {
			return nil, &InvalidProblem{Which: err.Error()}
		}
	}
	var out []*Solution
	var forbid []clause.Clause
	for len(out) < n {
		sol, _, err := p.solve(forbid)
		if err != nil {
			if len(out) > 0 {
				break
			}
			return nil, err
		}
		out = append(out, sol)
		forbid = append(forbid, negationClause(p.store, sol))
	}
	return out, nil
}

// negationClause builds "(0, k-1, L1..Lk)" over literals matching sol's
// polarity for every atom: satisfying all k would reproduce sol exactly, so
// capping the sum at k-1 forces at least one atom to differ in any future
// candidate. This is the rejection clause for solution-sampling distinctness.
func negationClause(store *clause.Store, sol *Solution) clause.Clause {
	lits := make([]clause.Lit, 0, store.NumAtoms())
	for a := 1; a <= store.NumAtoms(); a++ {
		atom := clause.Atom(a)
		if sol.Get(atom) {
			lits = append(lits, clause.Lit(atom))
		} else {
			lits = append(lits, clause.Lit(atom).Negate())
		}
	}
	return clause.Clause{Min: 0, Max: len(lits) - 1, Lits: lits}
}
