// Package sls implements the Stochastic Local Search core: a
// WalkSAT-family flip-selection engine with noise, a random-walk/greedy
// split, a recency tie-break standing in for tabu, restarts, an
// optimization pass over a weighted objective, and a wall-clock timeout.
package sls

import (
	"math/rand"
	"time"

	"github.com/catsat/catsat/internal/assign"
	"github.com/catsat/catsat/internal/clause"
)

// Outcome classifies how a Run call ended.
type Outcome int

const (
	// Found means the state returned is a feasible model.
	Found Outcome = iota
	// ExhaustedUnknown means the flip/try budget ran out with no proof
	// either way.
	ExhaustedUnknown
	// TimedOut means the wall-clock limit elapsed.
	TimedOut
)

// Limits are the tunables controlling a solve attempt.
type Limits struct {
	MaxTries  int
	MaxFlips  int
	Noise     float64
	Timeout   time.Duration
	// CheckEvery controls how many flips elapse between wall-clock checks.
	CheckEvery int
}

// DefaultLimits mirrors typical WalkSAT defaults used across the pack's SAT
// solvers (a generous flip budget, noise around 50%).
func DefaultLimits() Limits {
	return Limits{
		MaxTries:   20,
		MaxFlips:   10000,
		Noise:      0.5,
		Timeout:    0,
		CheckEvery: 256,
	}
}

// Objective is a weighted sum of atoms to maximize once a feasible
// assignment is found. A nil Objective disables the
// optimization phase.
type Objective struct {
	Atoms   []clause.Atom
	Weights []int
}

func (o *Objective) value(st *assign.State) int {
	if o == nil {
		return 0
	}
	total := 0
	for i, a := range o.Atoms {
		if st.Value(a) {
			total += o.Weights[i]
		}
	}
	return total
}

// Stats reports what happened during a Run, for diagnostics only.
type Stats struct {
	Tries           int
	Flips           int
	Restarts        int
	BestObjective   int
	OptimizeFlips   int
}

// Engine runs the WalkSAT-family search over a fixed clause Store.
type Engine struct {
	store *clause.Store
	rng   *rand.Rand
}

// New returns an Engine over the frozen store s, seeded deterministically
// from seed: the same (seed, store) pair always reproduces the same
// search trajectory.
func New(s *clause.Store, seed uint64) *Engine {
	return &Engine{store: s, rng: rand.New(rand.NewSource(int64(seed)))}
}

// NewState builds a fresh, uninitialized Truth-Assignment State over this
// engine's store.
func (e *Engine) NewState() *assign.State { return assign.New(e.store) }

// InitState assigns st a fresh random starting point using this engine's
// deterministic random stream.
func (e *Engine) InitState(st *assign.State) { st.Init(e.rng) }

// Run searches for a feasible assignment, then (if obj != nil) tries to
// improve its objective value for a bounded number of additional flips,
// keeping the best feasible assignment ever observed. It returns the final
// Truth-Assignment State, the Outcome, and Stats.
func (e *Engine) Run(lim Limits, obj *Objective) (*assign.State, Outcome, Stats) {
	var stats Stats
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

	st := assign.New(e.store)
	var best *assign.State
	bestObj := 0

	for try := 0; try < maxTries; try++ {
		stats.Tries++
		st.Init(e.rng)

		for flip := 0; flip < maxFlips && st.NumUnsat() > 0; flip++ {
			stats.Flips++
			if (flip+1)%checkEvery == 0 && !deadline.IsZero() && time.Now().After(deadline) {
				if best != nil {
					stats.BestObjective = bestObj
					return best, Found, stats
				}
				return st, TimedOut, stats
			}
			e.Step(st, lim.Noise)
		}

		if st.NumUnsat() != 0 {
			stats.Restarts++
			continue
		}

		if obj != nil {
			e.optimize(st, lim, obj, deadline, &stats)
		}
		if v := obj.value(st); best == nil || v > bestObj {
			best = st.Clone()
			bestObj = v
		}
		if obj == nil {
			stats.BestObjective = bestObj
			return best, Found, stats
		}
		stats.Restarts++
	}

	if best != nil {
		stats.BestObjective = bestObj
		return best, Found, stats
	}
	return st, ExhaustedUnknown, stats
}

// Step performs one WalkSAT move: pick a uniformly random unsatisfied
// clause, then with probability noise flip a uniformly random atom from it,
// else the greedy best atom (ties broken by least-recently-flipped, then
// atom id). Exported so a caller coordinating theory-solver checks between
// flips (outside this package) can drive the search one move at a time.
func (e *Engine) Step(st *assign.State, noise float64) {
	unsat := st.UnsatClauses()
	ci := unsat[e.rng.Intn(len(unsat))]
	c := st.Clause(ci)

	candidates := directionalAtoms(st, ci, c)
	if len(candidates) == 0 {
		// No literal's flip moves the count toward the band (only possible
		// when the clause's min exceeds its width); fall back to all atoms
		// in the clause so the search still makes progress.
		candidates = st.AtomsTouchingClause(ci)
	}

	if e.rng.Float64() < noise {
		a := candidates[e.rng.Intn(len(candidates))]
		st.Flip(a)
		return
	}

	best := candidates[0]
	bestCost := st.FlipCost(best)
	bestRecency := st.LastFlipped(best)
	for _, a := range candidates[1:] {
		cost := st.FlipCost(a)
		if cost < bestCost {
			best, bestCost, bestRecency = a, cost, st.LastFlipped(a)
			continue
		}
		if cost == bestCost {
			r := st.LastFlipped(a)
			if r < bestRecency || (r == bestRecency && a < best) {
				best, bestRecency = a, r
			}
		}
	}
	st.Flip(best)
}

// directionalAtoms returns the atoms of clause ci's literals whose flip
// would move the clause's satisfied-count toward its [min,max] band (
// generalized-clause handling).
func directionalAtoms(st *assign.State, ci int, c clause.Clause) []clause.Atom {
	var out []clause.Atom
	for _, l := range c.Lits {
		if st.MovesTowardSatisfied(ci, l) {
			out = append(out, l.Atom())
		}
	}
	return out
}

// optimize continues flipping atoms that preserve feasibility and improve
// the objective, for a bounded additional budget.
func (e *Engine) optimize(st *assign.State, lim Limits, obj *Objective, deadline time.Time, stats *Stats) {
	budget := lim.MaxFlips
	if budget <= 0 {
		budget = 1000
	}
	checkEvery := lim.CheckEvery
	if checkEvery <= 0 {
		checkEvery = 256
	}
	for i := 0; i < budget; i++ {
		if i%checkEvery == 0 && !deadline.IsZero() && time.Now().After(deadline) {
			return
		}
		a := clause.Atom(1 + e.rng.Intn(st.NumAtoms()))
		delta := st.FlipCost(a)
		if delta > 0 {
			continue // would introduce infeasibility
		}
		gain := objectiveDelta(st, obj, a)
		if gain <= 0 {
			continue
		}
		st.Flip(a)
		stats.OptimizeFlips++
	}
}

func objectiveDelta(st *assign.State, obj *Objective, a clause.Atom) int {
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
