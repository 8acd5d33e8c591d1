package ground

import (
	"fmt"

	"github.com/catsat/catsat/internal/clause"
)

// Fluent is a time-indexed proposition over a horizon [0,H): one atom per
// timepoint, linked across adjacent timepoints by frame axioms, plus a
// Derived activate/deactivate atom pair per transition supplying the
// support rules actions contribute to.
type Fluent struct {
	Name    string
	Horizon int

	atoms      []clause.Atom // atoms[t] for t in [0,Horizon)
	activate   []clause.Atom // activate[t] for t in [0,Horizon-1), the transition t -> t+1
	deactivate []clause.Atom
}

// At returns the atom for this fluent at timepoint t.
func (f *Fluent) At(t int) clause.Atom { return f.atoms[t] }

// Activate returns the Derived "activate" atom for the transition t -> t+1.
func (f *Fluent) Activate(t int) clause.Atom { return f.activate[t] }

// Deactivate returns the Derived "deactivate" atom for the transition
// t -> t+1.
func (f *Fluent) Deactivate(t int) clause.Atom { return f.deactivate[t] }

// Fluent declares a time-indexed fluent over [0, horizon), allocating one
// atom per timepoint, one activate/deactivate Derived atom pair per
// transition, and the frame axiom clauses linking them:
//
//	activate_t  -> fluent_{t+1}
//	deactivate_t -> not fluent_{t+1}
//	fluent_t    -> fluent_{t+1} or deactivate_t
//	not fluent_t -> not fluent_{t+1} or activate_t
//	not (activate_t and deactivate_t)
//
// Effects are wired onto the returned Fluent's Activate/Deactivate atoms
// separately by Action.Effect.
func (g *Grounder) Fluent(name string, horizon int) (*Fluent, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("catsat/ground: fluent %q needs a horizon of at least 1, got %d", name, horizon)
	}
	f := &Fluent{Name: name, Horizon: horizon}
	f.atoms = make([]clause.Atom, horizon)
	for t := 0; t < horizon; t++ {
		a, err := g.store.NewAtom(fmt.Sprintf("%s@%d", name, t), clause.Plain, -1)
		if err != nil {
			return nil, err
		}
		f.atoms[t] = a
	}
	if horizon == 1 {
		return f, nil
	}
	f.activate = make([]clause.Atom, horizon-1)
	f.deactivate = make([]clause.Atom, horizon-1)
	for t := 0; t < horizon-1; t++ {
		act, err := g.store.NewAtom(fmt.Sprintf("activate(%s@%d)", name, t), clause.Derived, -1)
		if err != nil {
			return nil, err
		}
		deact, err := g.store.NewAtom(fmt.Sprintf("deactivate(%s@%d)", name, t), clause.Derived, -1)
		if err != nil {
			return nil, err
		}
		f.activate[t] = act
		f.deactivate[t] = deact

		ft := clause.Lit(f.atoms[t])
		ft1 := clause.Lit(f.atoms[t+1])
		actL := clause.Lit(act)
		deactL := clause.Lit(deact)

		if err := g.store.AddClause(1, 2, actL.Negate(), ft1); err != nil {
			return nil, err
		}
		if err := g.store.AddClause(1, 2, deactL.Negate(), ft1.Negate()); err != nil {
			return nil, err
		}
		if err := g.store.AddClause(1, 3, ft.Negate(), ft1, deactL); err != nil {
			return nil, err
		}
		if err := g.store.AddClause(1, 3, ft, ft1.Negate(), actL); err != nil {
			return nil, err
		}
		if err := g.store.AddClause(0, 1, actL, deactL); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Action is an atom at a single action-timepoint that, when true,
// contributes support to whichever fluent activate/deactivate atoms its
// effects name.
type Action struct {
	Name string
	Time int
	Atom clause.Atom
}

// Action declares an action atom at timepoint t. Preconditions and effects
// are wired separately via Precondition/Effect.
func (g *Grounder) Action(name string, t int) (*Action, error) {
	a, err := g.store.NewAtom(fmt.Sprintf("%s@%d", name, t), clause.Plain, -1)
	if err != nil {
		return nil, err
	}
	return &Action{Name: name, Time: t, Atom: a}, nil
}

// Precondition emits "action -> pre" for a conjunctive precondition pre,
// one implication clause per conjunct.
func (g *Grounder) Precondition(act *Action, pre ...clause.Lit) error {
	actL := clause.Lit(act.Atom).Negate()
	for _, p := range pre {
		if err := g.store.AddClause(1, 2, actL, p); err != nil {
			return err
		}
	}
	return nil
}

// Effect wires act as one alternative support for f's Activate (if add is
// true) or Deactivate (if add is false) atom at transition t, i.e. the rule
// "activate(f)@t <- act" or "deactivate(f)@t <- act".
func (g *Grounder) Effect(act *Action, f *Fluent, t int, add bool) error {
	head := f.Deactivate(t)
	if add {
		head = f.Activate(t)
	}
	return g.store.AddRule(head, clause.Lit(act.Atom))
}
