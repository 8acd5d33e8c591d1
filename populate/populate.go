// Package populate is the field-population bridge: callers register
// (name, setter) pairs once against a builder, then invoke it against a
// Solution to copy the resolved values back into caller-owned state. It
// replaces runtime field reflection with an explicit registration table.
package populate

import (
	"fmt"

	"github.com/catsat/catsat/internal/clause"
)

// Source is the subset of *catsat.Solution that populate depends on. It is
// an interface rather than a direct dependency so this package never needs
// to import the root package, keeping the dependency direction from root
// toward collaborators rather than the reverse.
type Source interface {
	Get(a clause.Atom) bool
	GetNamed(name string) (value bool, ok bool)
	Theory(tag, name string) (value any, ok bool)
}

// Setter receives a resolved value and applies it to caller state. It
// returns an error to abort the whole Apply call, or may itself choose to
// ignore a missing/undefined value.
type Setter func(value any, defined bool) error

// Builder accumulates (name, setter) registrations for one caller-owned
// record type, then replays them against any Solution produced later.
//
// A Builder is not safe for concurrent registration and Apply; build it
// once, then Apply it as many times as needed.
type Builder struct {
	fields []field
}

type field struct {
	name   string
	theory string
	setter Setter
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Field registers a Boolean atom lookup by name: Apply will call setter
// with the atom's value and defined=true if the solution has an atom with
// that name, or value=false, defined=false otherwise.
func (b *Builder) Field(name string, setter Setter) {
	b.fields = append(b.fields, field{name: name, setter: setter})
}

// TheoryField registers a lookup into a theory solver's committed value
// table, keyed by (tag, name). Apply calls setter with whatever the theory
// committed, or nil/false if nothing was committed under that key — per the
// "composite variables are never undefined at the top level" resolution,
// each leaf field independently reports its own definedness rather than the
// whole record being considered undefined.
func (b *Builder) TheoryField(tag, name string, setter Setter) {
	b.fields = append(b.fields, field{name: name, theory: tag, setter: setter})
}

// Apply replays every registered field against sol, in registration order,
// stopping at the first setter error.
func (b *Builder) Apply(sol Source) error {
	for _, f := range b.fields {
		if f.theory != "" {
			value, ok := sol.Theory(f.theory, f.name)
			if err := f.setter(value, ok); err != nil {
				return fmt.Errorf("populate: field %q (theory %s): %w", f.name, f.theory, err)
			}
			continue
		}
		value, ok := sol.GetNamed(f.name)
		if err := f.setter(value, ok); err != nil {
			return fmt.Errorf("populate: field %q: %w", f.name, err)
		}
	}
	return nil
}

// Bool returns a Setter that writes the resolved Boolean value into *dst,
// leaving *dst unchanged when the field was undefined.
func Bool(dst *bool) Setter {
	return func(value any, defined bool) error {
		if !defined {
			return nil
		}
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("populate: expected bool, got %T", value)
		}
		*dst = v
		return nil
	}
}

// Int returns a Setter for an int-valued theory field (e.g. a finite-domain
// selection or a fluent timepoint index), leaving *dst unchanged when
// undefined.
func Int(dst *int) Setter {
	return func(value any, defined bool) error {
		if !defined {
			return nil
		}
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("populate: expected int, got %T", value)
		}
		*dst = v
		return nil
	}
}

// Float64 returns a Setter for a float-theory variable, leaving *dst
// unchanged when undefined.
func Float64(dst *float64) Setter {
	return func(value any, defined bool) error {
		if !defined {
			return nil
		}
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("populate: expected float64, got %T", value)
		}
		*dst = v
		return nil
	}
}

// String returns a Setter for a string-valued theory variable (e.g. a menu
// selection), leaving *dst unchanged when undefined.
func String(dst *string) Setter {
	return func(value any, defined bool) error {
		if !defined {
			return nil
		}
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("populate: expected string, got %T", value)
		}
		*dst = v
		return nil
	}
}
