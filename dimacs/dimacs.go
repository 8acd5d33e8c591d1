// Package dimacs loads and writes the DIMACS CNF interchange format,
// generalized to round-trip catsat's (min,max,literals) clauses rather than
// plain disjunctions alone.
package dimacs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/catsat/catsat"
)

// Clause is one parsed line: a plain disjunction unless Generalized is set,
// in which case Min/Max carry the cardinality bound from a "c catsat min
// max" comment immediately preceding it.
type Clause struct {
	Min, Max    int
	Lits        []int
	Generalized bool
}

// Load parses DIMACS CNF text from r.
//
// A few non-standard variations are accepted, matching long-standing CNF
// tooling conventions:
//
//   - Comments ('c' lines) may appear anywhere, not only in the preamble.
//   - The problem line ('p cnf vars clauses') may be omitted.
//   - A comment of the exact form "c catsat min max" immediately before a
//     clause line marks that clause as a generalized (min,max) cardinality
//     constraint rather than a plain disjunction; catsat-unaware tools can
//     still read the clause as an ordinary one.
func Load(r io.Reader) ([]Clause, error) {
	var preambleVars, preambleClauses int
	var clauses []Clause
	var pending []int
	pendingMin, pendingMax := 1, -1 // -1 max means "unbounded", i.e. a plain disjunction
	pendingGeneralized := false

	flush := func() {
		if len(pending) == 0 {
			return
		}
		max := pendingMax
		if max < 0 {
			max = len(pending)
		}
		clauses = append(clauses, Clause{Min: pendingMin, Max: max, Lits: pending, Generalized: pendingGeneralized})
		pending = nil
		pendingMin, pendingMax = 1, -1
		pendingGeneralized = false
	}

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == 'c' {
			if min, max, ok := parseCatsatComment(line); ok {
				pendingMin, pendingMax, pendingGeneralized = min, max, true
			}
			continue
		}
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 {
				return nil, errors.New("dimacs: problem line appears after clauses")
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, fmt.Errorf("dimacs: malformed problem line %q", line)
			}
			var err error
			preambleVars, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("dimacs: malformed #vars: %w", err)
			}
			preambleClauses, err = strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("dimacs: malformed #clauses: %w", err)
			}
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("dimacs: invalid literal %q: %w", field, err)
			}
			if n == 0 {
				flush()
			} else {
				pending = append(pending, n)
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	flush()

	if preambleVars > 0 {
		maxVar := 0
		for _, c := range clauses {
			for _, l := range c.Lits {
				if l < 0 {
					l = -l
				}
				if l > maxVar {
					maxVar = l
				}
			}
		}
		if maxVar > preambleVars {
			return nil, fmt.Errorf("dimacs: formula references var %d, but problem line asserts %d vars", maxVar, preambleVars)
		}
		if preambleClauses > 0 && len(clauses) != preambleClauses {
			return nil, fmt.Errorf("dimacs: problem line specifies %d clauses, found %d", preambleClauses, len(clauses))
		}
	}
	return clauses, nil
}

func parseCatsatComment(line string) (min, max int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "c" || fields[1] != "catsat" {
		return 0, 0, false
	}
	min, err1 := strconv.Atoi(fields[2])
	max, err2 := strconv.Atoi(fields[3])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return min, max, true
}

// Write renders clauses as DIMACS CNF text, with a "p cnf vars clauses"
// preamble. Plain disjunctions ((1,k) with k equal to the clause width) are
// emitted without annotation; any other (min,max) bound is preceded by a
// "c catsat min max" comment so generalized clauses survive a round trip
// through this package while remaining parseable, as an ordinary
// disjunction, by ignorant DIMACS tooling.
func Write(w io.Writer, clauses []Clause) error {
	maxVar := 0
	for _, c := range clauses {
		for _, l := range c.Lits {
			if l < 0 {
				l = -l
			}
			if l > maxVar {
				maxVar = l
			}
		}
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", maxVar, len(clauses)); err != nil {
		return err
	}
	for _, c := range clauses {
		if c.Generalized || c.Min != 1 || c.Max != len(c.Lits) {
			if _, err := fmt.Fprintf(bw, "c catsat %d %d\n", c.Min, c.Max); err != nil {
				return err
			}
		}
		for _, l := range c.Lits {
			if _, err := fmt.Fprintf(bw, "%d ", l); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw, "0"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// BuildProblem creates atoms a1..aN (named "aN") for every variable referenced
// in clauses and asserts each as a (min,max) constraint on a fresh
// *catsat.Problem.
func BuildProblem(clauses []Clause) (*catsat.Problem, error) {
	p := catsat.New()
	maxVar := 0
	for _, c := range clauses {
		for _, l := range c.Lits {
			if l < 0 {
				l = -l
			}
			if l > maxVar {
				maxVar = l
			}
		}
	}
	atoms := make([]catsat.Atom, maxVar+1)
	for v := 1; v <= maxVar; v++ {
		a, err := p.NewAtom(fmt.Sprintf("a%d", v), -1)
		if err != nil {
			return nil, err
		}
		atoms[v] = a
	}
	for _, c := range clauses {
		lits := make([]catsat.Lit, len(c.Lits))
		for i, l := range c.Lits {
			v := l
			if v < 0 {
				v = -v
			}
			lit := catsat.Lit(atoms[v])
			if l < 0 {
				lit = -lit
			}
			lits[i] = lit
		}
		if err := p.AddClause(c.Min, c.Max, lits...); err != nil {
			return nil, err
		}
	}
	return p, nil
}
