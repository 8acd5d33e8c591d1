package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/catsat/catsat"
	"github.com/catsat/catsat/dimacs"
	"github.com/catsat/catsat/internal/config"
)

func main() {
	log.SetFlags(0)
	verbose := pflag.BoolP("verbose", "v", false, "print solve statistics to stderr")
	configPath := pflag.String("config", "", "TOML file overriding search limits (max_tries, max_flips, noise, timeout_ms)")
	seed := pflag.Uint64("seed", 0, "random seed (0 picks a fresh random seed)")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, `catsat: a declarative constraint solver.

Usage:

  catsat [-v] [--config limits.toml] [--seed N] [input.cnf]

catsat reads a single problem in the DIMACS CNF format (extended with a
"c catsat min max" comment for generalized clauses). It prints SAT or UNSAT
on the first line; on SAT, the second line gives the true-literal atoms in
the same format as an input clause.

If no input file is given, catsat reads from standard input.
`)
	}
	pflag.Parse()

	var r io.Reader = os.Stdin
	if pflag.NArg() >= 1 {
		f, err := os.Open(pflag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		r = f
	}

	clauses, err := dimacs.Load(r)
	if err != nil {
		log.Fatalln("reading input as DIMACS CNF:", err)
	}

	p, err := dimacs.BuildProblem(clauses)
	if err != nil {
		log.Fatalln("building problem:", err)
	}
	if *seed != 0 {
		p.SetSeed(*seed)
	}
	if *configPath != "" {
		lim, err := config.Load(*configPath)
		if err != nil {
			log.Fatalln(err)
		}
		p.SetLimits(lim.Apply(catsat.DefaultLimits()))
	}

	sol, stats, err := p.Solve()
	if *verbose {
		fmt.Fprintf(os.Stderr, "tries %d flips %d restarts %d conflicts_learned %d theory_calls %d\n",
			stats.Tries, stats.Flips, stats.Restarts, stats.ConflictsLearned, stats.TheoryCalls)
	}
	if err != nil {
		var unsat *catsat.Unsatisfiable
		if errors.As(err, &unsat) {
			fmt.Println("UNSAT")
			return
		}
		log.Fatalln(err)
	}

	fmt.Println("SAT")
	printAssignment(sol, clauses)
}

func printAssignment(sol *catsat.Solution, clauses []dimacs.Clause) {
	seen := make(map[int]bool)
	first := true
	for _, c := range clauses {
		for _, l := range c.Lits {
			v := l
			if v < 0 {
				v = -v
			}
			if seen[v] {
				continue
			}
			seen[v] = true
			value, ok := sol.GetNamed(fmt.Sprintf("a%d", v))
			if !ok {
				continue
			}
			lit := v
			if !value {
				lit = -v
			}
			if !first {
				fmt.Print(" ")
			}
			fmt.Print(lit)
			first = false
		}
	}
	fmt.Println()
}
