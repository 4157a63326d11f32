package engine

import (
	"github.com/bits-and-blooms/bitset"
)

// DependencyGraph is the estimated call graph over dependency pairs. An
// edge N -> M means N's right side is connectable to M's left side: an
// over-approximate reachability test that may admit spurious edges but
// never misses a real one. Strongly connected components are computed by
// a two-pass depth-first search; only components with at least two nodes,
// or a single node with a self-loop, are retained, and every edge
// crossing a retained-component boundary is deleted.
type DependencyGraph struct {
	pairs    []*RuleTrs
	adj      [][]int
	comps    [][]int
	retained *bitset.BitSet
}

// NewDependencyGraph builds the graph for the pairs of dp over trs and
// decomposes it into retained components.
func NewDependencyGraph(trs *Trs, dp *Dpairs) *DependencyGraph {
	pairs := dp.Pairs()
	defined := trs.DefinedSymbols()
	g := &DependencyGraph{
		pairs:    pairs,
		adj:      make([][]int, len(pairs)),
		retained: bitset.New(uint(len(pairs))),
	}
	for i, from := range pairs {
		for j, to := range pairs {
			if connectable(from, to, defined) {
				g.adj[i] = append(g.adj[i], j)
			}
		}
	}
	g.decompose()
	g.sanitize()
	return g
}

// Pairs returns the graph's nodes.
func (g *DependencyGraph) Pairs() []*RuleTrs { return g.pairs }

// Edges returns the adjacency of node i after sanitization.
func (g *DependencyGraph) Edges(i int) []int { return g.adj[i] }

// Components returns the retained components as node index sets.
func (g *DependencyGraph) Components() [][]int { return g.comps }

// decompose computes SCCs with two passes: a forward depth-first search
// records finishing order, then the reverse graph is visited in that
// order, each visit collecting one component.
func (g *DependencyGraph) decompose() {
	n := len(g.pairs)
	radj := make([][]int, n)
	for i, succs := range g.adj {
		for _, j := range succs {
			radj[j] = append(radj[j], i)
		}
	}

	visited := bitset.New(uint(n))
	order := make([]int, 0, n)
	var forward func(int)
	forward = func(i int) {
		visited.Set(uint(i))
		for _, j := range g.adj[i] {
			if !visited.Test(uint(j)) {
				forward(j)
			}
		}
		order = append(order, i)
	}
	for i := 0; i < n; i++ {
		if !visited.Test(uint(i)) {
			forward(i)
		}
	}

	assigned := bitset.New(uint(n))
	var backward func(int, *[]int)
	backward = func(i int, comp *[]int) {
		assigned.Set(uint(i))
		*comp = append(*comp, i)
		for _, j := range radj[i] {
			if !assigned.Test(uint(j)) {
				backward(j, comp)
			}
		}
	}
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		if assigned.Test(uint(i)) {
			continue
		}
		var comp []int
		backward(i, &comp)
		if len(comp) >= 2 || g.selfLoop(comp[0]) {
			g.comps = append(g.comps, comp)
			for _, node := range comp {
				g.retained.Set(uint(node))
			}
		}
	}
}

func (g *DependencyGraph) selfLoop(i int) bool {
	for _, j := range g.adj[i] {
		if j == i {
			return true
		}
	}
	return false
}

// sanitize deletes every edge that crosses a retained-component boundary,
// leaving a disjoint union of independent components.
func (g *DependencyGraph) sanitize() {
	comp := make([]int, len(g.pairs))
	for i := range comp {
		comp[i] = -1
	}
	for c, nodes := range g.comps {
		for _, i := range nodes {
			comp[i] = c
		}
	}
	for i, succs := range g.adj {
		if !g.retained.Test(uint(i)) {
			g.adj[i] = nil
			continue
		}
		kept := succs[:0]
		for _, j := range succs {
			if g.retained.Test(uint(j)) && comp[i] == comp[j] {
				kept = append(kept, j)
			}
		}
		g.adj[i] = kept
	}
}

// Problems pairs each retained component with the rewrite system,
// producing the independent units of proof search.
func (g *DependencyGraph) Problems(trs *Trs) *DpProbCollection {
	var problems []*DpProblem
	for _, comp := range g.comps {
		pairs := make([]*RuleTrs, len(comp))
		for i, node := range comp {
			pairs[i] = g.pairs[node]
		}
		problems = append(problems, &DpProblem{trs: trs, pairs: pairs})
	}
	return &DpProbCollection{problems: problems}
}

// connectable is the edge test: the right side of from, with defined-
// rooted subterms below the root capped by fresh variables and every
// remaining variable occurrence renamed apart, must unify with the left
// side of to.
func connectable(from, to *RuleTrs, defined map[string]bool) bool {
	r, ok := Schema(from.Right()).(*Function)
	if !ok {
		return false
	}
	capped := make([]Term, len(r.args))
	for i, a := range r.args {
		capped[i] = capTerm(a, defined)
	}
	t := renLinear(NewFunction(r.sym, capped...))
	return Unifiable(t, to.Left())
}

// capTerm replaces every subterm rooted by a defined symbol with a fresh
// variable; rewriting below such a root could produce anything.
func capTerm(t Term, defined map[string]bool) Term {
	switch t := Schema(t).(type) {
	case *Function:
		if defined[symbolKey(t)] {
			return NewVariable()
		}
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = capTerm(a, defined)
		}
		return NewFunction(t.sym, args...)
	default:
		return ShallowCopy(t)
	}
}

// renLinear renames every variable occurrence to a distinct fresh
// variable, discarding equality constraints between occurrences.
func renLinear(t Term) Term {
	switch t := Schema(t).(type) {
	case *Variable:
		return NewVariable()
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = renLinear(a)
		}
		return NewFunction(t.sym, args...)
	default:
		return ShallowCopy(t)
	}
}
