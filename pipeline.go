package nonterm

import (
	"github.com/trsproofs/nonterm/engine"
)

// Outcome is the report of one termination processor on one DP problem.
type Outcome int

const (
	// NoProgress means the processor could not change the problem.
	NoProgress Outcome = iota
	// Reduced means the problem was replaced by smaller ones.
	Reduced
	// Finite means the problem admits no infinite chain.
	Finite
)

// Processor is one step of the termination pipeline. Run never mutates
// the problem it is given; a Reduced outcome carries the replacement
// problems.
type Processor interface {
	Name() string
	Run(p *engine.DpProblem) (Outcome, []*engine.DpProblem)
}

// runPipeline applies processors to every problem until all are proved
// finite or no processor makes progress. It reports whether the whole
// collection is finite.
func runPipeline(problems []*engine.DpProblem, procs []Processor) bool {
	queue := append([]*engine.DpProblem(nil), problems...)
	for len(queue) > 0 {
		p := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		progressed := false
		for _, proc := range procs {
			outcome, rest := proc.Run(p)
			switch outcome {
			case Finite:
				progressed = true
			case Reduced:
				queue = append(queue, rest...)
				progressed = true
			default:
				continue
			}
			break
		}
		if !progressed {
			return false
		}
	}
	return true
}

// EmbeddingProcessor proves a problem finite when every dependency pair
// strictly shrinks under homeomorphic embedding: the right side embeds in
// the left side and not the other way around. By Higman's lemma an
// infinite chain of such pairs is impossible.
type EmbeddingProcessor struct {
	Emb engine.Embedding
}

func (EmbeddingProcessor) Name() string { return "embedding" }

func (e EmbeddingProcessor) Run(p *engine.DpProblem) (Outcome, []*engine.DpProblem) {
	for _, pair := range p.Pairs() {
		if !e.Emb.Embeds(pair.Right(), pair.Left()) {
			return NoProgress, nil
		}
		// equal or permuted pairs embed both ways and prove nothing
		if e.Emb.Embeds(pair.Left(), pair.Right()) {
			return NoProgress, nil
		}
	}
	return Finite, nil
}

// LpoProcessor orients the system with a lexicographic path order,
// searching a precedence greedily: the rules must be weakly oriented and
// the pairs strictly. Strictly oriented pairs are removed; removing all
// of them proves the problem finite.
type LpoProcessor struct{}

func (LpoProcessor) Name() string { return "lpo" }

func (LpoProcessor) Run(p *engine.DpProblem) (Outcome, []*engine.DpProblem) {
	prec := newPrecedence()
	for _, r := range p.Trs().Rules() {
		if !prec.gte(r.Left(), r.Right()) {
			return NoProgress, nil
		}
	}
	var remaining []*engine.RuleTrs
	for _, pair := range p.Pairs() {
		if !prec.gt(pair.Left(), pair.Right()) {
			remaining = append(remaining, pair)
		}
	}
	switch {
	case len(remaining) == 0:
		return Finite, nil
	case len(remaining) < len(p.Pairs()):
		return Reduced, []*engine.DpProblem{engine.NewDpProblem(p.Trs(), remaining)}
	default:
		return NoProgress, nil
	}
}

// precedence is a strict partial order on function symbols, grown on
// demand while orienting terms.
type precedence struct {
	above map[string]map[string]bool
}

func newPrecedence() *precedence {
	return &precedence{above: map[string]map[string]bool{}}
}

func (p *precedence) path(a, b string) bool {
	if a == b {
		return false
	}
	seen := map[string]bool{a: true}
	stack := []string{a}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range p.above[cur] {
			if next == b {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// require adds a > b unless that would close a cycle.
func (p *precedence) require(a, b string) bool {
	if a == b {
		return false
	}
	if p.path(a, b) {
		return true
	}
	if p.path(b, a) {
		return false
	}
	if p.above[a] == nil {
		p.above[a] = map[string]bool{}
	}
	p.above[a][b] = true
	return true
}

func (p *precedence) gte(s, t engine.Term) bool {
	return engine.DeepEquals(s, t) || p.gt(s, t)
}

func (p *precedence) gt(s, t engine.Term) bool {
	f, ok := engine.Schema(s).(*engine.Function)
	if !ok {
		return false
	}
	if v, ok := engine.Schema(t).(*engine.Variable); ok {
		return engine.Contains(f, v)
	}
	g, ok := engine.Schema(t).(*engine.Function)
	if !ok {
		return false
	}
	// a subterm of s already covers t
	for i := 0; i < f.Arity(); i++ {
		if p.gte(f.Arg(i), g) {
			return true
		}
	}
	if f.Symbol() == g.Symbol() && f.Arity() == g.Arity() {
		// lexicographic descent on the first strict argument pair
		for i := 0; i < f.Arity(); i++ {
			if engine.DeepEquals(f.Arg(i), g.Arg(i)) {
				continue
			}
			if !p.gt(f.Arg(i), g.Arg(i)) {
				return false
			}
			for j := i + 1; j < g.Arity(); j++ {
				if !p.gt(f, g.Arg(j)) {
					return false
				}
			}
			return true
		}
		return false
	}
	if !p.require(f.Symbol(), g.Symbol()) {
		return false
	}
	for j := 0; j < g.Arity(); j++ {
		if !p.gt(f, g.Arg(j)) {
			return false
		}
	}
	return true
}

// PatternProver is the non-looping pattern-substitution prover, an
// external collaborator: it unfolds dependency pairs into pattern rules
// and tests them for unifiability against plain rules. Its internals live
// outside this module.
type PatternProver interface {
	Unfold(iteration int) []*engine.RuleTrs
	Unifiable(r *engine.RuleTrs) bool
}
