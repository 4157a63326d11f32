package nonterm

import (
	"fmt"

	"github.com/trsproofs/nonterm/engine"
)

// ArgumentFiltering drops or collapses argument positions before an
// ordering processor runs. A symbol maps either to the ordered list of
// argument positions it keeps, or to the single argument it collapses to;
// unmapped symbols are left alone.
type ArgumentFiltering struct {
	keep     map[string][]int
	collapse map[string]int
}

// Identity is the filtering that changes nothing.
func Identity() *ArgumentFiltering {
	return &ArgumentFiltering{keep: map[string][]int{}, collapse: map[string]int{}}
}

// Keep restricts sym to the given argument positions.
func (f *ArgumentFiltering) Keep(sym string, positions ...int) *ArgumentFiltering {
	f.keep[sym] = positions
	return f
}

// Collapse replaces sym applications by their argument at position.
func (f *ArgumentFiltering) Collapse(sym string, position int) *ArgumentFiltering {
	f.collapse[sym] = position
	return f
}

// Apply rewrites t under the filtering, constructively.
func (f *ArgumentFiltering) Apply(t engine.Term) engine.Term {
	switch t := engine.Schema(t).(type) {
	case *engine.Function:
		key := fmt.Sprintf("%s/%d", t.Symbol(), t.Arity())
		if pos, ok := f.collapse[key]; ok && pos >= 0 && pos < t.Arity() {
			return f.Apply(t.Arg(pos))
		}
		if kept, ok := f.keep[key]; ok {
			args := make([]engine.Term, 0, len(kept))
			for _, i := range kept {
				if i >= 0 && i < t.Arity() {
					args = append(args, f.Apply(t.Arg(i)))
				}
			}
			return engine.NewFunction(t.Symbol(), args...)
		}
		args := make([]engine.Term, t.Arity())
		for i := 0; i < t.Arity(); i++ {
			args[i] = f.Apply(t.Arg(i))
		}
		return engine.NewFunction(t.Symbol(), args...)
	default:
		return engine.ShallowCopy(t)
	}
}

// ApplyProblem filters every rule and pair of p. It fails when a filtered
// left side collapses to a non-function term, which makes the filtered
// rule malformed.
func (f *ArgumentFiltering) ApplyProblem(p *engine.DpProblem) (*engine.DpProblem, error) {
	filterRule := func(r *engine.RuleTrs) (*engine.RuleTrs, error) {
		return engine.NewIndexedRule(f.Apply(r.Left()), f.Apply(r.Right()), r.Index())
	}
	rules := make([]*engine.RuleTrs, 0, p.Trs().Len())
	for _, r := range p.Trs().Rules() {
		fr, err := filterRule(r)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fr)
	}
	trs, err := engine.NewTrs(rules, p.Trs().Strategy())
	if err != nil {
		return nil, err
	}
	pairs := make([]*engine.RuleTrs, 0, len(p.Pairs()))
	for _, pr := range p.Pairs() {
		fp, err := filterRule(pr)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, fp)
	}
	return engine.NewDpProblem(trs, pairs), nil
}

// EnumerateFilterings yields candidate filterings for the symbols of p:
// the identity, every single-argument collapse, and every drop-one-
// argument restriction, up to limit entries.
func EnumerateFilterings(p *engine.DpProblem, limit int) []*ArgumentFiltering {
	keys := map[string]int{} // symbol key -> arity
	collect := func(t engine.Term) {
		for _, pos := range engine.Positions(t) {
			sub, err := engine.Get(t, pos)
			if err != nil {
				continue
			}
			if fn, ok := engine.Schema(sub).(*engine.Function); ok && fn.Arity() > 0 {
				keys[fmt.Sprintf("%s/%d", fn.Symbol(), fn.Arity())] = fn.Arity()
			}
		}
	}
	for _, r := range p.Trs().Rules() {
		collect(r.Left())
		collect(r.Right())
	}
	for _, pr := range p.Pairs() {
		collect(pr.Left())
		collect(pr.Right())
	}

	out := []*ArgumentFiltering{Identity()}
	for key, arity := range keys {
		for i := 0; i < arity && len(out) < limit; i++ {
			out = append(out, Identity().Collapse(key, i))
			if arity > 1 {
				kept := make([]int, 0, arity-1)
				for j := 0; j < arity; j++ {
					if j != i {
						kept = append(kept, j)
					}
				}
				out = append(out, Identity().Keep(key, kept...))
			}
		}
		if len(out) >= limit {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
