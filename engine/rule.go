package engine

import (
	"fmt"
	"sort"
	"strings"
)

// FullStrategy is the only rewriting strategy this engine accepts.
const FullStrategy = "FULL"

// RuleTrs is an oriented rewrite rule l -> r. The left side is always a
// function term; construction fails otherwise.
type RuleTrs struct {
	lhs   *Function
	rhs   Term
	index int // file order, for reporting
}

// NewRule constructs a rule from l to r. It fails fast on a non-function
// left side or an invalid right-side kind.
func NewRule(l, r Term) (*RuleTrs, error) {
	return NewIndexedRule(l, r, 0)
}

// NewIndexedRule is NewRule with an explicit file-order index.
func NewIndexedRule(l, r Term, index int) (*RuleTrs, error) {
	lf, ok := Schema(l).(*Function)
	if !ok {
		return nil, fmt.Errorf("%w: left side %s is not a function term", ErrMalformedRule, l)
	}
	switch Schema(r).(type) {
	case *Variable, *Function, *Tuple, *TermList:
	default:
		return nil, fmt.Errorf("%w: invalid right side %s", ErrMalformedRule, r)
	}
	return &RuleTrs{lhs: lf, rhs: r, index: index}, nil
}

// Left returns the left side.
func (r *RuleTrs) Left() *Function { return r.lhs }

// Right returns the right side.
func (r *RuleTrs) Right() Term { return r.rhs }

// Index returns the file-order index the rule was constructed with.
func (r *RuleTrs) Index() int { return r.index }

// IsGeneralized reports whether the right side has variables absent from
// the left side. A generalized rule rewrites to infinitely many instances
// and is a trivial non-termination witness.
func (r *RuleTrs) IsGeneralized() bool {
	left := Variables(r.lhs)
	for _, v := range Variables(r.rhs) {
		found := false
		for _, w := range left {
			if Find(v) == Find(w) {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}

// Rename returns a copy of the rule with fresh variables and a fresh
// flattened graph; nothing aliases the receiver's union-find state.
func (r *RuleTrs) Rename() *RuleTrs {
	ren := map[*Variable]*Variable{}
	lhs := RenamedCopy(r.lhs, ren).(*Function)
	rhs := RenamedCopy(r.rhs, ren)
	return &RuleTrs{lhs: lhs, rhs: rhs, index: r.index}
}

// ApplyRule returns the rule instantiated by theta, constructively.
func (r *RuleTrs) ApplyRule(theta Substitution) (*RuleTrs, error) {
	lhs, ok := Apply(r.lhs, theta).(*Function)
	if !ok {
		return nil, fmt.Errorf("%w: substitution collapses the left side", ErrMalformedRule)
	}
	return &RuleTrs{lhs: lhs, rhs: Apply(r.rhs, theta), index: r.index}, nil
}

func (r *RuleTrs) String() string {
	return fmt.Sprintf("%s -> %s", r.lhs, Schema(r.rhs))
}

// Trs is a term rewriting system: a finite ordered set of rules plus the
// rewriting strategy it was declared with.
type Trs struct {
	rules    []*RuleTrs
	strategy string
}

// NewTrs constructs a rewrite system. Only the "FULL" strategy is
// accepted; anything else fails construction.
func NewTrs(rules []*RuleTrs, strategy string) (*Trs, error) {
	if strategy != FullStrategy {
		return nil, fmt.Errorf("%w: %q", ErrStrategy, strategy)
	}
	return &Trs{rules: rules, strategy: strategy}, nil
}

// Rules returns the rules in file order.
func (t *Trs) Rules() []*RuleTrs { return t.rules }

// Strategy returns the declared rewriting strategy.
func (t *Trs) Strategy() string { return t.strategy }

// Len returns the number of rules.
func (t *Trs) Len() int { return len(t.rules) }

// DefinedSymbols returns the symbol/arity keys occurring as a left-hand
// root of some rule.
func (t *Trs) DefinedSymbols() map[string]bool {
	defined := make(map[string]bool, len(t.rules))
	for _, r := range t.rules {
		defined[symbolKey(r.lhs)] = true
	}
	return defined
}

// DeepCopy returns a copy of the system with fresh terms and fresh
// variables per rule, so the copy can cross a task boundary.
func (t *Trs) DeepCopy() *Trs {
	rules := make([]*RuleTrs, len(t.rules))
	for i, r := range t.rules {
		rules[i] = r.Rename()
	}
	return &Trs{rules: rules, strategy: t.strategy}
}

// Generalized returns the first generalized rule of the system, if any.
func (t *Trs) Generalized() (*RuleTrs, bool) {
	for _, r := range t.rules {
		if r.IsGeneralized() {
			return r, true
		}
	}
	return nil, false
}

func (t *Trs) String() string {
	parts := make([]string, len(t.rules))
	for i, r := range t.rules {
		parts[i] = r.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, "\n")
}

func symbolKey(f *Function) string {
	return fmt.Sprintf("%s/%d", f.sym, len(f.args))
}
