package engine

import (
	"sort"
	"strings"
)

// Substitution is a finite mapping from variables to terms.
type Substitution map[*Variable]Term

// Add binds v to t if that is consistent with the existing binding, i.e.
// v is unbound or already bound to a term deep-equal to t. It reports
// whether the substitution now binds v to t.
func (s Substitution) Add(v *Variable, t Term) bool {
	if old, ok := s.Lookup(v); ok {
		return DeepEquals(old, t)
	}
	s[v] = t
	return true
}

// Put binds v to t, replacing any existing binding.
func (s Substitution) Put(v *Variable, t Term) {
	for k := range s {
		if Find(k) == Find(v) {
			delete(s, k)
		}
	}
	s[v] = t
}

// Lookup returns the binding of v, resolving class aliases.
func (s Substitution) Lookup(v *Variable) (Term, bool) {
	if t, ok := s[v]; ok {
		return t, true
	}
	r := Find(v)
	for k, t := range s {
		if Find(k) == r {
			return t, true
		}
	}
	return nil, false
}

// Domain returns the bound variables in a deterministic order.
func (s Substitution) Domain() []*Variable {
	vs := make([]*Variable, 0, len(s))
	for v := range s {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].id < vs[j].id })
	return vs
}

// Compose returns the composition s;g: applying the result is the same as
// applying s first and g after. Neither operand is mutated.
func (s Substitution) Compose(g Substitution) Substitution {
	out := make(Substitution, len(s)+len(g))
	for v, t := range s {
		out[v] = Apply(t, g)
	}
	for v, t := range g {
		if _, ok := out.Lookup(v); !ok {
			out[v] = ShallowCopy(t)
		}
	}
	return out
}

// Restrict returns s limited to the given variables.
func (s Substitution) Restrict(vs ...*Variable) Substitution {
	out := make(Substitution, len(vs))
	for _, v := range vs {
		if t, ok := s.Lookup(v); ok {
			out[v] = t
		}
	}
	return out
}

// Disjoint reports whether s and g bind no common variable.
func (s Substitution) Disjoint(g Substitution) bool {
	for v := range s {
		if _, ok := g.Lookup(v); ok {
			return false
		}
	}
	return true
}

// Commutes reports whether applying s then g equals applying g then s.
func (s Substitution) Commutes(g Substitution) bool {
	for _, v := range append(s.Domain(), g.Domain()...) {
		a := Apply(Apply(v, s), g)
		b := Apply(Apply(v, g), s)
		if !DeepEquals(a, b) {
			return false
		}
	}
	return true
}

func (s Substitution) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, v := range s.Domain() {
		if i > 0 {
			sb.WriteString(", ")
		}
		t, _ := s.Lookup(v)
		sb.WriteString(v.String())
		sb.WriteString("->")
		sb.WriteString(Schema(t).String())
	}
	sb.WriteString("}")
	return sb.String()
}

// Apply returns a fresh term with every variable of t bound in s replaced
// by its image. The replacement is simultaneous: images are copied, not
// re-applied. t is never mutated.
func Apply(t Term, s Substitution) Term {
	if len(s) == 0 {
		return ShallowCopy(t)
	}
	switch t := Schema(t).(type) {
	case *Variable:
		if u, ok := s.Lookup(t); ok {
			return ShallowCopy(u)
		}
		return t
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = Apply(a, s)
		}
		return NewFunction(t.sym, args...)
	case *Tuple:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = Apply(e, s)
		}
		return NewTuple(elems...)
	case *TermList:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = Apply(e, s)
		}
		return NewTermList(elems...)
	case *Hat:
		exps := make([]Term, len(t.exps))
		for i, e := range t.exps {
			exps[i] = Apply(e, s)
		}
		return NewHat(t.context, exps, Apply(t.base, s))
	default:
		return ShallowCopy(t)
	}
}

// Match returns a substitution theta with theta(pattern) deep-equal to t,
// if one exists. Only variables of pattern are bound.
func Match(pattern, t Term) (Substitution, bool) {
	theta := Substitution{}
	if !match(pattern, t, theta) {
		return nil, false
	}
	return theta, true
}

func match(pattern, t Term, theta Substitution) bool {
	switch p := Schema(pattern).(type) {
	case *Variable:
		return theta.Add(p, Schema(t))
	case *Function:
		u, ok := Schema(t).(*Function)
		if !ok || p.sym != u.sym || len(p.args) != len(u.args) {
			return false
		}
		for i := range p.args {
			if !match(p.args[i], u.args[i], theta) {
				return false
			}
		}
		return true
	case *Tuple:
		u, ok := Schema(t).(*Tuple)
		if !ok || len(p.elems) != len(u.elems) {
			return false
		}
		for i := range p.elems {
			if !match(p.elems[i], u.elems[i], theta) {
				return false
			}
		}
		return true
	case *TermList:
		u, ok := Schema(t).(*TermList)
		if !ok || len(p.elems) != len(u.elems) {
			return false
		}
		for i := range p.elems {
			if !match(p.elems[i], u.elems[i], theta) {
				return false
			}
		}
		return true
	default:
		return DeepEquals(pattern, t)
	}
}

// IsInstance reports whether t is an instance of pattern.
func IsInstance(pattern, t Term) bool {
	_, ok := Match(pattern, t)
	return ok
}
