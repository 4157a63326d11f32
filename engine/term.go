package engine

import (
	"fmt"
	"sync/atomic"
)

// Term is a node in a shared, mutable term graph.
// Every node carries union-find bookkeeping so that structurally merged
// subterms observe each other's structure. Only the union-find operations
// and the left-unification reduction mutate nodes in place; everything else
// is constructive and returns a fresh flattened graph.
type Term interface {
	fmt.Stringer
	cls() *class
}

// class is the union-find bookkeeping embedded in every term node.
type class struct {
	parent Term // self if representative
	size   int
	schema Term // canonical structural term of the class
	mark   uint64
}

func (c *class) cls() *class { return c }

func (c *class) init(self Term) {
	c.parent = self
	c.size = 1
	c.schema = self
}

// markCounter generates traversal marks. A traversal grabs a fresh
// generation with nextMark and stamps nodes as it visits them, so shared
// subterms are walked once and cycles are detected without clearing flags.
var markCounter uint64

func nextMark() uint64 { return atomic.AddUint64(&markCounter, 1) }

// Find returns the representative of t's class, compressing paths.
func Find(t Term) Term {
	c := t.cls()
	if c.parent == t {
		return t
	}
	root := Find(c.parent)
	c.parent = root
	return root
}

// Schema returns the canonical structural term of t's class: a Variable
// only if the whole class is variable-only, otherwise the first
// non-variable merged in.
func Schema(t Term) Term {
	return Find(t).cls().schema
}

// union merges the classes of s and t and returns the new representative.
func union(s, t Term) Term {
	rs, rt := Find(s), Find(t)
	if rs == rt {
		return rs
	}
	cs, ct := rs.cls(), rt.cls()
	if cs.size < ct.size {
		rs, rt = rt, rs
		cs, ct = ct, cs
	}
	ct.parent = rs
	cs.size += ct.size
	if _, varOnly := cs.schema.(*Variable); varOnly {
		if _, ok := ct.schema.(*Variable); !ok {
			cs.schema = ct.schema
		}
	}
	return rs
}

// ShallowCopy returns a fresh flattened copy of t. Function structure is
// rebuilt node by node so that every subterm is the sole member of its
// class; variable leaves keep their global identity.
func ShallowCopy(t Term) Term {
	switch t := Schema(t).(type) {
	case *Variable:
		return t
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = ShallowCopy(a)
		}
		return NewFunction(t.sym, args...)
	case *Tuple:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = ShallowCopy(e)
		}
		return NewTuple(elems...)
	case *TermList:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = ShallowCopy(e)
		}
		return NewTermList(elems...)
	case *Hat:
		exps := make([]Term, len(t.exps))
		for i, e := range t.exps {
			exps[i] = ShallowCopy(e)
		}
		return NewHat(t.context, exps, ShallowCopy(t.base))
	default:
		return t
	}
}

// DeepCopy returns a fresh flattened copy of t with every variable renamed
// to a new one. Nothing in the copy aliases the source's union-find state.
func DeepCopy(t Term) Term {
	return RenamedCopy(t, map[*Variable]*Variable{})
}

// RenamedCopy is DeepCopy with an explicit rename table, so that several
// terms can be copied consistently with shared variables kept shared.
func RenamedCopy(t Term, ren map[*Variable]*Variable) Term {
	switch t := Schema(t).(type) {
	case *Variable:
		v, ok := ren[t]
		if !ok {
			v = NewVariable()
			ren[t] = v
		}
		return v
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = RenamedCopy(a, ren)
		}
		return NewFunction(t.sym, args...)
	case *Tuple:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = RenamedCopy(e, ren)
		}
		return NewTuple(elems...)
	case *TermList:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = RenamedCopy(e, ren)
		}
		return NewTermList(elems...)
	case *Hat:
		exps := make([]Term, len(t.exps))
		for i, e := range t.exps {
			exps[i] = RenamedCopy(e, ren)
		}
		return NewHat(t.context, exps, RenamedCopy(t.base, ren))
	default:
		return t
	}
}

// Contains reports whether s occurs in t. Both sides are resolved through
// their class representatives first, so a variable merged into a class is
// found wherever any member of the class occurs.
func Contains(t, s Term) bool {
	if Find(t) == Find(s) {
		return true
	}
	switch t := Schema(t).(type) {
	case *Function:
		for _, a := range t.args {
			if Contains(a, s) {
				return true
			}
		}
	case *Tuple:
		for _, e := range t.elems {
			if Contains(e, s) {
				return true
			}
		}
	case *TermList:
		for _, e := range t.elems {
			if Contains(e, s) {
				return true
			}
		}
	case *Hat:
		for _, e := range t.exps {
			if Contains(e, s) {
				return true
			}
		}
		return Contains(t.base, s)
	}
	return false
}

// IsGround reports whether t contains no variables.
func IsGround(t Term) bool {
	switch t := Schema(t).(type) {
	case *Variable:
		return false
	case *Function:
		for _, a := range t.args {
			if !IsGround(a) {
				return false
			}
		}
		return true
	case *Tuple:
		for _, e := range t.elems {
			if !IsGround(e) {
				return false
			}
		}
		return true
	case *TermList:
		for _, e := range t.elems {
			if !IsGround(e) {
				return false
			}
		}
		return true
	case *Hat:
		for _, e := range t.exps {
			if !IsGround(e) {
				return false
			}
		}
		return IsGround(t.base)
	default:
		return true
	}
}

// Variables returns the variables of t in first-occurrence order.
func Variables(t Term) []*Variable {
	var vs []*Variable
	return appendVariables(vs, t)
}

func appendVariables(vs []*Variable, t Term) []*Variable {
	switch t := Schema(t).(type) {
	case *Variable:
		for _, v := range vs {
			if Find(v) == Find(t) {
				return vs
			}
		}
		return append(vs, t)
	case *Function:
		for _, a := range t.args {
			vs = appendVariables(vs, a)
		}
	case *Tuple:
		for _, e := range t.elems {
			vs = appendVariables(vs, e)
		}
	case *TermList:
		for _, e := range t.elems {
			vs = appendVariables(vs, e)
		}
	case *Hat:
		for _, e := range t.exps {
			vs = appendVariables(vs, e)
		}
		vs = appendVariables(vs, t.base)
	}
	return vs
}

// DeepEquals reports structural equality of s and t up to class
// resolution. Variables are compared by class identity, not by name.
func DeepEquals(s, t Term) bool {
	if Find(s) == Find(t) {
		return true
	}
	a, b := Schema(s), Schema(t)
	switch a := a.(type) {
	case *Variable:
		return false // distinct classes
	case *Function:
		b, ok := b.(*Function)
		if !ok || a.sym != b.sym || len(a.args) != len(b.args) {
			return false
		}
		for i := range a.args {
			if !DeepEquals(a.args[i], b.args[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		b, ok := b.(*Tuple)
		if !ok || len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !DeepEquals(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case *TermList:
		b, ok := b.(*TermList)
		if !ok || len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !DeepEquals(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case *Hat:
		b, ok := b.(*Hat)
		if !ok || a.context != b.context || len(a.exps) != len(b.exps) {
			return false
		}
		for i := range a.exps {
			if !DeepEquals(a.exps[i], b.exps[i]) {
				return false
			}
		}
		return DeepEquals(a.base, b.base)
	default:
		return false
	}
}

// Get returns the subterm of t at position p.
func Get(t Term, p Position) (Term, error) {
	cur := t
	for i, idx := range p {
		switch s := Schema(cur).(type) {
		case *Function:
			if idx < 0 || idx >= len(s.args) {
				return nil, fmt.Errorf("%w: %s in %s", ErrPosition, p[:i+1], t)
			}
			cur = s.args[idx]
		case *Tuple:
			if idx < 0 || idx >= len(s.elems) {
				return nil, fmt.Errorf("%w: %s in %s", ErrPosition, p[:i+1], t)
			}
			cur = s.elems[idx]
		case *TermList:
			if idx < 0 || idx >= len(s.elems) {
				return nil, fmt.Errorf("%w: %s in %s", ErrPosition, p[:i+1], t)
			}
			cur = s.elems[idx]
		case *Hat:
			return nil, fmt.Errorf("%w: indexing into a hat term", ErrUnsupported)
		default:
			return nil, fmt.Errorf("%w: %s in %s", ErrPosition, p[:i+1], t)
		}
	}
	return cur, nil
}

// Replace returns a fresh copy of t with the subterm at p replaced by s.
// Neither t nor s is mutated.
func Replace(t Term, p Position, s Term) (Term, error) {
	if len(p) == 0 {
		return ShallowCopy(s), nil
	}
	idx := p[0]
	rebuild := func(elems []Term) ([]Term, error) {
		if idx < 0 || idx >= len(elems) {
			return nil, fmt.Errorf("%w: %s in %s", ErrPosition, p[:1], t)
		}
		out := make([]Term, len(elems))
		for i, e := range elems {
			if i == idx {
				r, err := Replace(e, p[1:], s)
				if err != nil {
					return nil, err
				}
				out[i] = r
				continue
			}
			out[i] = ShallowCopy(e)
		}
		return out, nil
	}
	switch t := Schema(t).(type) {
	case *Function:
		args, err := rebuild(t.args)
		if err != nil {
			return nil, err
		}
		return NewFunction(t.sym, args...), nil
	case *Tuple:
		elems, err := rebuild(t.elems)
		if err != nil {
			return nil, err
		}
		return NewTuple(elems...), nil
	case *TermList:
		elems, err := rebuild(t.elems)
		if err != nil {
			return nil, err
		}
		return NewTermList(elems...), nil
	case *Hat:
		return nil, fmt.Errorf("%w: replacing inside a hat term", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: %s in %s", ErrPosition, p[:1], t)
	}
}

// Positions returns every position of t, root first, in leftmost order.
func Positions(t Term) []Position {
	var out []Position
	appendPositions(&out, t, Position{})
	return out
}

func appendPositions(out *[]Position, t Term, p Position) {
	*out = append(*out, p)
	switch t := Schema(t).(type) {
	case *Function:
		for i, a := range t.args {
			appendPositions(out, a, p.Child(i))
		}
	case *Tuple:
		for i, e := range t.elems {
			appendPositions(out, e, p.Child(i))
		}
	case *TermList:
		for i, e := range t.elems {
			appendPositions(out, e, p.Child(i))
		}
	}
}

// Dpos returns the minimal positions at which s and t structurally differ,
// in leftmost order. A pair of distinct variables counts as a disagreement
// only if allowVarVar is set; a variable facing a non-variable always does.
func Dpos(s, t Term, allowVarVar bool) []Position {
	var out []Position
	dpos(&out, s, t, Position{}, allowVarVar)
	return out
}

func dpos(out *[]Position, s, t Term, p Position, vv bool) {
	if Find(s) == Find(t) {
		return
	}
	a, b := Schema(s), Schema(t)
	switch a := a.(type) {
	case *Variable:
		if _, ok := b.(*Variable); ok {
			if vv {
				*out = append(*out, p)
			}
			return
		}
		*out = append(*out, p)
	case *Function:
		b, ok := b.(*Function)
		if !ok || a.sym != b.sym || len(a.args) != len(b.args) {
			*out = append(*out, p)
			return
		}
		for i := range a.args {
			dpos(out, a.args[i], b.args[i], p.Child(i), vv)
		}
	case *Tuple:
		b, ok := b.(*Tuple)
		if !ok || len(a.elems) != len(b.elems) {
			*out = append(*out, p)
			return
		}
		for i := range a.elems {
			dpos(out, a.elems[i], b.elems[i], p.Child(i), vv)
		}
	case *TermList:
		b, ok := b.(*TermList)
		if !ok || len(a.elems) != len(b.elems) {
			*out = append(*out, p)
			return
		}
		for i := range a.elems {
			dpos(out, a.elems[i], b.elems[i], p.Child(i), vv)
		}
	default:
		if !DeepEquals(a, b) {
			*out = append(*out, p)
		}
	}
}
