package engine

import (
	"fmt"
	"strings"
)

// Tuple is an ordered grouping of terms without a function symbol. It is
// used by the advanced non-termination techniques to carry several terms
// through a single graph node.
type Tuple struct {
	class
	elems []Term
}

// NewTuple creates a tuple term.
func NewTuple(elems ...Term) *Tuple {
	t := &Tuple{elems: elems}
	t.init(t)
	return t
}

// Len returns the number of components.
func (t *Tuple) Len() int { return len(t.elems) }

// Elem returns the i-th component.
func (t *Tuple) Elem(i int) Term { return t.elems[i] }

func (t *Tuple) String() string {
	return "(" + joinTerms(t.elems) + ")"
}

// TermList is a sequence term, the graph form of a list of terms.
type TermList struct {
	class
	elems []Term
}

// NewTermList creates a list term.
func NewTermList(elems ...Term) *TermList {
	l := &TermList{elems: elems}
	l.init(l)
	return l
}

// Len returns the number of elements.
func (l *TermList) Len() int { return len(l.elems) }

// Elem returns the i-th element.
func (l *TermList) Elem(i int) Term { return l.elems[i] }

func (l *TermList) String() string {
	return "[" + joinTerms(l.elems) + "]"
}

// Hat compactly denotes the infinite family c^{a_1,...,a_l,b}(u) generated
// by repeated application of a fixed one-hole context c. Only the advanced
// pattern techniques construct hat terms; most graph operations report
// ErrUnsupported on them.
type Hat struct {
	class
	context string // symbol of the one-hole context
	exps    []Term // exponent terms a_1,...,a_l,b
	base    Term   // u
}

// NewHat creates a hat term.
func NewHat(context string, exps []Term, base Term) *Hat {
	h := &Hat{context: context, exps: exps, base: base}
	h.init(h)
	return h
}

// Context returns the symbol of the repeated context.
func (h *Hat) Context() string { return h.context }

// Base returns the term the context family is applied to.
func (h *Hat) Base() Term { return h.base }

func (h *Hat) String() string {
	return fmt.Sprintf("%s^{%s}(%s)", h.context, joinTerms(h.exps), Schema(h.base))
}

func joinTerms(ts []Term) string {
	var sb strings.Builder
	for i, t := range ts {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(Schema(t).String())
	}
	return sb.String()
}
