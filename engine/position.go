package engine

import (
	"strconv"
	"strings"
)

// Position is an immutable path of child indices identifying a subterm
// location. The empty position addresses the term itself.
type Position []int

// Child returns a new position extending p by the child index i. The
// receiver is never mutated.
func (p Position) Child(i int) Position {
	q := make(Position, len(p)+1)
	copy(q, p)
	q[len(p)] = i
	return q
}

// IsRoot reports whether p addresses the root.
func (p Position) IsRoot() bool { return len(p) == 0 }

// Equal reports whether p and q are the same path.
func (p Position) Equal(q Position) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Less orders positions leftmost-outermost: a prefix comes before its
// extensions, and sibling indices are compared left to right.
func (p Position) Less(q Position) bool {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			return p[i] < q[i]
		}
	}
	return len(p) < len(q)
}

func (p Position) String() string {
	if len(p) == 0 {
		return "epsilon"
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}
