package engine

// Embedding tests homeomorphic embedding of terms. It is stateless and
// safe to share read-only across concurrent searches.
type Embedding struct{}

// Embeds reports whether s is homeomorphically embedded in t: s can be
// obtained from t by deleting function symbols. A variable embeds into
// any term that contains a variable; growth under this relation is the classic sign of a
// diverging unfolding sequence.
func (Embedding) Embeds(s, t Term) bool {
	return embeds(s, t)
}

func embeds(s, t Term) bool {
	a, b := Schema(s), Schema(t)
	if _, ok := a.(*Variable); ok {
		if _, isVar := b.(*Variable); isVar {
			return true
		}
	}
	// coupling: same root, children embed pairwise
	if fa, ok := a.(*Function); ok {
		if fb, ok := b.(*Function); ok && fa.sym == fb.sym && len(fa.args) == len(fb.args) {
			all := true
			for i := range fa.args {
				if !embeds(fa.args[i], fb.args[i]) {
					all = false
					break
				}
			}
			if all {
				return true
			}
		}
	}
	// diving: s embeds into some child of t
	switch b := b.(type) {
	case *Function:
		for _, c := range b.args {
			if embeds(s, c) {
				return true
			}
		}
	case *Tuple:
		for _, c := range b.elems {
			if embeds(s, c) {
				return true
			}
		}
	case *TermList:
		for _, c := range b.elems {
			if embeds(s, c) {
				return true
			}
		}
	}
	return false
}
