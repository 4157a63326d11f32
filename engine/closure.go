package engine

// UnifyClosure destructively merges the classes of s and t so that the
// merged graph is closed under unification: a root symbol mismatch fails,
// a root match unions the representatives and recurses into the children.
// The occurs check runs as an acyclicity walk over the merged classes
// using per-term visitation marks, so the whole test stays near-linear in
// union-find amortized cost rather than in term size.
//
// The operands are mutated. Use Unifiable or UnifyUF to test or solve on
// private copies.
func UnifyClosure(s, t Term) bool {
	if !unifyClosure(s, t) {
		return false
	}
	visiting, done := nextMark(), nextMark()
	return acyclic(s, visiting, done) && acyclic(t, visiting, done)
}

func unifyClosure(s, t Term) bool {
	rs, rt := Find(s), Find(t)
	if rs == rt {
		return true
	}
	a, b := rs.cls().schema, rt.cls().schema
	if _, ok := a.(*Variable); ok {
		union(rs, rt)
		return true
	}
	if _, ok := b.(*Variable); ok {
		union(rs, rt)
		return true
	}
	switch a := a.(type) {
	case *Function:
		b, ok := b.(*Function)
		if !ok || a.sym != b.sym || len(a.args) != len(b.args) {
			return false
		}
		union(rs, rt)
		for i := range a.args {
			if !unifyClosure(a.args[i], b.args[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		b, ok := b.(*Tuple)
		if !ok || len(a.elems) != len(b.elems) {
			return false
		}
		union(rs, rt)
		for i := range a.elems {
			if !unifyClosure(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case *TermList:
		b, ok := b.(*TermList)
		if !ok || len(a.elems) != len(b.elems) {
			return false
		}
		union(rs, rt)
		for i := range a.elems {
			if !unifyClosure(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case *Hat:
		// A disagreement below a hat cannot be oriented, so hats merge
		// only when their classes already read as equal. DeepEquals
		// resolves through the classes and sees bindings made at
		// earlier positions.
		if !DeepEquals(a, b) {
			return false
		}
		union(rs, rt)
		return true
	default:
		return false
	}
}

// acyclic checks that no class reaches itself through schema children.
func acyclic(t Term, visiting, done uint64) bool {
	c := Find(t).cls()
	switch c.mark {
	case done:
		return true
	case visiting:
		return false
	}
	c.mark = visiting
	ok := true
	switch s := c.schema.(type) {
	case *Function:
		for _, a := range s.args {
			if !acyclic(a, visiting, done) {
				ok = false
				break
			}
		}
	case *Tuple:
		for _, e := range s.elems {
			if !acyclic(e, visiting, done) {
				ok = false
				break
			}
		}
	case *TermList:
		for _, e := range s.elems {
			if !acyclic(e, visiting, done) {
				ok = false
				break
			}
		}
	case *Hat:
		for _, e := range s.exps {
			if !acyclic(e, visiting, done) {
				ok = false
				break
			}
		}
		if ok && !acyclic(s.base, visiting, done) {
			ok = false
		}
	}
	if ok {
		c.mark = done
	}
	return ok
}

// UnifyUF unifies s and t with the union-find algorithm and materializes
// the unifier over their variables. The operands themselves are left
// untouched: the closure runs on renamed copies and the solution is
// translated back.
func UnifyUF(s, t Term) (Substitution, bool) {
	ren := map[*Variable]*Variable{}
	cs, ct := RenamedCopy(s, ren), RenamedCopy(t, ren)
	if !UnifyClosure(cs, ct) {
		return nil, false
	}
	inv := make(map[*Variable]*Variable, len(ren))
	for orig, cp := range ren {
		inv[cp] = orig
	}
	memo := map[Term]Term{}
	theta := Substitution{}
	for orig, cp := range ren {
		sol := unifSolution(cp, inv, memo)
		if v, ok := sol.(*Variable); ok && v == orig {
			continue
		}
		theta[orig] = sol
	}
	return theta, true
}

// unifSolution walks the acyclic merged classes once (memoized per class
// representative) and builds the solved term, mapping copied variables
// back through inv.
func unifSolution(t Term, inv map[*Variable]*Variable, memo map[Term]Term) Term {
	r := Find(t)
	if s, ok := memo[r]; ok {
		return s
	}
	var out Term
	switch s := r.cls().schema.(type) {
	case *Variable:
		if o, ok := inv[s]; ok {
			out = o
		} else {
			out = s
		}
	case *Function:
		args := make([]Term, len(s.args))
		for i, a := range s.args {
			args[i] = unifSolution(a, inv, memo)
		}
		out = NewFunction(s.sym, args...)
	case *Tuple:
		elems := make([]Term, len(s.elems))
		for i, e := range s.elems {
			elems[i] = unifSolution(e, inv, memo)
		}
		out = NewTuple(elems...)
	case *TermList:
		elems := make([]Term, len(s.elems))
		for i, e := range s.elems {
			elems[i] = unifSolution(e, inv, memo)
		}
		out = NewTermList(elems...)
	case *Hat:
		exps := make([]Term, len(s.exps))
		for i, e := range s.exps {
			exps[i] = unifSolution(e, inv, memo)
		}
		out = NewHat(s.context, exps, unifSolution(s.base, inv, memo))
	default:
		out = s
	}
	memo[r] = out
	return out
}
