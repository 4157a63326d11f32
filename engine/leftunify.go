package engine

import "fmt"

// Left-unification (semi-unification) decides whether there exist
// substitutions rho and sigma with rho(sigma(s)) = sigma(t). The
// procedure follows Kapur, Musser, Narendran and Stillman: the problem is
// seeded with the equation (distribute(s, 1), t), where distribute pushes
// one application of rho through s, and then saturated by decomposition
// and oriented variable elimination until a fixpoint or a failure.
//
// Internally an application rho^i(x) is a placeholder variable keyed by
// (x, i); distributing rho over function symbols keeps equations in this
// flat form. A binding for (x, i) determines (x, i+k) by shifting every
// placeholder exponent in its image up by k.

const (
	// maxGenerations bounds the number of equations generated before the
	// saturation gives up and reports no solution.
	maxGenerations = 4096

	// maxResolveDepth bounds binding resolution, cutting cross-variable
	// rho chains that the per-variable exponent check cannot see.
	maxResolveDepth = 256
)

type annKey struct {
	base *Variable
	exp  int
}

type lequation struct {
	l, r Term
}

type leftUnifier struct {
	vars  map[annKey]*Variable  // placeholder per (base, exponent)
	keys  map[*Variable]annKey  // reverse of vars
	bound map[*Variable]binding // per base variable, lowest exponent wins
	chain map[annKey]*Variable  // materialized rho-chain variables
	queue []lequation
	gen   int
}

type binding struct {
	exp int
	rhs Term
}

// LeftUnify reports whether rho(sigma(s)) = sigma(t) for some rho and
// sigma, and on success returns witnesses satisfying that identity
// structurally. Failure to find a solution is a negative result, never an
// error.
func LeftUnify(s, t Term) (sigma, rho Substitution, ok bool) {
	u := &leftUnifier{
		vars:  map[annKey]*Variable{},
		keys:  map[*Variable]annKey{},
		bound: map[*Variable]binding{},
		chain: map[annKey]*Variable{},
	}
	u.push(u.annotate(s, 1), u.annotate(t, 0))
	if !u.saturate() {
		return nil, nil, false
	}
	return u.extract(s, t)
}

// placeholder returns the unique variable standing for rho^exp(base).
func (u *leftUnifier) placeholder(base *Variable, exp int) *Variable {
	k := annKey{base: base, exp: exp}
	if v, ok := u.vars[k]; ok {
		return v
	}
	v := NewVariable()
	u.vars[k] = v
	u.keys[v] = k
	return v
}

// annotate maps every variable x of t to the placeholder for rho^exp(x).
func (u *leftUnifier) annotate(t Term, exp int) Term {
	switch t := Schema(t).(type) {
	case *Variable:
		return u.placeholder(t, exp)
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = u.annotate(a, exp)
		}
		return NewFunction(t.sym, args...)
	case *Tuple:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = u.annotate(e, exp)
		}
		return NewTuple(elems...)
	case *TermList:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = u.annotate(e, exp)
		}
		return NewTermList(elems...)
	default:
		return ShallowCopy(t)
	}
}

// shift raises every placeholder exponent in t by k.
func (u *leftUnifier) shift(t Term, k int) Term {
	if k == 0 {
		return t
	}
	switch t := Schema(t).(type) {
	case *Variable:
		key, ok := u.keys[t]
		if !ok {
			return t
		}
		return u.placeholder(key.base, key.exp+k)
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = u.shift(a, k)
		}
		return NewFunction(t.sym, args...)
	case *Tuple:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = u.shift(e, k)
		}
		return NewTuple(elems...)
	case *TermList:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = u.shift(e, k)
		}
		return NewTermList(elems...)
	default:
		return t
	}
}

// resolve rewrites t with every applicable binding, shifted to the
// occurrence's exponent. It fails when resolution exceeds the depth
// bound, which is how divergent cross-variable chains surface.
func (u *leftUnifier) resolve(t Term, depth int) (Term, bool) {
	if depth > maxResolveDepth {
		return nil, false
	}
	switch t := Schema(t).(type) {
	case *Variable:
		key, ok := u.keys[t]
		if !ok {
			return t, true
		}
		b, ok := u.bound[key.base]
		if !ok || b.exp > key.exp {
			return t, true
		}
		return u.resolve(u.shift(b.rhs, key.exp-b.exp), depth+1)
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			r, ok := u.resolve(a, depth)
			if !ok {
				return nil, false
			}
			args[i] = r
		}
		return NewFunction(t.sym, args...), true
	case *Tuple:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			r, ok := u.resolve(e, depth)
			if !ok {
				return nil, false
			}
			elems[i] = r
		}
		return NewTuple(elems...), true
	case *TermList:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			r, ok := u.resolve(e, depth)
			if !ok {
				return nil, false
			}
			elems[i] = r
		}
		return NewTermList(elems...), true
	default:
		return t, true
	}
}

func (u *leftUnifier) push(l, r Term) bool {
	u.gen++
	if u.gen > maxGenerations {
		return false
	}
	u.queue = append(u.queue, lequation{l: l, r: r})
	return true
}

func (u *leftUnifier) pop() (lequation, bool) {
	if len(u.queue) == 0 {
		return lequation{}, false
	}
	eq := u.queue[len(u.queue)-1]
	u.queue = u.queue[:len(u.queue)-1]
	return eq, true
}

// saturate runs the decomposition / variable-elimination loop to a
// fixpoint. It reports whether the equation system is solvable.
func (u *leftUnifier) saturate() bool {
	for {
		eq, ok := u.pop()
		if !ok {
			return true
		}
		l, ok := u.resolve(eq.l, 0)
		if !ok {
			return false
		}
		r, ok := u.resolve(eq.r, 0)
		if !ok {
			return false
		}
		if DeepEquals(l, r) {
			continue // cancel syntactically equal sides
		}
		lv, lIsVar := Schema(l).(*Variable)
		rv, rIsVar := Schema(r).(*Variable)
		switch {
		case lIsVar && rIsVar:
			// Orient by the fixed order on (variable identity, exponent)
			// and eliminate the greater placeholder.
			lk, rk := u.keys[lv], u.keys[rv]
			if keyLess(lk, rk) {
				lv, rv = rv, lv
			}
			if !u.bind(lv, rv) {
				return false
			}
		case lIsVar:
			if !u.bind(lv, r) {
				return false
			}
		case rIsVar:
			if !u.bind(rv, l) {
				return false
			}
		default:
			if !u.decompose(l, r) {
				return false
			}
		}
	}
}

func keyLess(a, b annKey) bool {
	if a.base != b.base {
		return a.base.id < b.base.id
	}
	return a.exp < b.exp
}

// decompose splits an equation between two non-variable terms by their
// root symbol, failing on a root conflict.
func (u *leftUnifier) decompose(l, r Term) bool {
	switch l := Schema(l).(type) {
	case *Function:
		r, ok := Schema(r).(*Function)
		if !ok || l.sym != r.sym || len(l.args) != len(r.args) {
			return false
		}
		for i := range l.args {
			if !u.push(l.args[i], r.args[i]) {
				return false
			}
		}
		return true
	case *Tuple:
		r, ok := Schema(r).(*Tuple)
		if !ok || len(l.elems) != len(r.elems) {
			return false
		}
		for i := range l.elems {
			if !u.push(l.elems[i], r.elems[i]) {
				return false
			}
		}
		return true
	case *TermList:
		r, ok := Schema(r).(*TermList)
		if !ok || len(l.elems) != len(r.elems) {
			return false
		}
		for i := range l.elems {
			if !u.push(l.elems[i], r.elems[i]) {
				return false
			}
		}
		return true
	default:
		return DeepEquals(l, r)
	}
}

// bind records placeholder v = rhs. An equation rho^i(x) = f(...)
// containing rho^(i+j)(x) for j >= 0 is a guaranteed-divergent shape and
// fails; occurrences at strictly smaller exponents are kept. Per base
// variable only the lowest-exponent binding is stored; anything else
// turns into a new equation against the shifted image.
func (u *leftUnifier) bind(v *Variable, rhs Term) bool {
	key, ok := u.keys[v]
	if !ok {
		return false
	}
	if _, isVar := Schema(rhs).(*Variable); !isVar {
		if u.occursAtOrAbove(rhs, key.base, key.exp) {
			return false
		}
	}
	b, bound := u.bound[key.base]
	switch {
	case !bound:
		u.bound[key.base] = binding{exp: key.exp, rhs: rhs}
		return true
	case b.exp <= key.exp:
		return u.push(u.shift(b.rhs, key.exp-b.exp), rhs)
	default:
		u.bound[key.base] = binding{exp: key.exp, rhs: rhs}
		return u.push(b.rhs, u.shift(rhs, b.exp-key.exp))
	}
}

// occursAtOrAbove reports whether t contains a placeholder for base at an
// exponent >= exp.
func (u *leftUnifier) occursAtOrAbove(t Term, base *Variable, exp int) bool {
	switch t := Schema(t).(type) {
	case *Variable:
		key, ok := u.keys[t]
		return ok && key.base == base && key.exp >= exp
	case *Function:
		for _, a := range t.args {
			if u.occursAtOrAbove(a, base, exp) {
				return true
			}
		}
	case *Tuple:
		for _, e := range t.elems {
			if u.occursAtOrAbove(e, base, exp) {
				return true
			}
		}
	case *TermList:
		for _, e := range t.elems {
			if u.occursAtOrAbove(e, base, exp) {
				return true
			}
		}
	}
	return false
}

// levelVar is the external face of rho^exp(base): the base variable
// itself at exponent zero, a materialized chain variable above.
func (u *leftUnifier) levelVar(base *Variable, exp int) *Variable {
	if exp == 0 {
		return base
	}
	k := annKey{base: base, exp: exp}
	if v, ok := u.chain[k]; ok {
		return v
	}
	v := NewNamedVariable(fmt.Sprintf("%s^%d", base, exp))
	u.chain[k] = v
	return v
}

// render builds the solved external term for rho^exp(base): the resolved
// binding with every residual placeholder replaced by its level variable.
func (u *leftUnifier) render(base *Variable, exp int) (Term, bool) {
	t, ok := u.resolve(u.placeholder(base, exp), 0)
	if !ok {
		return nil, false
	}
	return u.externalize(t), true
}

func (u *leftUnifier) externalize(t Term) Term {
	switch t := Schema(t).(type) {
	case *Variable:
		if key, ok := u.keys[t]; ok {
			return u.levelVar(key.base, key.exp)
		}
		return t
	case *Function:
		args := make([]Term, len(t.args))
		for i, a := range t.args {
			args[i] = u.externalize(a)
		}
		return NewFunction(t.sym, args...)
	case *Tuple:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = u.externalize(e)
		}
		return NewTuple(elems...)
	case *TermList:
		elems := make([]Term, len(t.elems))
		for i, e := range t.elems {
			elems[i] = u.externalize(e)
		}
		return NewTermList(elems...)
	default:
		return t
	}
}

// unboundAt reports whether rho^exp(base) is a residual (unsolved)
// placeholder.
func (u *leftUnifier) unboundAt(base *Variable, exp int) bool {
	t, ok := u.resolve(u.placeholder(base, exp), 0)
	if !ok {
		return false
	}
	v, isVar := Schema(t).(*Variable)
	if !isVar {
		return false
	}
	key, ok := u.keys[v]
	return ok && key.base == base && key.exp == exp
}

// extract materializes the sigma and rho witnesses: sigma from the
// rho-free (exponent zero) view of each base variable, rho from the
// residual rho-marked placeholders, with chain variables created as
// needed so that rho maps each level onto the next.
func (u *leftUnifier) extract(s, t Term) (Substitution, Substitution, bool) {
	sigma := Substitution{}
	rho := Substitution{}

	bases := map[*Variable]bool{}
	for _, v := range Variables(s) {
		bases[v] = true
	}
	for _, v := range Variables(t) {
		bases[v] = true
	}

	// Exponents past the highest one an equation ever mentioned are
	// unconstrained; the rho closure below stops there. Rendering
	// registers new placeholders, so take the snapshot first.
	maxExp := map[*Variable]int{}
	for k := range u.vars {
		if k.exp > maxExp[k.base] {
			maxExp[k.base] = k.exp
		}
	}

	for base := range bases {
		img, ok := u.render(base, 0)
		if !ok {
			return nil, nil, false
		}
		if v, isVar := Schema(img).(*Variable); !isVar || v != base {
			sigma[base] = img
		}
	}

	// Close rho over every level variable reachable from the sigma
	// images, one level up at a time.
	type need struct {
		base *Variable
		exp  int
	}
	var work []need
	seen := map[need]bool{}
	enqueue := func(base *Variable, exp int) {
		if exp > maxExp[base] {
			return
		}
		n := need{base: base, exp: exp}
		if !seen[n] {
			seen[n] = true
			work = append(work, n)
		}
	}
	scan := func(img Term) {
		for _, v := range Variables(img) {
			for k, c := range u.chain {
				if c == v {
					enqueue(k.base, k.exp)
				}
			}
			if bases[v] && u.unboundAt(v, 0) {
				enqueue(v, 0)
			}
		}
	}
	for base := range bases {
		if u.unboundAt(base, 0) {
			enqueue(base, 0)
		}
	}
	for _, img := range sigma {
		scan(img)
	}
	for steps := 0; len(work) > 0 && steps < maxResolveDepth; steps++ {
		n := work[0]
		work = work[1:]
		img, ok := u.render(n.base, n.exp+1)
		if !ok {
			return nil, nil, false
		}
		from := u.levelVar(n.base, n.exp)
		if !DeepEquals(from, img) {
			rho[from] = img
		}
		scan(img)
	}
	return sigma, rho, true
}
