package engine

// Unify computes a unifier for s and t by the disagreement-pair method:
// it repeatedly picks a minimal position at which the current instances
// differ, orients a simple pair into the accumulated substitution, and
// stops when no disagreement is left or the occurs check fails. The
// returned substitution is materialized; use UnifiableClosure when only
// the yes/no answer is needed.
func Unify(s, t Term) (Substitution, bool) {
	theta := Substitution{}
	for {
		a, b := Apply(s, theta), Apply(t, theta)
		ds := Dpos(a, b, true)
		if len(ds) == 0 {
			return theta, true
		}
		u, err := Get(a, ds[0])
		if err != nil {
			return nil, false
		}
		v, err := Get(b, ds[0])
		if err != nil {
			return nil, false
		}
		step, ok := orient(u, v)
		if !ok {
			return nil, false
		}
		theta = theta.Compose(step)
	}
}

// orient turns a disagreement pair into a one-variable binding: a variable
// side that does not occur in its partner is bound to the partner.
func orient(u, v Term) (Substitution, bool) {
	if x, ok := Schema(u).(*Variable); ok && !Contains(v, x) {
		return Substitution{x: Schema(v)}, true
	}
	if y, ok := Schema(v).(*Variable); ok && !Contains(u, y) {
		return Substitution{y: Schema(u)}, true
	}
	return nil, false
}

// Unifiable reports whether s and t unify, tested on renamed copies so the
// operands keep their union-find state.
func Unifiable(s, t Term) bool {
	ren := map[*Variable]*Variable{}
	return UnifyClosure(RenamedCopy(s, ren), RenamedCopy(t, ren))
}
