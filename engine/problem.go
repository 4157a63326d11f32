package engine

// DpProblem is an immutable pairing of a rewrite system with one retained
// component of its dependency graph: the unit of independent proof search.
type DpProblem struct {
	trs   *Trs
	pairs []*RuleTrs
}

// NewDpProblem pairs a rewrite system with a set of dependency pairs.
func NewDpProblem(trs *Trs, pairs []*RuleTrs) *DpProblem {
	return &DpProblem{trs: trs, pairs: pairs}
}

// Trs returns the rewrite system.
func (p *DpProblem) Trs() *Trs { return p.trs }

// Pairs returns the component's dependency pairs.
func (p *DpProblem) Pairs() []*RuleTrs { return p.pairs }

// ShallowCopy returns a problem whose rewrite system and pairs are deep
// copies of the receiver's. The union-find term graph is not thread-safe,
// so a problem handed to another task must never share term nodes with
// the original; this copy is the sole enforcement mechanism.
func (p *DpProblem) ShallowCopy() *DpProblem {
	pairs := make([]*RuleTrs, len(p.pairs))
	for i, pr := range p.pairs {
		pairs[i] = pr.Rename()
	}
	return &DpProblem{trs: p.trs.DeepCopy(), pairs: pairs}
}

// DpProbCollection is an ordered collection of independent DP problems.
type DpProbCollection struct {
	problems []*DpProblem
}

// Problems returns the problems in component order.
func (c *DpProbCollection) Problems() []*DpProblem { return c.problems }

// Len returns the number of problems.
func (c *DpProbCollection) Len() int { return len(c.problems) }

// ShallowCopy copies the collection problem by problem; see
// DpProblem.ShallowCopy for the aliasing contract.
func (c *DpProbCollection) ShallowCopy() *DpProbCollection {
	problems := make([]*DpProblem, len(c.problems))
	for i, p := range c.problems {
		problems[i] = p.ShallowCopy()
	}
	return &DpProbCollection{problems: problems}
}
