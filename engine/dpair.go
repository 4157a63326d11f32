package engine

// Dpairs is the set of dependency pairs of a rewrite system: for each
// rule l -> r and each subterm t of r rooted by a defined symbol, the
// pair (l#, t#) with tuple-marked roots. Built once per system.
type Dpairs struct {
	pairs []*RuleTrs
}

// NewDpairs derives the dependency pairs of trs.
func NewDpairs(trs *Trs) *Dpairs {
	defined := trs.DefinedSymbols()
	var pairs []*RuleTrs
	for _, r := range trs.Rules() {
		for _, p := range Positions(r.Right()) {
			sub, err := Get(r.Right(), p)
			if err != nil {
				continue
			}
			f, ok := Schema(sub).(*Function)
			if !ok || !defined[symbolKey(f)] {
				continue
			}
			pair := &RuleTrs{
				lhs:   MarkTuple(r.Left()),
				rhs:   MarkTuple(f),
				index: r.index,
			}
			pairs = append(pairs, pair)
		}
	}
	return &Dpairs{pairs: pairs}
}

// Pairs returns the dependency pairs in derivation order.
func (d *Dpairs) Pairs() []*RuleTrs { return d.pairs }

// Len returns the number of pairs.
func (d *Dpairs) Len() int { return len(d.pairs) }
