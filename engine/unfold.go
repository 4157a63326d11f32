package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// ElimStrategy selects which disagreement positions of an unfolded rule
// are kept for further unfolding. The three strategies trade completeness
// for search-space size and are independently selectable.
type ElimStrategy int

const (
	// UnfoldAll unfolds at every disagreement position.
	UnfoldAll ElimStrategy = iota
	// UnfoldLeftmost unfolds only at the leftmost disagreement position.
	UnfoldLeftmost
	// UnfoldLeftmostNonEmpty unfolds at the leftmost disagreement
	// position whose unfolding set is non-empty.
	UnfoldLeftmostNonEmpty
)

func (s ElimStrategy) String() string {
	switch s {
	case UnfoldAll:
		return "ALL"
	case UnfoldLeftmost:
		return "LEFTMOST"
	case UnfoldLeftmostNonEmpty:
		return "LEFTMOST_NE"
	default:
		return fmt.Sprintf("ElimStrategy(%d)", int(s))
	}
}

// UnfoldedRule is a rule produced by unfolding: the rule itself plus the
// iteration that produced it and a parent record for derivation
// reporting.
type UnfoldedRule struct {
	*RuleTrs
	Iteration int
	Parent    *UnfoldedRule
	Pos       Position
	Forward   bool
	With      *RuleTrs // the system rule resolved against
}

// Derivation returns the unfolding steps from the seed pair to the rule,
// oldest first.
func (u *UnfoldedRule) Derivation() []string {
	var lines []string
	for cur := u; cur != nil; cur = cur.Parent {
		if cur.Parent == nil {
			lines = append(lines, fmt.Sprintf("dependency pair %s", cur.RuleTrs))
			break
		}
		dir := "forward"
		if !cur.Forward {
			dir = "backward"
		}
		lines = append(lines, fmt.Sprintf("unfold %s at %s with %s giving %s", dir, cur.Pos, cur.With, cur.RuleTrs))
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

// Loop witness kinds, by the test that produced them.
const (
	WitnessInstance    = "instance"
	WitnessUnifiable   = "unifiable"
	WitnessLeftUnify   = "left-unifiable"
	WitnessGeneralized = "generalized"
)

// LoopWitness is a looping unfolded rule plus the substitutions proving
// the loop.
type LoopWitness struct {
	Rule  *UnfoldedRule
	Pos   Position // right-side position closing the loop
	Kind  string
	Sigma Substitution
	Rho   Substitution
}

func (w *LoopWitness) String() string {
	return fmt.Sprintf("%s loop at %s of %s", w.Kind, w.Pos, w.Rule.RuleTrs)
}

// Unfolder searches one DP problem for a loop witness by breadth-first
// unfolding of its dependency pairs.
type Unfolder struct {
	trs           *Trs
	pairs         []*RuleTrs
	strategy      ElimStrategy
	backward      bool
	maxIterations int
	emb           Embedding
	log           logrus.FieldLogger
}

// NewUnfolder prepares a search over the given problem. maxIterations
// bounds the breadth-first depth; the embedding checker is stateless and
// may be shared across concurrent unfolfers.
func NewUnfolder(p *DpProblem, strategy ElimStrategy, backward bool, maxIterations int, emb Embedding, log logrus.FieldLogger) *Unfolder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Unfolder{
		trs:           p.Trs(),
		pairs:         p.Pairs(),
		strategy:      strategy,
		backward:      backward,
		maxIterations: maxIterations,
		emb:           emb,
		log:           log,
	}
}

// Search runs the unfolding state machine until a witness is found, the
// iteration bound is exhausted, or ctx is cancelled. Exhaustion is a
// normal negative result: (nil, nil).
func (un *Unfolder) Search(ctx context.Context) (*LoopWitness, error) {
	frontier := make([]*UnfoldedRule, 0, len(un.pairs))
	for _, p := range un.pairs {
		frontier = append(frontier, &UnfoldedRule{RuleTrs: p.Rename(), Iteration: 0})
	}
	for it := 0; it <= un.maxIterations && len(frontier) > 0; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		un.log.WithFields(logrus.Fields{
			"strategy":  un.strategy.String(),
			"iteration": it,
			"frontier":  len(frontier),
		}).Debug("unfolding iteration")

		var next []*UnfoldedRule
		for _, u := range frontier {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if w := un.terminal(u); w != nil {
				un.log.WithField("witness", w.String()).Debug("loop witness found")
				return w, nil
			}
			if un.eliminate(u) {
				continue
			}
			if it == un.maxIterations {
				continue // bound reached, no successors wanted
			}
			next = append(next, un.successors(ctx, u)...)
		}
		frontier = next
	}
	return nil, nil
}

// terminal tests an unfolded rule for a loop before it is unfolded any
// further: is the right side, or one of its subterms, an instance of or
// unifiable with the left side, and failing that, does the left side
// left-unify with the right side.
func (un *Unfolder) terminal(u *UnfoldedRule) *LoopWitness {
	l, r := u.Left(), u.Right()
	for _, p := range Positions(r) {
		sub, err := Get(r, p)
		if err != nil {
			continue
		}
		if _, ok := Schema(sub).(*Function); !ok {
			continue
		}
		if theta, ok := Match(l, sub); ok {
			return &LoopWitness{Rule: u, Pos: p, Kind: WitnessInstance, Sigma: theta}
		}
		if theta, ok := UnifyUF(l, sub); ok {
			return &LoopWitness{Rule: u, Pos: p, Kind: WitnessUnifiable, Sigma: theta}
		}
	}
	if sigma, rho, ok := LeftUnify(l, r); ok {
		return &LoopWitness{Rule: u, Pos: Position{}, Kind: WitnessLeftUnify, Sigma: sigma, Rho: rho}
	}
	return nil
}

// eliminate discards an unfolded rule that is redundant: some ancestor
// embeds into it side by side, so anything reachable from it is reachable
// from a smaller rule already explored.
func (un *Unfolder) eliminate(u *UnfoldedRule) bool {
	for anc := u.Parent; anc != nil; anc = anc.Parent {
		if un.emb.Embeds(anc.Left(), u.Left()) && un.emb.Embeds(anc.Right(), u.Right()) {
			un.log.WithField("rule", u.RuleTrs.String()).Debug("eliminated by embedding")
			return true
		}
	}
	return false
}

// successors generates the next iteration's rules by unfolding forward
// and, if enabled, backward, against every rule of the system.
func (un *Unfolder) successors(ctx context.Context, u *UnfoldedRule) []*UnfoldedRule {
	var out []*UnfoldedRule
	out = un.unfoldForward(ctx, u, out)
	if un.backward {
		out = un.unfoldBackward(ctx, u, out)
	}
	return out
}

// candidatePositions returns the disagreement positions between the two
// sides that address a function subterm of side, leftmost first. A
// disagreement at a tuple-marked root can never resolve against a rule,
// so it is widened to every function position strictly below the root.
func candidatePositions(side Term, l, r Term) []Position {
	var out []Position
	for _, p := range Dpos(l, r, true) {
		sub, err := Get(side, p)
		if err != nil {
			continue
		}
		f, ok := Schema(sub).(*Function)
		if !ok {
			continue
		}
		if p.IsRoot() && IsTupleSymbol(f.Symbol()) {
			for _, q := range Positions(side) {
				if q.IsRoot() {
					continue
				}
				below, err := Get(side, q)
				if err != nil {
					continue
				}
				if _, ok := Schema(below).(*Function); ok {
					out = append(out, q)
				}
			}
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (un *Unfolder) unfoldForward(ctx context.Context, u *UnfoldedRule, out []*UnfoldedRule) []*UnfoldedRule {
	l, r := u.Left(), u.Right()
	for _, p := range candidatePositions(r, l, r) {
		if ctx.Err() != nil {
			return out
		}
		produced := 0
		sub, err := Get(r, p)
		if err != nil {
			continue
		}
		for _, rule := range un.trs.Rules() {
			rn := rule.Rename()
			theta, ok := UnifyUF(sub, rn.Left())
			if !ok {
				continue
			}
			replaced, err := Replace(r, p, rn.Right())
			if err != nil {
				continue
			}
			inst, err := (&RuleTrs{lhs: l, rhs: replaced, index: u.Index()}).ApplyRule(theta)
			if err != nil {
				continue
			}
			out = append(out, &UnfoldedRule{
				RuleTrs:   inst,
				Iteration: u.Iteration + 1,
				Parent:    u,
				Pos:       p,
				Forward:   true,
				With:      rule,
			})
			produced++
		}
		if un.strategy == UnfoldLeftmost {
			break
		}
		if un.strategy == UnfoldLeftmostNonEmpty && produced > 0 {
			break
		}
	}
	return out
}

func (un *Unfolder) unfoldBackward(ctx context.Context, u *UnfoldedRule, out []*UnfoldedRule) []*UnfoldedRule {
	l, r := u.Left(), u.Right()
	for _, p := range candidatePositions(l, l, r) {
		if ctx.Err() != nil {
			return out
		}
		if p.IsRoot() {
			continue // the left root must stay a function symbol
		}
		produced := 0
		sub, err := Get(l, p)
		if err != nil {
			continue
		}
		for _, rule := range un.trs.Rules() {
			rn := rule.Rename()
			theta, ok := UnifyUF(sub, rn.Right())
			if !ok {
				continue
			}
			replaced, err := Replace(l, p, rn.Left())
			if err != nil {
				continue
			}
			inst, err := (&RuleTrs{lhs: replaced.(*Function), rhs: r, index: u.Index()}).ApplyRule(theta)
			if err != nil {
				continue
			}
			out = append(out, &UnfoldedRule{
				RuleTrs:   inst,
				Iteration: u.Iteration + 1,
				Parent:    u,
				Pos:       p,
				Forward:   false,
				With:      rule,
			})
			produced++
		}
		if un.strategy == UnfoldLeftmost {
			break
		}
		if un.strategy == UnfoldLeftmostNonEmpty && produced > 0 {
			break
		}
	}
	return out
}
