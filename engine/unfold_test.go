package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func singleProblem(t *testing.T, trs *Trs) *DpProblem {
	t.Helper()
	problems := NewDependencyGraph(trs, NewDpairs(trs)).Problems(trs)
	assert.Equal(t, 1, problems.Len())
	return problems.Problems()[0]
}

func TestUnfolder_Search(t *testing.T) {
	ctx := context.Background()
	var emb Embedding

	t.Run("immediate loop", func(t *testing.T) {
		x := NewVariable()
		trs := mustTrs(t, mustRule(t, NewFunction("f", x), NewFunction("f", NewFunction("s", x))))

		un := NewUnfolder(singleProblem(t, trs), UnfoldAll, false, 3, emb, nil)
		w, err := un.Search(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, w)
		assert.Equal(t, WitnessInstance, w.Kind)
		assert.Equal(t, 0, w.Rule.Iteration)
		assert.NotNil(t, w.Sigma)
	})

	t.Run("loop through a defined argument", func(t *testing.T) {
		// f(s(x)) -> f(g(x)) loops only after g(x) is narrowed to s(x).
		x := NewVariable()
		y := NewVariable()
		trs := mustTrs(t,
			mustRule(t, NewFunction("f", NewFunction("s", x)), NewFunction("f", NewFunction("g", x))),
			mustRule(t, NewFunction("g", y), NewFunction("s", y)),
		)

		un := NewUnfolder(singleProblem(t, trs), UnfoldAll, false, 3, emb, nil)
		w, err := un.Search(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, w)
		assert.Equal(t, WitnessInstance, w.Kind)
		assert.Equal(t, 1, w.Rule.Iteration)
		assert.Len(t, w.Rule.Derivation(), 2)
	})

	t.Run("no loop within the bound", func(t *testing.T) {
		x := NewVariable()
		y := NewVariable()
		trs := mustTrs(t, mustRule(t,
			NewFunction("gt", NewFunction("s", x), NewFunction("s", y)),
			NewFunction("gt", x, y)))

		un := NewUnfolder(singleProblem(t, trs), UnfoldAll, false, 4, emb, nil)
		w, err := un.Search(ctx)
		assert.NoError(t, err)
		assert.Nil(t, w)
	})

	t.Run("every strategy finds the single-candidate loop", func(t *testing.T) {
		for _, strat := range []ElimStrategy{UnfoldAll, UnfoldLeftmost, UnfoldLeftmostNonEmpty} {
			t.Run(strat.String(), func(t *testing.T) {
				x := NewVariable()
				y := NewVariable()
				trs := mustTrs(t,
					mustRule(t, NewFunction("f", NewFunction("s", x)), NewFunction("f", NewFunction("g", x))),
					mustRule(t, NewFunction("g", y), NewFunction("s", y)),
				)

				un := NewUnfolder(singleProblem(t, trs), strat, false, 3, emb, nil)
				w, err := un.Search(ctx)
				assert.NoError(t, err)
				assert.NotNil(t, w)
				assert.Equal(t, WitnessInstance, w.Kind)
			})
		}
	})

	t.Run("backward unfolding", func(t *testing.T) {
		// With {f(s(x)) -> f(x), a -> s(a)} the pair for f has a bare
		// variable on the right: forward unfolding is stuck, and only
		// narrowing s(x) on the left back through a closes the loop.
		x := NewVariable()
		trs := mustTrs(t,
			mustRule(t, NewFunction("f", NewFunction("s", x)), NewFunction("f", x)),
			mustRule(t, NewFunction("a"), NewFunction("s", NewFunction("a"))),
		)
		pair := mustRule(t, NewFunction("f#", NewFunction("s", x)), NewFunction("f#", x))
		problem := NewDpProblem(trs, []*RuleTrs{pair})

		forward := NewUnfolder(problem, UnfoldAll, false, 3, emb, nil)
		w, err := forward.Search(ctx)
		assert.NoError(t, err)
		assert.Nil(t, w)

		backward := NewUnfolder(problem, UnfoldAll, true, 3, emb, nil)
		w, err = backward.Search(ctx)
		assert.NoError(t, err)
		assert.NotNil(t, w)
		assert.Equal(t, WitnessInstance, w.Kind)
		assert.Equal(t, 1, w.Rule.Iteration)
		assert.False(t, w.Rule.Forward)
	})

	t.Run("cancelled context", func(t *testing.T) {
		x := NewVariable()
		trs := mustTrs(t, mustRule(t, NewFunction("f", x), NewFunction("f", NewFunction("s", x))))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		un := NewUnfolder(singleProblem(t, trs), UnfoldAll, false, 3, emb, nil)
		w, err := un.Search(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, w)
	})
}

func TestUnfoldedRule_Derivation(t *testing.T) {
	x := NewVariable()
	rule := mustRule(t, NewFunction("f#", x), NewFunction("f#", NewFunction("s", x)))
	seed := &UnfoldedRule{RuleTrs: rule}
	child := &UnfoldedRule{
		RuleTrs:   rule,
		Iteration: 1,
		Parent:    seed,
		Pos:       Position{0},
		Forward:   true,
		With:      rule,
	}

	lines := child.Derivation()
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "dependency pair")
	assert.Contains(t, lines[1], "forward")
}

func TestCandidatePositions_LeftmostFirst(t *testing.T) {
	l := NewFunction("f#", NewVariable())
	r := NewFunction("u#", NewFunction("g", NewFunction("a")), NewFunction("h", NewFunction("b")))

	got := candidatePositions(r, l, r)
	want := []Position{{0}, {0, 0}, {1}, {1, 0}}
	assert.Equal(t, want, got)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Less(got[i]))
	}
}

func TestElimStrategy_String(t *testing.T) {
	assert.Equal(t, "ALL", UnfoldAll.String())
	assert.Equal(t, "LEFTMOST", UnfoldLeftmost.String())
	assert.Equal(t, "LEFTMOST_NE", UnfoldLeftmostNonEmpty.String())
}
