package nonterm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trsproofs/nonterm/engine"
)

func testRule(t *testing.T, l, r engine.Term) *engine.RuleTrs {
	t.Helper()
	rule, err := engine.NewRule(l, r)
	assert.NoError(t, err)
	return rule
}

func testTrs(t *testing.T, rules ...*engine.RuleTrs) *engine.Trs {
	t.Helper()
	trs, err := engine.NewTrs(rules, engine.FullStrategy)
	assert.NoError(t, err)
	return trs
}

// testProblem derives the dependency pairs and keeps them all in one
// problem, bypassing the graph decomposition.
func testProblem(t *testing.T, trs *engine.Trs) *engine.DpProblem {
	t.Helper()
	return engine.NewDpProblem(trs, engine.NewDpairs(trs).Pairs())
}

func TestEmbeddingProcessor_Run(t *testing.T) {
	proc := EmbeddingProcessor{}

	t.Run("shrinking pairs are finite", func(t *testing.T) {
		x := engine.NewVariable()
		trs := testTrs(t, testRule(t, engine.NewFunction("f", engine.NewFunction("s", x)), engine.NewFunction("f", x)))

		outcome, rest := proc.Run(testProblem(t, trs))
		assert.Equal(t, Finite, outcome)
		assert.Empty(t, rest)
	})

	t.Run("growing pair", func(t *testing.T) {
		x := engine.NewVariable()
		trs := testTrs(t, testRule(t, engine.NewFunction("f", x), engine.NewFunction("f", engine.NewFunction("s", x))))

		outcome, _ := proc.Run(testProblem(t, trs))
		assert.Equal(t, NoProgress, outcome)
	})

	t.Run("permuted arguments prove nothing", func(t *testing.T) {
		x, y := engine.NewVariable(), engine.NewVariable()
		trs := testTrs(t, testRule(t, engine.NewFunction("f", x, y), engine.NewFunction("f", y, x)))
		pair := testRule(t, engine.NewFunction("f#", x, y), engine.NewFunction("f#", y, x))

		outcome, _ := proc.Run(engine.NewDpProblem(trs, []*engine.RuleTrs{pair}))
		assert.Equal(t, NoProgress, outcome)
	})
}

func TestLpoProcessor_Run(t *testing.T) {
	proc := LpoProcessor{}

	t.Run("orientable system", func(t *testing.T) {
		x := engine.NewVariable()
		trs := testTrs(t, testRule(t, engine.NewFunction("f", engine.NewFunction("s", x)), engine.NewFunction("f", x)))

		outcome, rest := proc.Run(testProblem(t, trs))
		assert.Equal(t, Finite, outcome)
		assert.Empty(t, rest)
	})

	t.Run("growing rules are not orientable", func(t *testing.T) {
		x := engine.NewVariable()
		trs := testTrs(t, testRule(t, engine.NewFunction("f", x), engine.NewFunction("f", engine.NewFunction("s", x))))

		outcome, _ := proc.Run(testProblem(t, trs))
		assert.Equal(t, NoProgress, outcome)
	})

	t.Run("partial orientation reduces", func(t *testing.T) {
		x, y := engine.NewVariable(), engine.NewVariable()
		trs := testTrs(t,
			testRule(t, engine.NewFunction("f", engine.NewFunction("s", x)), engine.NewFunction("f", x)),
			testRule(t, engine.NewFunction("g", y), engine.NewFunction("g", y)),
		)

		outcome, rest := proc.Run(testProblem(t, trs))
		assert.Equal(t, Reduced, outcome)
		assert.Len(t, rest, 1)
		assert.Len(t, rest[0].Pairs(), 1)
		assert.Equal(t, "g#", rest[0].Pairs()[0].Left().Symbol())
	})
}

func TestRunPipeline(t *testing.T) {
	procs := []Processor{EmbeddingProcessor{}, LpoProcessor{}}

	t.Run("terminating system", func(t *testing.T) {
		x := engine.NewVariable()
		trs := testTrs(t, testRule(t, engine.NewFunction("f", engine.NewFunction("s", x)), engine.NewFunction("f", x)))
		assert.True(t, runPipeline([]*engine.DpProblem{testProblem(t, trs)}, procs))
	})

	t.Run("looping system", func(t *testing.T) {
		x := engine.NewVariable()
		trs := testTrs(t, testRule(t, engine.NewFunction("f", x), engine.NewFunction("f", engine.NewFunction("s", x))))
		assert.False(t, runPipeline([]*engine.DpProblem{testProblem(t, trs)}, procs))
	})

	t.Run("no problems", func(t *testing.T) {
		assert.True(t, runPipeline(nil, procs))
	})
}
