package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// assertLeftUnifies checks the defining identity of a left-unification
// witness: rho(sigma(s)) = sigma(t).
func assertLeftUnifies(t *testing.T, s, u Term, sigma, rho Substitution) {
	t.Helper()
	left := Apply(Apply(s, sigma), rho)
	right := Apply(u, sigma)
	assert.True(t, DeepEquals(left, right), "rho(sigma(%s)) = %s differs from sigma(%s) = %s", s, left, u, right)
}

func TestLeftUnify(t *testing.T) {
	t.Run("equal ground terms", func(t *testing.T) {
		s := NewFunction("f", NewFunction("a"))
		u := NewFunction("f", NewFunction("a"))
		sigma, rho, ok := LeftUnify(s, u)
		assert.True(t, ok)
		assert.Empty(t, sigma)
		assert.Empty(t, rho)
	})

	t.Run("growing variable", func(t *testing.T) {
		x := NewVariable()
		u := NewFunction("f", x)
		sigma, rho, ok := LeftUnify(x, u)
		assert.True(t, ok)
		assert.Empty(t, sigma)
		img, bound := rho.Lookup(x)
		assert.True(t, bound)
		assert.True(t, DeepEquals(u, img))
		assertLeftUnifies(t, x, u, sigma, rho)
	})

	t.Run("self-embedding pair", func(t *testing.T) {
		x := NewVariable()
		s := NewFunction("f#", x)
		u := NewFunction("f#", NewFunction("s", x))
		sigma, rho, ok := LeftUnify(s, u)
		assert.True(t, ok)
		assertLeftUnifies(t, s, u, sigma, rho)
	})

	t.Run("plain unifiable sides", func(t *testing.T) {
		x, y := NewVariable(), NewVariable()
		s := NewFunction("g", x)
		u := NewFunction("g", y)
		sigma, rho, ok := LeftUnify(s, u)
		assert.True(t, ok)
		assertLeftUnifies(t, s, u, sigma, rho)
	})

	t.Run("decreasing pair", func(t *testing.T) {
		x, y := NewVariable(), NewVariable()
		s := NewFunction("gt#", NewFunction("s", x), NewFunction("s", y))
		u := NewFunction("gt#", x, y)
		_, _, ok := LeftUnify(s, u)
		assert.False(t, ok)
	})

	t.Run("root clash", func(t *testing.T) {
		x := NewVariable()
		_, _, ok := LeftUnify(NewFunction("f", x), NewFunction("g", x))
		assert.False(t, ok)
	})

	t.Run("arity clash", func(t *testing.T) {
		x := NewVariable()
		_, _, ok := LeftUnify(NewFunction("f", x), NewFunction("f", x, x))
		assert.False(t, ok)
	})

	t.Run("instantiated growth", func(t *testing.T) {
		// sigma must close the gap before rho can grow it:
		// f#(x, b) left-unifies with f#(s(x), b) but not with f#(s(x), c).
		x := NewVariable()
		s := NewFunction("f#", x, NewFunction("b"))
		u := NewFunction("f#", NewFunction("s", x), NewFunction("b"))
		sigma, rho, ok := LeftUnify(s, u)
		assert.True(t, ok)
		assertLeftUnifies(t, s, u, sigma, rho)

		bad := NewFunction("f#", NewFunction("s", x), NewFunction("c"))
		_, _, ok = LeftUnify(s, bad)
		assert.False(t, ok)
	})
}
