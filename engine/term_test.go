package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	x := NewVariable()
	term := NewFunction("f", NewFunction("g", x), NewFunction("a"))

	t.Run("root", func(t *testing.T) {
		sub, err := Get(term, Position{})
		assert.NoError(t, err)
		assert.True(t, DeepEquals(term, sub))
	})

	t.Run("nested", func(t *testing.T) {
		sub, err := Get(term, Position{0, 0})
		assert.NoError(t, err)
		assert.Equal(t, x, Schema(sub))
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := Get(term, Position{2})
		assert.ErrorIs(t, err, ErrPosition)
	})

	t.Run("below a leaf", func(t *testing.T) {
		_, err := Get(term, Position{0, 0, 0})
		assert.ErrorIs(t, err, ErrPosition)
	})

	t.Run("inside a hat term", func(t *testing.T) {
		h := NewHat("s", []Term{NewVariable()}, NewFunction("a"))
		_, err := Get(h, Position{0})
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestReplace(t *testing.T) {
	x := NewVariable()
	term := NewFunction("f", NewFunction("g", x), NewFunction("a"))

	t.Run("root", func(t *testing.T) {
		b := NewFunction("b")
		out, err := Replace(term, Position{}, b)
		assert.NoError(t, err)
		assert.True(t, DeepEquals(b, out))
	})

	t.Run("nested", func(t *testing.T) {
		b := NewFunction("b")
		out, err := Replace(term, Position{0, 0}, b)
		assert.NoError(t, err)
		want := NewFunction("f", NewFunction("g", NewFunction("b")), NewFunction("a"))
		assert.True(t, DeepEquals(want, out))
	})

	t.Run("source is untouched", func(t *testing.T) {
		_, err := Replace(term, Position{1}, NewFunction("b"))
		assert.NoError(t, err)
		sub, err := Get(term, Position{1})
		assert.NoError(t, err)
		assert.True(t, DeepEquals(NewFunction("a"), sub))
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := Replace(term, Position{5}, NewFunction("b"))
		assert.ErrorIs(t, err, ErrPosition)
	})
}

func TestPositions(t *testing.T) {
	x := NewVariable()
	term := NewFunction("f", NewFunction("g", x), NewFunction("a"))

	ps := Positions(term)
	assert.Len(t, ps, 4)
	assert.True(t, ps[0].IsRoot())
	assert.True(t, ps[1].Equal(Position{0}))
	assert.True(t, ps[2].Equal(Position{0, 0}))
	assert.True(t, ps[3].Equal(Position{1}))
}

func TestDpos(t *testing.T) {
	x, y := NewVariable(), NewVariable()

	t.Run("equal terms", func(t *testing.T) {
		s := NewFunction("f", x)
		u := NewFunction("f", x)
		assert.Empty(t, Dpos(s, u, true))
	})

	t.Run("root conflict", func(t *testing.T) {
		ds := Dpos(NewFunction("f", x), NewFunction("g", x), true)
		assert.Len(t, ds, 1)
		assert.True(t, ds[0].IsRoot())
	})

	t.Run("minimal positions", func(t *testing.T) {
		s := NewFunction("f", NewFunction("a"), NewFunction("g", NewFunction("b")))
		u := NewFunction("f", NewFunction("c"), NewFunction("g", NewFunction("d")))
		ds := Dpos(s, u, true)
		assert.Len(t, ds, 2)
		assert.True(t, ds[0].Equal(Position{0}))
		assert.True(t, ds[1].Equal(Position{1, 0}))
	})

	t.Run("variable against function", func(t *testing.T) {
		ds := Dpos(NewFunction("f", x), NewFunction("f", NewFunction("a")), false)
		assert.Len(t, ds, 1)
		assert.True(t, ds[0].Equal(Position{0}))
	})

	t.Run("variable pair", func(t *testing.T) {
		s := NewFunction("f", x)
		u := NewFunction("f", y)
		assert.Empty(t, Dpos(s, u, false))
		assert.Len(t, Dpos(s, u, true), 1)
	})
}

func TestDeepEquals(t *testing.T) {
	x, y := NewVariable(), NewVariable()

	t.Run("same variable", func(t *testing.T) {
		assert.True(t, DeepEquals(x, x))
	})

	t.Run("distinct variables", func(t *testing.T) {
		assert.False(t, DeepEquals(x, y))
	})

	t.Run("rebuilt structure", func(t *testing.T) {
		assert.True(t, DeepEquals(NewFunction("f", x, NewFunction("a")), NewFunction("f", x, NewFunction("a"))))
	})

	t.Run("different argument", func(t *testing.T) {
		assert.False(t, DeepEquals(NewFunction("f", x), NewFunction("f", y)))
	})
}

func TestShallowCopy(t *testing.T) {
	x := NewVariable()
	term := NewFunction("f", x, NewFunction("a"))

	cp := ShallowCopy(term)
	assert.True(t, DeepEquals(term, cp))
	assert.NotSame(t, term, cp)
	assert.Equal(t, x, Schema(Schema(cp).(*Function).Arg(0)), "variables keep their identity")
}

func TestRenamedCopy(t *testing.T) {
	x := NewVariable()
	l := NewFunction("f", x, x)

	t.Run("fresh variables", func(t *testing.T) {
		cp := DeepCopy(l).(*Function)
		assert.False(t, DeepEquals(l, cp))
		assert.Equal(t, Schema(cp.Arg(0)), Schema(cp.Arg(1)), "shared occurrences stay shared")
		assert.NotEqual(t, x, Schema(cp.Arg(0)))
	})

	t.Run("shared rename table", func(t *testing.T) {
		ren := map[*Variable]*Variable{}
		a := RenamedCopy(NewFunction("g", x), ren)
		b := RenamedCopy(NewFunction("h", x), ren)
		av, _ := Get(a, Position{0})
		bv, _ := Get(b, Position{0})
		assert.Equal(t, Schema(av), Schema(bv))
	})
}

func TestContains(t *testing.T) {
	x, y := NewVariable(), NewVariable()
	term := NewFunction("f", NewFunction("g", x))

	assert.True(t, Contains(term, x))
	assert.False(t, Contains(term, y))
	assert.True(t, Contains(term, term))
}

func TestIsGround(t *testing.T) {
	assert.True(t, IsGround(NewFunction("f", NewFunction("a"))))
	assert.False(t, IsGround(NewFunction("f", NewVariable())))
	assert.False(t, IsGround(NewVariable()))
}

func TestVariables(t *testing.T) {
	x, y := NewVariable(), NewVariable()
	term := NewFunction("f", x, NewFunction("g", y, x))

	vs := Variables(term)
	assert.Equal(t, []*Variable{x, y}, vs)
}
