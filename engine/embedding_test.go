package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbedding_Embeds(t *testing.T) {
	var emb Embedding
	x, y := NewVariable(), NewVariable()

	t.Run("variable into variable", func(t *testing.T) {
		assert.True(t, emb.Embeds(x, y))
	})

	t.Run("variable by diving", func(t *testing.T) {
		assert.True(t, emb.Embeds(x, NewFunction("s", y)))
		assert.False(t, emb.Embeds(x, NewFunction("a")))
	})

	t.Run("coupling", func(t *testing.T) {
		s := NewFunction("f", x, NewFunction("a"))
		u := NewFunction("f", NewFunction("s", y), NewFunction("a"))
		assert.True(t, emb.Embeds(s, u))
	})

	t.Run("diving", func(t *testing.T) {
		s := NewFunction("f", x)
		u := NewFunction("g", NewFunction("f", y))
		assert.True(t, emb.Embeds(s, u))
	})

	t.Run("growth does not embed back", func(t *testing.T) {
		s := NewFunction("f", NewFunction("s", x))
		u := NewFunction("f", x)
		assert.False(t, emb.Embeds(s, u))
		assert.True(t, emb.Embeds(u, s))
	})

	t.Run("permuted arguments embed both ways", func(t *testing.T) {
		s := NewFunction("f", x, y)
		u := NewFunction("f", y, x)
		assert.True(t, emb.Embeds(s, u))
		assert.True(t, emb.Embeds(u, s))
	})

	t.Run("symbol mismatch", func(t *testing.T) {
		assert.False(t, emb.Embeds(NewFunction("a"), NewFunction("b")))
	})
}
