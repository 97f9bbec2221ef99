package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize(t *testing.T) {
	t.Run("Should collapse a leaf to its value", func(t *testing.T) {
		assert.Equal(t, "x", Leaf("x").Materialize())
	})

	t.Run("Should collapse a list to a slice", func(t *testing.T) {
		got := List(Leaf(1), Leaf(2), Leaf(3)).Materialize()
		assert.Equal(t, []any{1, 2, 3}, got)
	})

	t.Run("Should collapse a named ref to an ordered-value map", func(t *testing.T) {
		n := Named(Field{"a", Leaf(1)}, Field{"b", Leaf(2)})
		assert.Equal(t, map[string]any{"a": 1, "b": 2}, n.Materialize())
	})
}

func TestLeaves(t *testing.T) {
	t.Run("Should flatten nested lists in order", func(t *testing.T) {
		r := List(Leaf(1), List(Leaf(2), Leaf(3)), Leaf(4))
		assert.Equal(t, []any{1, 2, 3, 4}, r.Leaves())
	})

	t.Run("Should treat a named ref as a single opaque leaf", func(t *testing.T) {
		n := Named(Field{"a", Leaf(1)})
		r := List(n, Leaf(2))
		assert.Equal(t, []any{map[string]any{"a": 1}, 2}, r.Leaves())
	})
}

func TestGet(t *testing.T) {
	t.Run("Should find a field by key", func(t *testing.T) {
		n := Named(Field{"x", Leaf(1)}, Field{"y", Leaf(2)})
		require.NotNil(t, n.Get("y"))
		assert.Equal(t, 2, n.Get("y").Materialize())
	})

	t.Run("Should return nil for a missing key", func(t *testing.T) {
		n := Named(Field{"x", Leaf(1)})
		assert.Nil(t, n.Get("missing"))
	})
}

func TestElementAction(t *testing.T) {
	t.Run("Should apply pointwise across a single list", func(t *testing.T) {
		r := List(Leaf(1), Leaf(2), Leaf(3))
		out, err := ElementAction(func(leaves ...any) (any, error) {
			return leaves[0].(int) * 10, nil
		}, r)
		require.NoError(t, err)
		assert.Equal(t, []any{10, 20, 30}, out.Materialize())
	})

	t.Run("Should zip aligned lists from multiple refs", func(t *testing.T) {
		a := List(Leaf(1), Leaf(2))
		b := List(Leaf(10), Leaf(20))
		out, err := ElementAction(func(leaves ...any) (any, error) {
			return leaves[0].(int) + leaves[1].(int), nil
		}, a, b)
		require.NoError(t, err)
		assert.Equal(t, []any{11, 22}, out.Materialize())
	})

	t.Run("Should error on mismatched list lengths", func(t *testing.T) {
		a := List(Leaf(1), Leaf(2))
		b := List(Leaf(10))
		_, err := ElementAction(func(leaves ...any) (any, error) {
			return nil, nil
		}, a, b)
		assert.Error(t, err)
	})

	t.Run("Should preserve the Unpacked marker on the result list", func(t *testing.T) {
		r := UnpackedList(Leaf(1), Leaf(2))
		out, err := ElementAction(func(leaves ...any) (any, error) {
			return leaves[0], nil
		}, r)
		require.NoError(t, err)
		assert.True(t, out.Unpacked)
	})
}

func TestCrossProduct(t *testing.T) {
	t.Run("Should produce the cartesian product in row-major order", func(t *testing.T) {
		axes := [][]any{{"a", "b"}, {1, 2}}
		got := CrossProduct(axes)
		assert.Equal(t, [][]any{
			{"a", 1}, {"a", 2},
			{"b", 1}, {"b", 2},
		}, got)
	})

	t.Run("Should pass a single axis through as singleton tuples", func(t *testing.T) {
		got := CrossProduct([][]any{{"x", "y"}})
		assert.Equal(t, [][]any{{"x"}, {"y"}}, got)
	})

	t.Run("Should return nil for no axes", func(t *testing.T) {
		assert.Nil(t, CrossProduct(nil))
	})
}
