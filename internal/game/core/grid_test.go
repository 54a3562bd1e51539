package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
	}{
		{"small grid", 5, 5},
		{"rectangular grid", 10, 20},
		{"single row", 7, 1},
		{"minimum grid", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.width, tt.height, nil, 0)
			require.NoError(t, err)

			assert.Equal(t, tt.width*tt.height, g.Size())
			for i := 0; i < g.Size(); i++ {
				assert.Equal(t, TileEmpty, g.TileAt(i), "tile %d should be empty", i)
				assert.Equal(t, 0, g.ArmyAt(i), "tile %d should have 0 army", i)
				assert.LessOrEqual(t, len(g.Neighbors(i)), 4, "tile %d has too many neighbors", i)
			}
		})
	}
}

func TestNewGrid_InvalidDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 5}, {5, 0}, {-1, 3}} {
		_, err := NewGrid(dims[0], dims[1], nil, 0)
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	}
}

func TestGrid_ClampedAdjacency(t *testing.T) {
	g, err := NewGrid(4, 3, nil, 0)
	require.NoError(t, err)

	assert.Len(t, g.Neighbors(g.Idx(0, 0)), 2, "corner")
	assert.Len(t, g.Neighbors(g.Idx(1, 0)), 3, "edge")
	assert.Len(t, g.Neighbors(g.Idx(1, 1)), 4, "interior")

	assert.True(t, g.IsAdjacent(g.Idx(1, 1), g.Idx(2, 1)))
	assert.True(t, g.IsAdjacent(g.Idx(1, 1), g.Idx(1, 2)))
	assert.False(t, g.IsAdjacent(g.Idx(1, 1), g.Idx(2, 2)), "diagonal")
	assert.False(t, g.IsAdjacent(g.Idx(3, 0), g.Idx(0, 1)), "row end must not touch next row start")
	assert.False(t, g.IsAdjacent(g.Idx(0, 0), g.Idx(3, 0)), "no wrap without torus")
	assert.False(t, g.IsAdjacent(0, -1))
	assert.False(t, g.IsAdjacent(0, g.Size()))
}

func TestGrid_TorusAdjacencyAndDistance(t *testing.T) {
	g, err := NewGrid(5, 4, nil, NewModifierSet(ModifierTorus))
	require.NoError(t, err)
	assert.Equal(t, "torus", g.Geometry().Name())

	for i := 0; i < g.Size(); i++ {
		assert.Len(t, g.Neighbors(i), 4, "tile %d", i)
	}

	left, right := g.Idx(0, 2), g.Idx(4, 2)
	assert.True(t, g.IsAdjacent(left, right))
	assert.Equal(t, 1, g.Distance(left, right))

	top, bottom := g.Idx(3, 0), g.Idx(3, 3)
	assert.True(t, g.IsAdjacent(top, bottom))
	assert.Equal(t, 1, g.Distance(top, bottom))

	assert.Equal(t, 2, g.Distance(g.Idx(0, 0), g.Idx(4, 3)))
}

func TestGrid_Distance(t *testing.T) {
	g, err := NewGrid(5, 5, nil, 0)
	require.NoError(t, err)

	tests := []struct {
		a, b     int
		expected int
	}{
		{g.Idx(0, 0), g.Idx(0, 0), 0},
		{g.Idx(0, 0), g.Idx(4, 0), 4},
		{g.Idx(0, 0), g.Idx(4, 4), 8},
		{g.Idx(1, 3), g.Idx(3, 1), 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, g.Distance(tt.a, tt.b))
		assert.Equal(t, tt.expected, g.Distance(tt.b, tt.a))
	}
}

func TestGrid_DecrementClampsToEmpty(t *testing.T) {
	g, err := NewGrid(3, 3, nil, 0)
	require.NoError(t, err)

	g.SetTile(4, 0)
	g.SetArmy(4, 2)

	g.Decrement(4)
	assert.Equal(t, 0, g.TileAt(4))
	assert.Equal(t, 1, g.ArmyAt(4))

	g.Decrement(4)
	assert.Equal(t, TileEmpty, g.TileAt(4))
	assert.Equal(t, 0, g.ArmyAt(4))

	g.Decrement(4)
	assert.Equal(t, 0, g.ArmyAt(4), "army never goes negative")
}

func TestGrid_IsObstacle(t *testing.T) {
	g, err := NewGrid(3, 2, nil, 0)
	require.NoError(t, err)
	g.SetTile(0, TileMountain)
	g.SetTile(1, TileLookout)
	g.SetTile(2, TileObservatory)
	g.SetTile(3, 1)
	g.SetTile(4, TileFog)

	assert.True(t, g.IsObstacle(0))
	assert.True(t, g.IsObstacle(1))
	assert.True(t, g.IsObstacle(2))
	assert.False(t, g.IsObstacle(3))
	assert.False(t, g.IsObstacle(4))
	assert.False(t, g.IsObstacle(5))
}

func TestGrid_ReplaceAll(t *testing.T) {
	g, err := NewGrid(3, 3, nil, 0)
	require.NoError(t, err)
	armies := map[int]int{0: 1, 1: 3, 2: 10, 5: 0}
	for idx, army := range armies {
		g.SetTile(idx, 1)
		g.SetArmy(idx, army)
	}
	g.SetTile(8, 0)
	g.SetArmy(8, 7)

	changed := g.ReplaceAll(1, 0, 0.5)

	assert.Equal(t, 4, changed)
	assert.Equal(t, 1, g.ArmyAt(0), "0.5 rounds up")
	assert.Equal(t, 2, g.ArmyAt(1), "1.5 rounds up")
	assert.Equal(t, 5, g.ArmyAt(2))
	assert.Equal(t, 0, g.ArmyAt(5))
	assert.Equal(t, 7, g.ArmyAt(8), "tiles of other owners are untouched")
	assert.Empty(t, g.Owned(1))
	assert.ElementsMatch(t, []int{0, 1, 2, 5, 8}, g.Owned(0))
}

func TestGrid_SameSide(t *testing.T) {
	g, err := NewGrid(2, 2, []int{0, 1, 0}, 0)
	require.NoError(t, err)

	assert.True(t, g.SameSide(0, 0))
	assert.True(t, g.SameSide(0, 2), "teammates")
	assert.False(t, g.SameSide(0, 1))
	assert.False(t, g.SameSide(0, TileEmpty))
	assert.False(t, g.SameSide(TileEmpty, TileEmpty))

	solo, err := NewGrid(2, 2, nil, 0)
	require.NoError(t, err)
	assert.False(t, solo.SameSide(0, 2), "no teams configured")
}

func TestModifierSet(t *testing.T) {
	s := NewModifierSet(ModifierLeapfrog, ModifierTorus, Modifier(99))
	assert.True(t, s.Has(ModifierLeapfrog))
	assert.True(t, s.Has(ModifierTorus))
	assert.False(t, s.Has(ModifierCityState))
	assert.False(t, s.Has(Modifier(99)))
	assert.Equal(t, "leapfrog,torus", s.String())
}

func TestWrapMoveError(t *testing.T) {
	assert.Nil(t, WrapMoveError(0, 1, 2, nil))

	err := WrapMoveError(1, 5, 6, ErrNotAdjacent)
	require.Error(t, err)
	assert.Equal(t, "player 1: move 5 -> 6: tiles are not adjacent", err.Error())
	assert.ErrorIs(t, err, ErrNotAdjacent)
}
