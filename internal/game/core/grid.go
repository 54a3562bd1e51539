package core

import (
	"fmt"
	"math"
)

// Grid holds the tile and army arrays of a match, indexed row-major
// (idx = y*W + x), plus the adjacency table for the active geometry.
type Grid struct {
	W, H      int
	Teams     []int // player index -> team id; nil when the match has no teams
	Modifiers ModifierSet

	tiles     []int
	armies    []int
	geometry  Geometry
	adjacency [][]int
}

// NewGrid creates an empty grid. The adjacency table is computed here once
// and never again.
func NewGrid(w, h int, teams []int, mods ModifierSet) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	g := &Grid{
		W:         w,
		H:         h,
		Teams:     teams,
		Modifiers: mods,
		tiles:     make([]int, w*h),
		armies:    make([]int, w*h),
		geometry:  NewGeometry(w, h, mods),
		adjacency: make([][]int, w*h),
	}
	for i := range g.tiles {
		g.tiles[i] = TileEmpty
		g.adjacency[i] = g.geometry.Neighbors(i)
	}
	return g, nil
}

func (g *Grid) Size() int               { return len(g.tiles) }
func (g *Grid) Idx(x, y int) int        { return y*g.W + x }
func (g *Grid) XY(idx int) (int, int)   { return idx % g.W, idx / g.W }
func (g *Grid) Geometry() Geometry      { return g.geometry }
func (g *Grid) Neighbors(idx int) []int { return g.adjacency[idx] }

// InBounds reports whether idx addresses a tile of this grid
func (g *Grid) InBounds(idx int) bool {
	return idx >= 0 && idx < len(g.tiles)
}

func (g *Grid) TileAt(idx int) int { return g.tiles[idx] }
func (g *Grid) ArmyAt(idx int) int { return g.armies[idx] }

func (g *Grid) SetTile(idx, tile int) { g.tiles[idx] = tile }

// SetArmy sets the army count, clamping negatives to zero.
func (g *Grid) SetArmy(idx, army int) {
	if army < 0 {
		army = 0
	}
	g.armies[idx] = army
}

// Increment adds one army to idx.
func (g *Grid) Increment(idx int) {
	g.armies[idx]++
}

// Decrement removes one army from idx. A tile that drops to zero or below
// loses its owner and is left empty with zero army.
func (g *Grid) Decrement(idx int) {
	g.armies[idx]--
	if g.armies[idx] <= 0 {
		g.armies[idx] = 0
		g.tiles[idx] = TileEmpty
	}
}

// IsAdjacent reports whether b is an orthogonal neighbor of a under the
// grid's geometry.
func (g *Grid) IsAdjacent(a, b int) bool {
	if !g.InBounds(a) || !g.InBounds(b) {
		return false
	}
	for _, n := range g.adjacency[a] {
		if n == b {
			return true
		}
	}
	return false
}

// IsObstacle reports whether idx is a mountain, lookout or observatory
func (g *Grid) IsObstacle(idx int) bool {
	return IsObstacleTile(g.tiles[idx])
}

// Distance returns the step distance between a and b under the grid's geometry
func (g *Grid) Distance(a, b int) int {
	return g.geometry.Distance(a, b)
}

// TeamOf returns the team of a player, or false when teams are off or the
// tile value is not a player.
func (g *Grid) TeamOf(player int) (int, bool) {
	if g.Teams == nil || player < 0 || player >= len(g.Teams) {
		return 0, false
	}
	return g.Teams[player], true
}

// SameSide reports whether two tile values belong to the same player or,
// with teams configured, to the same team.
func (g *Grid) SameSide(a, b int) bool {
	if !IsOwned(a) || !IsOwned(b) {
		return false
	}
	if a == b {
		return true
	}
	ta, okA := g.TeamOf(a)
	tb, okB := g.TeamOf(b)
	return okA && okB && ta == tb
}

// ReplaceAll hands every tile owned by from to to, scaling each army by
// scale and rounding half up. Returns the number of tiles changed.
func (g *Grid) ReplaceAll(from, to int, scale float64) int {
	changed := 0
	for i, t := range g.tiles {
		if t != from {
			continue
		}
		g.tiles[i] = to
		g.armies[i] = int(math.Floor(float64(g.armies[i])*scale + 0.5))
		changed++
	}
	return changed
}

// Owned returns the indices of every tile owned by player
func (g *Grid) Owned(player int) []int {
	var out []int
	for i, t := range g.tiles {
		if t == player {
			out = append(out, i)
		}
	}
	return out
}
