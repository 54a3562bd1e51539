package core

// Geometry decides which tiles touch and how far apart two tiles are.
// It is chosen once when a Grid is built.
type Geometry interface {
	// Neighbors returns the distinct orthogonal neighbors of idx, excluding idx itself.
	Neighbors(idx int) []int
	// Distance returns the number of orthogonal steps between a and b.
	Distance(a, b int) int
	// Name identifies the geometry in logs.
	Name() string
}

// NewGeometry returns the torus geometry when the torus modifier is active,
// and the clamped-edge geometry otherwise.
func NewGeometry(width, height int, mods ModifierSet) Geometry {
	if mods.Has(ModifierTorus) {
		return torusGeometry{w: width, h: height}
	}
	return clampedGeometry{w: width, h: height}
}

type clampedGeometry struct{ w, h int }

func (g clampedGeometry) Name() string { return "clamped" }

func (g clampedGeometry) Neighbors(idx int) []int {
	c := FromIndex(idx, g.w)
	out := make([]int, 0, 4)
	for _, n := range c.Neighbors() {
		if n.IsValid(g.w, g.h) {
			out = append(out, n.ToIndex(g.w))
		}
	}
	return out
}

func (g clampedGeometry) Distance(a, b int) int {
	ca, cb := FromIndex(a, g.w), FromIndex(b, g.w)
	return abs(ca.X-cb.X) + abs(ca.Y-cb.Y)
}

type torusGeometry struct{ w, h int }

func (g torusGeometry) Name() string { return "torus" }

func (g torusGeometry) Neighbors(idx int) []int {
	c := FromIndex(idx, g.w)
	out := make([]int, 0, 4)
	for _, n := range c.Neighbors() {
		ni := n.Wrap(g.w, g.h).ToIndex(g.w)
		if ni == idx || containsInt(out, ni) {
			continue
		}
		out = append(out, ni)
	}
	return out
}

// Distance takes the shorter way around on each axis.
func (g torusGeometry) Distance(a, b int) int {
	ca, cb := FromIndex(a, g.w), FromIndex(b, g.w)
	dx := abs(ca.X - cb.X)
	dy := abs(ca.Y - cb.Y)
	if g.w-dx < dx {
		dx = g.w - dx
	}
	if g.h-dy < dy {
		dy = g.h - dy
	}
	return dx + dy
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
