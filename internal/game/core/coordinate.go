package core

import "fmt"

// Coordinate represents a position on the grid
type Coordinate struct {
	X, Y int
}

// FromIndex creates a coordinate from a grid index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ToIndex converts the coordinate to a grid index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// Wrap folds the coordinate back onto a width x height torus
func (c Coordinate) Wrap(width, height int) Coordinate {
	return Coordinate{
		X: ((c.X % width) + width) % width,
		Y: ((c.Y % height) + height) % height,
	}
}

// Neighbors returns the four orthogonal neighbors of this coordinate
func (c Coordinate) Neighbors() []Coordinate {
	return []Coordinate{
		{X: c.X, Y: c.Y - 1}, // North
		{X: c.X + 1, Y: c.Y}, // East
		{X: c.X, Y: c.Y + 1}, // South
		{X: c.X - 1, Y: c.Y}, // West
	}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
