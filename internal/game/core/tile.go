package core

// Tile values are either an owner player index (>= 0) or one of the
// negative sentinels below.
const (
	TileEmpty       = -1
	TileMountain    = -2
	TileFog         = -3 // only meaningful to a live viewer
	TileFogObstacle = -4 // only meaningful to a live viewer
	TileLookout     = -5
	TileObservatory = -6
)

// IsOwned reports whether a tile value is a player index rather than a sentinel.
func IsOwned(tile int) bool { return tile >= 0 }

// IsObstacleTile reports whether a tile value blocks movement and cannot be attacked.
func IsObstacleTile(tile int) bool {
	switch tile {
	case TileMountain, TileLookout, TileObservatory:
		return true
	}
	return false
}

// TileName returns a short label for a tile value, used in logs.
func TileName(tile int) string {
	switch tile {
	case TileEmpty:
		return "empty"
	case TileMountain:
		return "mountain"
	case TileFog:
		return "fog"
	case TileFogObstacle:
		return "fog_obstacle"
	case TileLookout:
		return "lookout"
	case TileObservatory:
		return "observatory"
	}
	if tile >= 0 {
		return "owned"
	}
	return "unknown"
}
