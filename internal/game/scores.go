package game

import "sort"

// Score is one row of the running score table.
type Score struct {
	Index int // player index
	Total int // army on owned tiles
	Tiles int // owned tile count
	Dead  bool
}

// Scores returns the score table as of the last turn advance, best first.
func (m *Match) Scores() []Score {
	return append([]Score(nil), m.scores...)
}

// RefreshScores recomputes the score table without advancing the turn.
func (m *Match) RefreshScores() {
	m.computeScores()
}

// computeScores tallies army and land per player and ranks them: living
// players by army then land, dead players after them with the most
// recently eliminated first.
func (m *Match) computeScores() {
	n := len(m.Players)
	scores := make([]Score, n)
	for p := range scores {
		scores[p] = Score{Index: p, Dead: m.dead[p]}
	}
	for i := 0; i < m.Grid.Size(); i++ {
		owner := m.Grid.TileAt(i)
		if owner < 0 || owner >= n {
			continue
		}
		scores[owner].Total += m.Grid.ArmyAt(i)
		scores[owner].Tiles++
	}

	deathOrder := make([]int, n)
	for order, p := range m.Deaths {
		deathOrder[p] = order
	}

	sort.SliceStable(scores, func(a, b int) bool {
		sa, sb := scores[a], scores[b]
		if sa.Dead != sb.Dead {
			return !sa.Dead
		}
		if sa.Dead {
			return deathOrder[sa.Index] > deathOrder[sb.Index]
		}
		if sa.Total != sb.Total {
			return sa.Total > sb.Total
		}
		return sa.Tiles > sb.Tiles
	})
	m.scores = scores
}
