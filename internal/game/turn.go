package game

import (
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/core"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
)

// Growth cadences, in turns. Replays must reproduce the live server exactly,
// so these are not configurable.
const (
	RecruitInterval = 2
	FarmInterval    = 50
)

// AdvanceTurn moves the match forward one turn, applies growth and decay,
// and recomputes the score table.
func (m *Match) AdvanceTurn() {
	m.Turn++
	recruit := m.Turn%RecruitInterval == 0
	farm := m.Turn%FarmInterval == 0

	if recruit {
		m.recruit()
	}
	if farm {
		m.farm()
	}
	m.computeScores()

	m.publisher.Publish(events.NewTurnAdvancedEvent(m.ID, m.Turn, recruit, farm, m.AlivePlayers))
}

// recruit grows generals and owned cities by one and decays owned swamps.
func (m *Match) recruit() {
	g := m.Grid
	for _, idx := range m.Generals {
		if idx != DeadGeneral {
			g.Increment(idx)
		}
	}
	for _, idx := range m.Cities {
		if core.IsOwned(g.TileAt(idx)) {
			g.Increment(idx)
		}
	}
	for _, idx := range m.Swamps {
		if core.IsOwned(g.TileAt(idx)) {
			g.Decrement(idx)
		}
	}
}

// farm grows every owned tile by one, then takes the growth back from
// owned deserts.
func (m *Match) farm() {
	g := m.Grid
	for i := 0; i < g.Size(); i++ {
		if core.IsOwned(g.TileAt(i)) {
			g.Increment(i)
		}
	}
	for _, idx := range m.Deserts {
		if core.IsOwned(g.TileAt(idx)) {
			g.SetArmy(idx, g.ArmyAt(idx)-1)
		}
	}
}
