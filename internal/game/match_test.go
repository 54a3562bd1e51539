package game

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matttaylor8910/generals-events-sub000/internal/game/core"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
)

// newTestMatch builds a w x h match with one general per entry of generals,
// each owned by its player with the given army.
func newTestMatch(t *testing.T, w, h int, teams []int, mods core.ModifierSet, generals []int, armies []int) *Match {
	t.Helper()
	g, err := core.NewGrid(w, h, teams, mods)
	require.NoError(t, err)

	players := make([]string, len(generals))
	for p, idx := range generals {
		players[p] = string(rune('A' + p))
		g.SetTile(idx, p)
		g.SetArmy(idx, armies[p])
	}

	m, err := NewMatch(MatchConfig{
		ID:       "test",
		Grid:     g,
		Players:  players,
		Generals: generals,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return m
}

func own(m *Match, idx, player, army int) {
	m.Grid.SetTile(idx, player)
	m.Grid.SetArmy(idx, army)
}

func TestNewMatch_Validation(t *testing.T) {
	g, err := core.NewGrid(3, 3, nil, 0)
	require.NoError(t, err)

	_, err = NewMatch(MatchConfig{Grid: g, Players: []string{"a", "b"}, Generals: []int{0}})
	assert.ErrorIs(t, err, core.ErrInvalidPlayer)

	_, err = NewMatch(MatchConfig{Grid: g, Players: []string{"a"}, Generals: []int{9}})
	assert.ErrorIs(t, err, core.ErrInvalidIndex)

	_, err = NewMatch(MatchConfig{Grid: g, Players: []string{"a"}, Generals: []int{0}, Cities: []int{-2}})
	assert.ErrorIs(t, err, core.ErrInvalidIndex)

	_, err = NewMatch(MatchConfig{Players: []string{"a"}, Generals: []int{0}})
	assert.Error(t, err)

	m, err := NewMatch(MatchConfig{Grid: g, Players: []string{"a", "b"}, Generals: []int{0, DeadGeneral}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.AlivePlayers)
	assert.Equal(t, 0, m.Turn)
}

func TestAttack_ReserveAlwaysLeftBehind(t *testing.T) {
	tests := []struct {
		name        string
		startArmy   int
		endOwner    int
		endArmy     int
		half        bool
		wantReserve int
		wantEnd     int
		wantOwner   int
	}{
		{"full move onto own tile", 10, 0, 5, false, 1, 14, 0},
		{"half move onto own tile", 10, 0, 5, true, 5, 10, 0},
		{"half move odd army rounds reserve up", 7, 0, 0, true, 4, 3, 0},
		{"enemy takeover", 10, 1, 3, false, 1, 6, 0},
		{"enemy non-takeover", 5, 1, 8, false, 1, 4, 1},
		{"enemy exact tie keeps defender", 5, 1, 4, false, 1, 0, 1},
		{"empty tile takeover", 3, core.TileEmpty, 0, false, 1, 2, 0},
		{"neutral city holds", 10, core.TileEmpty, 40, false, 1, 31, core.TileEmpty},
		{"half move takeover", 9, 1, 2, true, 5, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatch(t, 5, 5, nil, 0, []int{0, 24}, []int{1, 1})
			start, end := 11, 12
			own(m, start, 0, tt.startArmy)
			m.Grid.SetTile(end, tt.endOwner)
			m.Grid.SetArmy(end, tt.endArmy)

			require.NoError(t, m.Attack(start, end, tt.half))

			assert.Equal(t, tt.wantReserve, m.Grid.ArmyAt(start), "reserve")
			assert.Equal(t, tt.wantEnd, m.Grid.ArmyAt(end), "end army")
			assert.Equal(t, tt.wantOwner, m.Grid.TileAt(end), "end owner")
			assert.GreaterOrEqual(t, m.Grid.ArmyAt(end), 0)
		})
	}
}

func TestAttack_Preconditions(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, 0, []int{0, 24}, []int{1, 1})
	own(m, 11, 0, 5)
	own(m, 10, 0, 1)
	own(m, 13, 1, 1)
	own(m, 18, 0, 0)
	m.Grid.SetTile(16, core.TileMountain)
	m.Grid.SetTile(6, core.TileObservatory)

	tests := []struct {
		name       string
		start, end int
		want       error
	}{
		{"start out of bounds", -1, 0, core.ErrInvalidIndex},
		{"end out of bounds", 24, 25, core.ErrInvalidIndex},
		{"not adjacent", 11, 13, core.ErrNotAdjacent},
		{"diagonal", 11, 17, core.ErrNotAdjacent},
		{"mountain", 11, 16, core.ErrObstacle},
		{"observatory", 11, 6, core.ErrObstacle},
		{"zero army", 18, 17, core.ErrNoArmy},
		{"single army into enemy", 10, 5, core.ErrInsufficientArmy},
		{"single army onto own tile", 10, 11, core.ErrSelfMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := m.Grid.ArmyAt(11)
			assert.ErrorIs(t, m.Attack(tt.start, tt.end, false), tt.want)
			assert.Equal(t, before, m.Grid.ArmyAt(11), "failed attack has no effect")
		})
	}
}

func TestAttack_Allies(t *testing.T) {
	m := newTestMatch(t, 5, 5, []int{0, 0, 1}, 0, []int{0, 4, 24}, []int{1, 1, 1})
	own(m, 11, 0, 6)
	own(m, 12, 1, 2)

	require.NoError(t, m.Attack(11, 12, false))
	assert.Equal(t, 1, m.Grid.ArmyAt(11))
	assert.Equal(t, 7, m.Grid.ArmyAt(12))
	assert.Equal(t, 0, m.Grid.TileAt(12), "ally tile changes hands")

	// Walking onto an ally's general reinforces it without annexing.
	own(m, 3, 0, 4)
	require.NoError(t, m.Attack(3, 4, false))
	assert.Equal(t, 1, m.Grid.TileAt(4))
	assert.Equal(t, 4, m.Grid.ArmyAt(4))

	// A single army may still step onto an ally tile.
	own(m, 13, 1, 3)
	own(m, 14, 0, 1)
	require.NoError(t, m.Attack(14, 13, false))
	assert.Equal(t, 0, m.Grid.TileAt(13))
	assert.Equal(t, 3, m.Grid.ArmyAt(13))
}

func TestHandleAttack_CaptureOneVsOne(t *testing.T) {
	m := newTestMatch(t, 4, 3, nil, 0, []int{5, 6}, []int{5, 1})
	bus := events.NewEventBus(zerolog.Nop())
	var eliminated []*events.PlayerEliminatedEvent
	bus.SubscribeFunc(events.TypePlayerEliminated, func(e events.Event) {
		eliminated = append(eliminated, e.(*events.PlayerEliminatedEvent))
	})
	m.publisher = bus

	require.NoError(t, m.HandleAttack(0, 5, 6, false))

	assert.Equal(t, 0, m.Grid.TileAt(6))
	assert.Equal(t, 3, m.Grid.ArmyAt(6))
	assert.Equal(t, []int{1}, m.Deaths)
	assert.Equal(t, 1, m.AlivePlayers)
	assert.Contains(t, m.Cities, 6)
	assert.Equal(t, DeadGeneral, m.Generals[1])
	assert.Equal(t, 5, m.Generals[0])
	assert.True(t, m.IsOver())

	require.Len(t, eliminated, 1)
	assert.Equal(t, 1, eliminated[0].PlayerID)
	assert.Equal(t, 0, eliminated[0].EliminatedBy)
	assert.Equal(t, events.ReasonCaptured, eliminated[0].Reason)
}

func TestHandleAttack_CaptureTransfersHalvedLand(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, 0, []int{0, 12, 24}, []int{1, 1, 1})
	own(m, 11, 0, 10)
	own(m, 13, 1, 9)
	own(m, 7, 1, 4)

	require.NoError(t, m.HandleAttack(0, 11, 12, false))

	assert.Equal(t, 0, m.Grid.TileAt(13))
	assert.Equal(t, 5, m.Grid.ArmyAt(13), "9 * 0.5 rounds to 5")
	assert.Equal(t, 0, m.Grid.TileAt(7))
	assert.Equal(t, 2, m.Grid.ArmyAt(7))
	assert.Equal(t, 8, m.Grid.ArmyAt(12))
	assert.Equal(t, 2, m.AlivePlayers)
	assert.False(t, m.IsOver())
}

func TestHandleAttack_Leapfrog(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, core.NewModifierSet(core.ModifierLeapfrog), []int{10, 12, 24}, []int{1, 1, 1})
	own(m, 11, 0, 10)

	require.NoError(t, m.HandleAttack(0, 11, 12, false))

	assert.Equal(t, 12, m.Generals[0], "capturer's general moves onto the captured tile")
	assert.Equal(t, DeadGeneral, m.Generals[1])
	assert.Contains(t, m.Cities, 10, "old general becomes a city")
	assert.NotContains(t, m.Cities, 12)
}

func TestHandleAttack_Useless(t *testing.T) {
	m := newTestMatch(t, 4, 3, nil, 0, []int{5, 6}, []int{5, 1})

	err := m.HandleAttack(1, 5, 4, false)
	assert.ErrorIs(t, err, core.ErrNotOwned)
	var moveErr *core.MoveError
	require.ErrorAs(t, err, &moveErr)
	assert.Equal(t, 1, moveErr.Player)

	assert.ErrorIs(t, m.HandleAttack(0, 5, 7, false), core.ErrNotAdjacent)
	assert.ErrorIs(t, m.HandleAttack(0, 5, 99, false), core.ErrInvalidIndex)
	assert.Equal(t, 5, m.Grid.ArmyAt(5))
}

func TestAdvanceTurn_Growth(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, 0, []int{0, 24}, []int{1, 1})
	own(m, 6, 0, 10)
	m.Cities = []int{6, 12}
	m.Grid.SetArmy(12, 40) // neutral city
	own(m, 7, 0, 3)
	m.Deserts = []int{7}
	own(m, 8, 1, 5)

	m.AdvanceTurn()
	assert.Equal(t, 1, m.Turn)
	assert.Equal(t, 1, m.Grid.ArmyAt(0), "no growth on odd turns")

	m.AdvanceTurn()
	assert.Equal(t, 2, m.Grid.ArmyAt(0), "general recruits")
	assert.Equal(t, 11, m.Grid.ArmyAt(6), "owned city recruits")
	assert.Equal(t, 40, m.Grid.ArmyAt(12), "neutral city does not")
	assert.Equal(t, 3, m.Grid.ArmyAt(7))

	for m.Turn < FarmInterval {
		m.AdvanceTurn()
	}
	assert.Equal(t, 26+1, m.Grid.ArmyAt(0), "25 recruits plus one farm")
	assert.Equal(t, 3, m.Grid.ArmyAt(7), "deserts do not farm")
	assert.Equal(t, 6, m.Grid.ArmyAt(8), "plain land farms")
}

func TestAdvanceTurn_SwampDecaysToEmpty(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, 0, []int{0, 24}, []int{1, 1})
	own(m, 6, 0, 1)
	m.Swamps = []int{6, 7}

	m.AdvanceTurn()
	m.AdvanceTurn()

	assert.Equal(t, core.TileEmpty, m.Grid.TileAt(6))
	assert.Equal(t, 0, m.Grid.ArmyAt(6))
	assert.Equal(t, core.TileEmpty, m.Grid.TileAt(7), "unowned swamp is left alone")
}

func TestScores_Ordering(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, 0, []int{0, 4, 20, 24}, []int{4, 5, 9, 1})
	own(m, 1, 0, 1)

	require.NoError(t, m.HandleAFK(3))
	require.NoError(t, m.HandleAFK(2))
	m.RefreshScores()

	scores := m.Scores()
	require.Len(t, scores, 4)
	assert.Equal(t, 0, scores[0].Index, "equal army, more land wins")
	assert.Equal(t, 5, scores[0].Total)
	assert.Equal(t, 2, scores[0].Tiles)
	assert.Equal(t, 1, scores[1].Index)
	assert.Equal(t, 2, scores[2].Index, "most recent death ranks first among the dead")
	assert.True(t, scores[2].Dead)
	assert.Equal(t, 3, scores[3].Index)
}

func TestHandleAFK(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, 0, []int{0, 12, 24}, []int{1, 4, 1})
	own(m, 13, 1, 6)

	require.NoError(t, m.HandleAFK(1))
	assert.Equal(t, []int{1}, m.Deaths)
	assert.Equal(t, 2, m.AlivePlayers)
	assert.Equal(t, 1, m.Grid.TileAt(13), "land stays put on the first AFK")
	assert.Equal(t, 12, m.Generals[1])

	require.NoError(t, m.HandleAFK(1))
	assert.Equal(t, []int{1}, m.Deaths, "no second death")
	assert.Equal(t, 2, m.AlivePlayers)
	assert.Equal(t, core.TileEmpty, m.Grid.TileAt(13))
	assert.Equal(t, 6, m.Grid.ArmyAt(13))
	assert.Equal(t, core.TileEmpty, m.Grid.TileAt(12))
	assert.Contains(t, m.Cities, 12)
	assert.Equal(t, DeadGeneral, m.Generals[1])

	assert.ErrorIs(t, m.HandleAFK(7), core.ErrInvalidPlayer)
}

func TestHandleAFK_TeammateInherits(t *testing.T) {
	m := newTestMatch(t, 5, 5, []int{0, 0, 1}, 0, []int{0, 12, 24}, []int{1, 4, 1})
	own(m, 13, 1, 6)

	require.NoError(t, m.HandleAFK(1))
	require.NoError(t, m.HandleAFK(1))

	assert.Equal(t, 0, m.Grid.TileAt(13))
	assert.Equal(t, 0, m.Grid.TileAt(12))
	assert.Contains(t, m.Cities, 12)
}

func TestIsOver_Teams(t *testing.T) {
	m := newTestMatch(t, 5, 5, []int{0, 1, 0, 1}, 0, []int{0, 4, 20, 24}, []int{1, 1, 1, 1})
	assert.False(t, m.IsOver())

	require.NoError(t, m.HandleAFK(1))
	assert.False(t, m.IsOver(), "one member of team 1 is still alive")

	require.NoError(t, m.HandleAFK(3))
	assert.True(t, m.IsOver())
	assert.Equal(t, 2, m.AlivePlayers)
}

func TestIsOver_AlivePlayersNonIncreasing(t *testing.T) {
	m := newTestMatch(t, 5, 5, nil, 0, []int{0, 12, 24}, []int{1, 1, 1})
	own(m, 11, 0, 10)
	prev := m.AlivePlayers

	steps := []func(){
		func() { _ = m.HandleAFK(2) },
		func() { _ = m.HandleAFK(2) },
		func() { _ = m.HandleAttack(0, 11, 12, false) },
		func() { _ = m.HandleAFK(1) },
	}
	for _, step := range steps {
		deaths := len(m.Deaths)
		step()
		assert.LessOrEqual(t, m.AlivePlayers, prev)
		assert.Equal(t, prev-(len(m.Deaths)-deaths), m.AlivePlayers)
		prev = m.AlivePlayers
	}
	assert.Equal(t, []int{2, 1}, m.Deaths)
	assert.True(t, m.IsOver())
}
