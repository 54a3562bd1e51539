package game

import (
	"fmt"

	"github.com/Matttaylor8910/generals-events-sub000/internal/game/core"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
	"github.com/rs/zerolog"
)

// DeadGeneral marks a player whose general has been captured or abandoned.
const DeadGeneral = -1

// MatchConfig describes a match whose grid has already been laid out.
type MatchConfig struct {
	ID       string
	Grid     *core.Grid
	Players  []string // index-stable for the whole match
	Generals []int    // one entry per player, DeadGeneral when absent
	Cities   []int
	Swamps   []int
	Deserts  []int
	Neutrals []int

	Publisher events.Publisher
	Logger    zerolog.Logger
}

// Match is the per-player bookkeeping layered on top of a Grid. It is
// owned by a single simulation and never shared.
type Match struct {
	ID           string
	Grid         *core.Grid
	Players      []string
	Turn         int
	AlivePlayers int
	Deaths       []int // player indices, in elimination order
	Generals     []int
	Cities       []int
	Swamps       []int
	Deserts      []int
	Neutrals     []int

	dead      []bool
	scores    []Score
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewMatch validates the configuration and computes the initial scores.
func NewMatch(cfg MatchConfig) (*Match, error) {
	if cfg.Grid == nil {
		return nil, fmt.Errorf("new match: %w", core.ErrInvalidDimensions)
	}
	if len(cfg.Players) == 0 {
		return nil, fmt.Errorf("new match: no players: %w", core.ErrInvalidPlayer)
	}
	if len(cfg.Generals) != len(cfg.Players) {
		return nil, fmt.Errorf("new match: %d generals for %d players: %w",
			len(cfg.Generals), len(cfg.Players), core.ErrInvalidPlayer)
	}
	for name, list := range map[string][]int{
		"cities": cfg.Cities, "swamps": cfg.Swamps, "deserts": cfg.Deserts, "neutrals": cfg.Neutrals,
	} {
		for _, idx := range list {
			if !cfg.Grid.InBounds(idx) {
				return nil, fmt.Errorf("new match: %s index %d: %w", name, idx, core.ErrInvalidIndex)
			}
		}
	}
	for p, g := range cfg.Generals {
		if g != DeadGeneral && !cfg.Grid.InBounds(g) {
			return nil, fmt.Errorf("new match: general of player %d at %d: %w", p, g, core.ErrInvalidIndex)
		}
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	m := &Match{
		ID:           cfg.ID,
		Grid:         cfg.Grid,
		Players:      cfg.Players,
		AlivePlayers: len(cfg.Players),
		Generals:     append([]int(nil), cfg.Generals...),
		Cities:       append([]int(nil), cfg.Cities...),
		Swamps:       append([]int(nil), cfg.Swamps...),
		Deserts:      append([]int(nil), cfg.Deserts...),
		Neutrals:     append([]int(nil), cfg.Neutrals...),
		dead:         make([]bool, len(cfg.Players)),
		publisher:    publisher,
		logger:       cfg.Logger.With().Str("component", "Match").Str("match_id", cfg.ID).Logger(),
	}
	m.computeScores()
	return m, nil
}

// NumPlayers returns the number of players the match started with
func (m *Match) NumPlayers() int { return len(m.Players) }

// IsDead reports whether a player has been eliminated or has quit
func (m *Match) IsDead(player int) bool {
	return player >= 0 && player < len(m.dead) && m.dead[player]
}

// GeneralOwnerAt returns the player whose general sits on idx.
func (m *Match) GeneralOwnerAt(idx int) (int, bool) {
	for p, g := range m.Generals {
		if g == idx && g != DeadGeneral {
			return p, true
		}
	}
	return 0, false
}

// IsOver reports whether the match has reached a terminal state. Without
// teams that is at most one living player; with teams it is every living
// player sharing a team.
func (m *Match) IsOver() bool {
	if m.Grid.Teams == nil {
		return m.AlivePlayers <= 1
	}
	first := true
	team := 0
	for p := range m.Players {
		if m.dead[p] {
			continue
		}
		t, ok := m.Grid.TeamOf(p)
		if !ok {
			t = -1 - p
		}
		if first {
			team, first = t, false
			continue
		}
		if t != team {
			return false
		}
	}
	return true
}

// eliminate records a player's first elimination. Later calls for the same
// player are no-ops and return false.
func (m *Match) eliminate(player, by int, reason string) bool {
	if m.dead[player] {
		return false
	}
	m.dead[player] = true
	m.Deaths = append(m.Deaths, player)
	m.AlivePlayers--

	m.logger.Info().
		Int("player_id", player).
		Int("eliminated_by", by).
		Str("reason", reason).
		Int("turn", m.Turn).
		Int("alive_players", m.AlivePlayers).
		Msg("Player eliminated")
	m.publisher.Publish(events.NewPlayerEliminatedEvent(m.ID, player, by, reason, m.AlivePlayers, m.Turn))
	return true
}

func (m *Match) addCity(idx int) {
	for _, c := range m.Cities {
		if c == idx {
			return
		}
	}
	m.Cities = append(m.Cities, idx)
}

// livingTeammate returns the first living player on the same team as player
func (m *Match) livingTeammate(player int) (int, bool) {
	team, ok := m.Grid.TeamOf(player)
	if !ok {
		return 0, false
	}
	for p := range m.Players {
		if p == player || m.dead[p] {
			continue
		}
		if t, ok := m.Grid.TeamOf(p); ok && t == team {
			return p, true
		}
	}
	return 0, false
}
