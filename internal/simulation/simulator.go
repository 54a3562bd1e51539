package simulation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Matttaylor8910/generals-events-sub000/internal/game"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/core"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
)

// DefaultMaxTurns bounds a simulation that never reaches a terminal state.
const DefaultMaxTurns = 2000

// Config controls a Simulator. A nil Logger uses the global logger and a nil
// Publisher drops events.
type Config struct {
	MaxTurns  int
	Logger    *zerolog.Logger
	Publisher events.Publisher
}

// Simulator replays decoded records. It holds no per-match state, so one
// Simulator may run many replays concurrently.
type Simulator struct {
	maxTurns  int
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewSimulator(cfg Config) *Simulator {
	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Simulator{
		maxTurns:  maxTurns,
		publisher: publisher,
		logger:    logger.With().Str("component", "Simulator").Logger(),
	}
}

// Simulate runs r with the default configuration.
func Simulate(r *replay.Replay) (*Result, error) {
	return NewSimulator(Config{}).Run(r)
}

// Run replays r to completion or to the turn cap. Reaching the cap is not an
// error; it is reported through the result's Outcome.
func (s *Simulator) Run(r *replay.Replay) (*Result, error) {
	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Str("replay_id", r.ID).Logger()

	m, err := NewMatchFromReplay(r, runID, s.publisher, logger)
	if err != nil {
		return nil, fmt.Errorf("simulate replay %s: %w", r.ID, err)
	}
	s.publisher.Publish(events.NewMatchStartedEvent(runID, r.ID, m.NumPlayers(), r.Width, r.Height, m.Grid.Modifiers.String()))
	logger.Debug().
		Int("players", m.NumPlayers()).
		Int("width", r.Width).
		Int("height", r.Height).
		Int("moves", len(r.Moves)).
		Str("modifiers", m.Grid.Modifiers.String()).
		Msg("Simulation started")

	run := newRun(m)
	moveIdx, afkIdx := 0, 0
	for !m.IsOver() && m.Turn < s.maxTurns {
		for moveIdx < len(r.Moves) && r.Moves[moveIdx].Turn <= m.Turn {
			mv := r.Moves[moveIdx]
			moveIdx++
			if err := m.HandleAttack(mv.PlayerIndex, mv.Start, mv.End, mv.IsHalfMove); err != nil {
				continue
			}
			run.recordKills()
		}
		for afkIdx < len(r.AFKs) && r.AFKs[afkIdx].Turn <= m.Turn {
			run.recordAFK(r.AFKs[afkIdx].PlayerIndex)
			afkIdx++
		}
		m.AdvanceTurn()
	}

	outcome := OutcomeWin
	winner := -1
	if m.IsOver() {
		run.courtesyKill()
		if table := m.Scores(); len(table) > 0 {
			winner = table[0].Index
			run.summary = append(run.summary, fmt.Sprintf("%s wins", m.Players[winner]))
		}
	} else {
		outcome = OutcomeNotConverged
		logger.Warn().
			Int("turn", m.Turn).
			Int("max_turns", s.maxTurns).
			Int("alive_players", m.AlivePlayers).
			Msg("Simulation did not converge")
	}
	s.publisher.Publish(events.NewMatchEndedEvent(runID, winner, string(outcome), m.Turn))

	result := &Result{
		ReplayID: r.ID,
		Scores:   Score(m, run.kills),
		Summary:  run.summary,
		Turns:    m.Turn / 2,
		Outcome:  outcome,
	}
	logger.Info().
		Str("outcome", string(outcome)).
		Int("turns", result.Turns).
		Str("winner", result.Winner()).
		Msg("Simulation finished")
	return result, nil
}

// run tracks what the summary and kill tallies need across turns.
type run struct {
	m          *game.Match
	generals   []int // snapshot of m.Generals after the last diff
	kills      []int
	summary    []string
	afkSeen    []bool
	capturedBy []int // -1 until the player's general is taken by another player
}

func newRun(m *game.Match) *run {
	n := m.NumPlayers()
	capturedBy := make([]int, n)
	for i := range capturedBy {
		capturedBy[i] = -1
	}
	return &run{
		m:          m,
		generals:   append([]int(nil), m.Generals...),
		kills:      make([]int, n),
		summary:    []string{},
		afkSeen:    make([]bool, n),
		capturedBy: capturedBy,
	}
}

// recordKills diffs the general positions against the last snapshot. A
// general that disappeared after a move was taken by whoever owns its tile.
func (r *run) recordKills() {
	for p, before := range r.generals {
		if before == game.DeadGeneral || r.m.Generals[p] != game.DeadGeneral {
			continue
		}
		killer := r.m.Grid.TileAt(before)
		if core.IsOwned(killer) && killer < len(r.kills) && killer != p {
			r.kills[killer]++
			r.capturedBy[p] = killer
			r.summary = append(r.summary, fmt.Sprintf("%s killed %s on turn %d",
				r.m.Players[killer], r.m.Players[p], r.m.Turn/2))
		}
	}
	copy(r.generals, r.m.Generals)
}

// recordAFK applies an abandonment. The first one for a player is the quit;
// a later one is their abandoned general turning into a city.
func (r *run) recordAFK(player int) {
	if err := r.m.HandleAFK(player); err != nil {
		return
	}
	name := r.m.Players[player]
	if !r.afkSeen[player] {
		r.afkSeen[player] = true
		r.summary = append(r.summary, fmt.Sprintf("%s quit on turn %d", name, r.m.Turn/2))
	} else {
		r.summary = append(r.summary, fmt.Sprintf("%s's general became a city on turn %d", name, r.m.Turn/2))
	}
	copy(r.generals, r.m.Generals)
}

// courtesyKill credits the winner with the kill they would have earned on a
// runner-up who abandoned the match rather than being captured.
func (r *run) courtesyKill() {
	table := r.m.Scores()
	if len(table) < 2 {
		return
	}
	first, second := table[0].Index, table[1].Index
	if r.afkSeen[second] && r.capturedBy[second] == -1 {
		r.kills[first]++
	}
}
