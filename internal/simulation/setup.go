package simulation

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Matttaylor8910/generals-events-sub000/internal/game"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/core"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
)

// NewMatchFromReplay lays out the starting map of a replay and wraps it in
// a fresh Match.
func NewMatchFromReplay(r *replay.Replay, matchID string, publisher events.Publisher, logger zerolog.Logger) (*game.Match, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var teams []int
	if r.HasTeams() {
		teams = append(teams, r.Teams...)
	}
	mods := make([]core.Modifier, len(r.Modifiers))
	for i, id := range r.Modifiers {
		mods[i] = core.Modifier(id)
	}

	g, err := core.NewGrid(r.Width, r.Height, teams, core.NewModifierSet(mods...))
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", r.ID, err)
	}

	for _, sentinel := range []struct {
		tile    int
		indices []int
	}{
		{core.TileMountain, r.Mountains},
		{core.TileLookout, r.Lookouts},
		{core.TileObservatory, r.Observatories},
	} {
		for _, idx := range sentinel.indices {
			g.SetTile(idx, sentinel.tile)
		}
	}
	for i, idx := range r.Cities {
		g.SetArmy(idx, r.CityArmies[i])
	}
	for i, idx := range r.Neutrals {
		g.SetArmy(idx, r.NeutralArmies[i])
	}
	for p, idx := range r.Generals {
		g.SetTile(idx, p)
		g.SetArmy(idx, 1)
	}

	return game.NewMatch(game.MatchConfig{
		ID:        matchID,
		Grid:      g,
		Players:   append([]string(nil), r.Usernames...),
		Generals:  r.Generals,
		Cities:    r.Cities,
		Swamps:    r.Swamps,
		Deserts:   r.Deserts,
		Neutrals:  r.Neutrals,
		Publisher: publisher,
		Logger:    logger,
	})
}
