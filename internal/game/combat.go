package game

import (
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/core"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
)

// Attack moves army from start to end and resolves combat. A non-nil error
// means the move had no effect. On success start always keeps its reserve:
// 1, or half the army rounded up for a half-move.
func (m *Match) Attack(start, end int, isHalfMove bool) error {
	g := m.Grid
	if !g.InBounds(start) || !g.InBounds(end) {
		return core.ErrInvalidIndex
	}
	if !g.IsAdjacent(start, end) {
		return core.ErrNotAdjacent
	}
	if g.IsObstacle(end) {
		return core.ErrObstacle
	}
	army := g.ArmyAt(start)
	if army <= 0 {
		return core.ErrNoArmy
	}

	reserve := 1
	if isHalfMove {
		reserve = (army + 1) / 2
	}
	attacker, defender := g.TileAt(start), g.TileAt(end)

	if g.SameSide(attacker, defender) {
		if attacker == defender && army <= 1 {
			return core.ErrSelfMove
		}
		g.SetArmy(end, g.ArmyAt(end)+army-reserve)
		if defender != attacker {
			// an ally never annexes a general by walking onto it
			if _, isGeneral := m.GeneralOwnerAt(end); !isGeneral {
				g.SetTile(end, attacker)
			}
		}
	} else {
		if army <= 1 {
			return core.ErrInsufficientArmy
		}
		atk := army - reserve
		if def := g.ArmyAt(end); def >= atk {
			g.SetArmy(end, def-atk)
		} else {
			g.SetArmy(end, atk-def)
			g.SetTile(end, attacker)
		}
	}

	g.SetArmy(start, reserve)
	return nil
}

// HandleAttack applies a player's move and, when it takes a general,
// resolves the capture. A returned error marks the move as useless.
func (m *Match) HandleAttack(player, start, end int, isHalfMove bool) error {
	if !m.Grid.InBounds(start) || !m.Grid.InBounds(end) {
		return core.WrapMoveError(player, start, end, core.ErrInvalidIndex)
	}
	if m.Grid.TileAt(start) != player {
		return core.WrapMoveError(player, start, end, core.ErrNotOwned)
	}

	before := m.Grid.TileAt(end)
	if err := m.Attack(start, end, isHalfMove); err != nil {
		m.logger.Debug().
			Int("player_id", player).
			Int("start", start).
			Int("end", end).
			Bool("half", isHalfMove).
			Int("turn", m.Turn).
			Err(err).
			Msg("Useless move")
		return core.WrapMoveError(player, start, end, err)
	}

	after := m.Grid.TileAt(end)
	if after != before {
		if owner, ok := m.GeneralOwnerAt(end); ok && owner == before {
			m.captureGeneral(after, before, end)
		}
	}
	return nil
}

// captureGeneral hands the defeated player's land to the capturer at half
// strength and retires the defeated general.
func (m *Match) captureGeneral(capturer, defeated, pos int) {
	transferred := m.Grid.ReplaceAll(defeated, capturer, 0.5)

	leapfrog := m.Grid.Modifiers.Has(core.ModifierLeapfrog) && m.Generals[capturer] != DeadGeneral
	if leapfrog {
		m.addCity(m.Generals[capturer])
		m.Generals[capturer] = pos
	} else {
		m.addCity(pos)
	}
	m.Generals[defeated] = DeadGeneral

	m.logger.Info().
		Int("capturer", capturer).
		Int("defeated", defeated).
		Int("tile", pos).
		Int("tiles_transferred", transferred).
		Bool("leapfrog", leapfrog).
		Int("turn", m.Turn).
		Msg("General captured")
	m.publisher.Publish(events.NewGeneralCapturedEvent(m.ID, capturer, defeated, pos, transferred, leapfrog, m.Turn))

	m.eliminate(defeated, capturer, events.ReasonCaptured)
}

// HandleAFK processes a recorded abandonment. A living player is marked
// dead and their land left in place; a player who is already dead has
// their remaining land handed to a living teammate, or neutralized, and
// their general turned into a city.
func (m *Match) HandleAFK(player int) error {
	if player < 0 || player >= len(m.Players) {
		return core.ErrInvalidPlayer
	}
	if m.eliminate(player, -1, events.ReasonQuit) {
		return nil
	}

	heir := core.TileEmpty
	if mate, ok := m.livingTeammate(player); ok {
		heir = mate
	}
	tiles := m.Grid.ReplaceAll(player, heir, 1)
	if g := m.Generals[player]; g != DeadGeneral {
		m.addCity(g)
		m.Generals[player] = DeadGeneral
	}

	// heir is TileEmpty (-1) when the land went neutral
	m.publisher.Publish(events.NewPlayerNeutralizedEvent(m.ID, player, heir, tiles, m.Turn))
	return nil
}
