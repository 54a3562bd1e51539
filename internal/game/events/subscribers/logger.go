package subscribers

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
)

// LoggerSubscriber logs match events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	logEvent := ls.logger.WithLevel(ls.logLevel).
		Str("event_type", event.Type()).
		Str("match_id", event.MatchID()).
		Time("timestamp", event.Timestamp())

	switch e := event.(type) {
	case *events.MatchStartedEvent:
		logEvent.
			Str("replay_id", e.ReplayID).
			Int("num_players", e.NumPlayers).
			Int("map_width", e.MapWidth).
			Int("map_height", e.MapHeight).
			Str("modifiers", e.Modifiers)

	case *events.MatchEndedEvent:
		logEvent.
			Int("winner", e.Winner).
			Str("outcome", e.Outcome).
			Int("final_turn", e.FinalTurn)

	case *events.TurnAdvancedEvent:
		logEvent.
			Int("turn", e.TurnNumber).
			Bool("recruit", e.Recruit).
			Bool("farm", e.Farm).
			Int("alive_players", e.AlivePlayers)

	case *events.GeneralCapturedEvent:
		logEvent.
			Int("capturer", e.Capturer).
			Int("defeated", e.Defeated).
			Int("tile", e.Tile).
			Int("tiles_transferred", e.TilesTransferred).
			Bool("leapfrog", e.Leapfrog).
			Int("turn", e.Metadata.Turn)

	case *events.PlayerEliminatedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("eliminated_by", e.EliminatedBy).
			Str("reason", e.Reason).
			Int("alive_left", e.AliveLeft).
			Int("turn", e.Metadata.Turn)

	case *events.PlayerNeutralizedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("heir", e.Heir).
			Int("tiles", e.Tiles).
			Int("turn", e.Metadata.Turn)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Match event")
}
