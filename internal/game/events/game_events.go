package events

// Event type constants
const (
	TypeMatchStarted      = "match.started"
	TypeMatchEnded        = "match.ended"
	TypeTurnAdvanced      = "turn.advanced"
	TypeGeneralCaptured   = "general.captured"
	TypePlayerEliminated  = "player.eliminated"
	TypePlayerNeutralized = "player.neutralized"
)

// Reasons a player leaves the match
const (
	ReasonCaptured = "captured"
	ReasonQuit     = "quit"
)

// EventMetadata contains additional context for events
type EventMetadata struct {
	// PlayerID associated with the event (if applicable)
	PlayerID int `json:"player_id,omitempty"`
	// Turn number when the event occurred
	Turn int `json:"turn,omitempty"`
}

// MatchStartedEvent is published once a match has been built from a replay
type MatchStartedEvent struct {
	BaseEvent
	ReplayID   string
	NumPlayers int
	MapWidth   int
	MapHeight  int
	Modifiers  string
}

func NewMatchStartedEvent(matchID, replayID string, numPlayers, width, height int, modifiers string) *MatchStartedEvent {
	return &MatchStartedEvent{
		BaseEvent:  newBase(TypeMatchStarted, matchID),
		ReplayID:   replayID,
		NumPlayers: numPlayers,
		MapWidth:   width,
		MapHeight:  height,
		Modifiers:  modifiers,
	}
}

// MatchEndedEvent is published when a simulation stops. Winner is -1 when
// the match did not converge.
type MatchEndedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	Winner    int
	Outcome   string
	FinalTurn int
}

func NewMatchEndedEvent(matchID string, winner int, outcome string, finalTurn int) *MatchEndedEvent {
	return &MatchEndedEvent{
		BaseEvent: newBase(TypeMatchEnded, matchID),
		Metadata:  EventMetadata{PlayerID: winner, Turn: finalTurn},
		Winner:    winner,
		Outcome:   outcome,
		FinalTurn: finalTurn,
	}
}

// TurnAdvancedEvent is published after growth has been applied for a turn
type TurnAdvancedEvent struct {
	BaseEvent
	Metadata     EventMetadata
	TurnNumber   int
	Recruit      bool
	Farm         bool
	AlivePlayers int
}

func NewTurnAdvancedEvent(matchID string, turn int, recruit, farm bool, alive int) *TurnAdvancedEvent {
	return &TurnAdvancedEvent{
		BaseEvent:    newBase(TypeTurnAdvanced, matchID),
		Metadata:     EventMetadata{Turn: turn},
		TurnNumber:   turn,
		Recruit:      recruit,
		Farm:         farm,
		AlivePlayers: alive,
	}
}

// GeneralCapturedEvent is published when a move takes a general tile
type GeneralCapturedEvent struct {
	BaseEvent
	Metadata         EventMetadata
	Capturer         int
	Defeated         int
	Tile             int
	TilesTransferred int
	Leapfrog         bool
}

func NewGeneralCapturedEvent(matchID string, capturer, defeated, tile, transferred int, leapfrog bool, turn int) *GeneralCapturedEvent {
	return &GeneralCapturedEvent{
		BaseEvent:        newBase(TypeGeneralCaptured, matchID),
		Metadata:         EventMetadata{PlayerID: capturer, Turn: turn},
		Capturer:         capturer,
		Defeated:         defeated,
		Tile:             tile,
		TilesTransferred: transferred,
		Leapfrog:         leapfrog,
	}
}

// PlayerEliminatedEvent is the elimination notification: a live server
// forwards it to the player's connection, a replay run only logs it.
// EliminatedBy is -1 when the player quit.
type PlayerEliminatedEvent struct {
	BaseEvent
	Metadata     EventMetadata
	PlayerID     int
	EliminatedBy int
	Reason       string
	AliveLeft    int
}

func NewPlayerEliminatedEvent(matchID string, playerID, eliminatedBy int, reason string, aliveLeft, turn int) *PlayerEliminatedEvent {
	return &PlayerEliminatedEvent{
		BaseEvent:    newBase(TypePlayerEliminated, matchID),
		Metadata:     EventMetadata{PlayerID: playerID, Turn: turn},
		PlayerID:     playerID,
		EliminatedBy: eliminatedBy,
		Reason:       reason,
		AliveLeft:    aliveLeft,
	}
}

// PlayerNeutralizedEvent is published when an abandoned player's land is
// handed to a teammate (Heir >= 0) or left neutral (Heir == -1).
type PlayerNeutralizedEvent struct {
	BaseEvent
	Metadata EventMetadata
	PlayerID int
	Heir     int
	Tiles    int
}

func NewPlayerNeutralizedEvent(matchID string, playerID, heir, tiles, turn int) *PlayerNeutralizedEvent {
	return &PlayerNeutralizedEvent{
		BaseEvent: newBase(TypePlayerNeutralized, matchID),
		Metadata:  EventMetadata{PlayerID: playerID, Turn: turn},
		PlayerID:  playerID,
		Heir:      heir,
		Tiles:     tiles,
	}
}
