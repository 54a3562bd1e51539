package replay

// Move is one recorded player command.
type Move struct {
	PlayerIndex int  `json:"player_index"`
	Start       int  `json:"start"`
	End         int  `json:"end"`
	IsHalfMove  bool `json:"is_half_move"`
	Turn        int  `json:"turn"`
}

// AFK records the turn on which a player abandoned the match.
type AFK struct {
	PlayerIndex int `json:"player_index"`
	Turn        int `json:"turn"`
}

// Replay is a fully decoded match recording. It is never mutated after
// decoding.
type Replay struct {
	Version    int      `json:"version"`
	ID         string   `json:"id"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	Usernames  []string `json:"usernames"`
	Stars      []int    `json:"stars,omitempty"`
	Cities     []int    `json:"cities"`
	CityArmies []int    `json:"city_armies"`
	Generals   []int    `json:"generals"`
	Mountains  []int    `json:"mountains"`
	Moves      []Move   `json:"moves"`
	AFKs       []AFK    `json:"afks"`
	Teams      []int    `json:"teams,omitempty"`

	// Present from MinMapTitleVersion onward.
	MapTitle string `json:"map_title,omitempty"`

	// Optional trailing fields, empty on older replays.
	Neutrals      []int `json:"neutrals,omitempty"`
	NeutralArmies []int `json:"neutral_armies,omitempty"`
	Swamps        []int `json:"swamps,omitempty"`
	PlayerColors  []int `json:"player_colors,omitempty"`
	Modifiers     []int `json:"modifiers,omitempty"`
	Observatories []int `json:"observatories,omitempty"`
	Lookouts      []int `json:"lookouts,omitempty"`
	Deserts       []int `json:"deserts,omitempty"`
}

// NumPlayers returns the number of players in the recording
func (r *Replay) NumPlayers() int { return len(r.Usernames) }

// HasTeams reports whether the match was played in teams
func (r *Replay) HasTeams() bool { return len(r.Teams) > 0 }

// Size returns the number of tiles on the map
func (r *Replay) Size() int { return r.Width * r.Height }
