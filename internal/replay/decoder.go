package replay

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// Wire positions of the replay payload. The order is fixed by the file
// format and must never change.
const (
	posVersion = iota
	posID
	posWidth
	posHeight
	posUsernames
	posStars
	posCities
	posCityArmies
	posGenerals
	posMountains
	posMoves
	posAFKs
	posTeams
	posMapTitle
	posNeutrals
	posNeutralArmies
	posSwamps
	posChat
	posPlayerColors
	posLights
	posModifiers
	posObservatories
	posLookouts
	posDeserts

	numPositions
)

// MinMapTitleVersion is the first replay version that records a map title.
const MinMapTitleVersion = 7

var errMissing = errors.New("missing required field")

// Decode decompresses a stored replay blob and decodes it.
func Decode(blob []byte) (*Replay, error) {
	return DecodeWith(LZStringCodec{}, blob)
}

// DecodeWith is Decode with a caller-supplied decompressor.
func DecodeWith(d Decompressor, blob []byte) (*Replay, error) {
	payload, err := d.Decompress(blob)
	if err != nil {
		return nil, err
	}
	return Parse(payload)
}

// Parse decodes an already decompressed positional payload and validates
// the result.
func Parse(payload []byte) (*Replay, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fieldError("payload", -1, err)
	}

	p := &positional{fields: fields}
	r := &Replay{}

	p.required(posVersion, "version", &r.Version)
	p.required(posID, "id", &r.ID)
	p.required(posWidth, "width", &r.Width)
	p.required(posHeight, "height", &r.Height)
	p.required(posUsernames, "usernames", &r.Usernames)

	var stars []*float64
	p.optional(posStars, "stars", &stars)

	p.required(posCities, "cities", &r.Cities)
	p.required(posCityArmies, "city_armies", &r.CityArmies)
	p.required(posGenerals, "generals", &r.Generals)
	p.required(posMountains, "mountains", &r.Mountains)

	var moves [][]json.RawMessage
	p.required(posMoves, "moves", &moves)
	var afks [][]int
	p.required(posAFKs, "afks", &afks)

	p.optional(posTeams, "teams", &r.Teams)
	if r.Version >= MinMapTitleVersion {
		p.optional(posMapTitle, "map_title", &r.MapTitle)
	}
	p.optional(posNeutrals, "neutrals", &r.Neutrals)
	p.optional(posNeutralArmies, "neutral_armies", &r.NeutralArmies)
	p.optional(posSwamps, "swamps", &r.Swamps)
	p.optional(posPlayerColors, "player_colors", &r.PlayerColors)
	p.optional(posModifiers, "modifiers", &r.Modifiers)
	p.optional(posObservatories, "observatories", &r.Observatories)
	p.optional(posLookouts, "lookouts", &r.Lookouts)
	p.optional(posDeserts, "deserts", &r.Deserts)
	if p.err != nil {
		return nil, p.err
	}

	if len(stars) > 0 {
		r.Stars = make([]int, len(stars))
		for i, s := range stars {
			if s != nil {
				r.Stars[i] = int(math.Round(*s))
			}
		}
	}

	r.Moves = make([]Move, 0, len(moves))
	for i, raw := range moves {
		m, err := decodeMove(raw)
		if err != nil {
			return nil, fieldError(fmt.Sprintf("moves[%d]", i), posMoves, err)
		}
		r.Moves = append(r.Moves, m)
	}

	r.AFKs = make([]AFK, 0, len(afks))
	for i, a := range afks {
		if len(a) < 2 {
			return nil, fieldError(fmt.Sprintf("afks[%d]", i), posAFKs,
				fmt.Errorf("%d elements, want 2", len(a)))
		}
		r.AFKs = append(r.AFKs, AFK{PlayerIndex: a[0], Turn: a[1]})
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// positional unpacks wire fields by index, keeping the first error.
type positional struct {
	fields []json.RawMessage
	err    error
}

func (p *positional) has(pos int) bool {
	return pos < len(p.fields) && !isNull(p.fields[pos])
}

func (p *positional) required(pos int, name string, v any) {
	if p.err != nil {
		return
	}
	if !p.has(pos) {
		p.err = fieldError(name, pos, errMissing)
		return
	}
	if err := json.Unmarshal(p.fields[pos], v); err != nil {
		p.err = fieldError(name, pos, err)
	}
}

// optional leaves v untouched when the field is absent or null.
func (p *positional) optional(pos int, name string, v any) {
	if p.err != nil || !p.has(pos) {
		return
	}
	if err := json.Unmarshal(p.fields[pos], v); err != nil {
		p.err = fieldError(name, pos, err)
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeMove accepts [index, start, end, half, turn] and the older
// [index, start, end, turn].
func decodeMove(raw []json.RawMessage) (Move, error) {
	var m Move
	var turn json.RawMessage
	switch len(raw) {
	case 5:
		half, err := decodeFlag(raw[3])
		if err != nil {
			return m, err
		}
		m.IsHalfMove = half
		turn = raw[4]
	case 4:
		turn = raw[3]
	default:
		return m, fmt.Errorf("%d elements, want 4 or 5", len(raw))
	}

	for _, f := range []struct {
		raw json.RawMessage
		dst *int
	}{
		{raw[0], &m.PlayerIndex},
		{raw[1], &m.Start},
		{raw[2], &m.End},
		{turn, &m.Turn},
	} {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return m, err
		}
	}
	return m, nil
}

// decodeFlag reads a half-move marker written either as a bool or as 0/1.
func decodeFlag(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return false, fmt.Errorf("half-move flag %s: %w", raw, err)
	}
	return n != 0, nil
}

// Validate checks the structural invariants the simulator relies on.
func (r *Replay) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return invalid("dimensions", "%dx%d", r.Width, r.Height)
	}
	n := r.NumPlayers()
	if n == 0 {
		return invalid("usernames", "no players")
	}
	if len(r.Generals) != n {
		return invalid("generals", "%d generals for %d players", len(r.Generals), n)
	}
	if len(r.CityArmies) != len(r.Cities) {
		return invalid("city_armies", "%d armies for %d cities", len(r.CityArmies), len(r.Cities))
	}
	if len(r.Neutrals) > 0 && len(r.NeutralArmies) != len(r.Neutrals) {
		return invalid("neutral_armies", "%d armies for %d neutrals", len(r.NeutralArmies), len(r.Neutrals))
	}
	if r.HasTeams() && len(r.Teams) != n {
		return invalid("teams", "%d entries for %d players", len(r.Teams), n)
	}

	size := r.Size()
	for _, list := range []struct {
		name    string
		indices []int
	}{
		{"cities", r.Cities},
		{"generals", r.Generals},
		{"mountains", r.Mountains},
		{"neutrals", r.Neutrals},
		{"swamps", r.Swamps},
		{"observatories", r.Observatories},
		{"lookouts", r.Lookouts},
		{"deserts", r.Deserts},
	} {
		for _, idx := range list.indices {
			if idx < 0 || idx >= size {
				return invalid(list.name, "index %d outside %dx%d map", idx, r.Width, r.Height)
			}
		}
	}

	for i, m := range r.Moves {
		if m.PlayerIndex < 0 || m.PlayerIndex >= n {
			return invalid(fmt.Sprintf("moves[%d]", i), "unknown player %d", m.PlayerIndex)
		}
	}
	for i, a := range r.AFKs {
		if a.PlayerIndex < 0 || a.PlayerIndex >= n {
			return invalid(fmt.Sprintf("afks[%d]", i), "unknown player %d", a.PlayerIndex)
		}
	}
	return nil
}
