package replay

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Marshal writes r back into its positional payload form.
func Marshal(r *Replay) ([]byte, error) {
	moves := make([][]int, len(r.Moves))
	for i, m := range r.Moves {
		half := 0
		if m.IsHalfMove {
			half = 1
		}
		moves[i] = []int{m.PlayerIndex, m.Start, m.End, half, m.Turn}
	}
	afks := make([][]int, len(r.AFKs))
	for i, a := range r.AFKs {
		afks[i] = []int{a.PlayerIndex, a.Turn}
	}

	fields := make([]any, numPositions)
	fields[posVersion] = r.Version
	fields[posID] = r.ID
	fields[posWidth] = r.Width
	fields[posHeight] = r.Height
	fields[posUsernames] = orEmpty(r.Usernames)
	if r.Stars != nil {
		fields[posStars] = r.Stars
	}
	fields[posCities] = orEmpty(r.Cities)
	fields[posCityArmies] = orEmpty(r.CityArmies)
	fields[posGenerals] = orEmpty(r.Generals)
	fields[posMountains] = orEmpty(r.Mountains)
	fields[posMoves] = moves
	fields[posAFKs] = afks
	if r.HasTeams() {
		fields[posTeams] = r.Teams
	}
	if r.Version >= MinMapTitleVersion && r.MapTitle != "" {
		fields[posMapTitle] = r.MapTitle
	}
	fields[posNeutrals] = orEmpty(r.Neutrals)
	fields[posNeutralArmies] = orEmpty(r.NeutralArmies)
	fields[posSwamps] = orEmpty(r.Swamps)
	fields[posChat] = []any{}
	fields[posPlayerColors] = orEmpty(r.PlayerColors)
	fields[posLights] = []any{}
	fields[posModifiers] = orEmpty(r.Modifiers)
	fields[posObservatories] = orEmpty(r.Observatories)
	fields[posLookouts] = orEmpty(r.Lookouts)
	fields[posDeserts] = orEmpty(r.Deserts)

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal replay %s: %w", r.ID, err)
	}
	return payload, nil
}

// Encode produces a compressed blob in the stored replay file format.
func Encode(r *Replay) ([]byte, error) {
	payload, err := Marshal(r)
	if err != nil {
		return nil, err
	}
	blob, err := LZStringCodec{}.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("compress replay %s: %w", r.ID, err)
	}
	return blob, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
