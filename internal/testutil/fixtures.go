package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
)

// ErrBrokenUpstream is returned by StubFetcher for the id "broken".
var ErrBrokenUpstream = errors.New("upstream unavailable")

// CityRushMoves has player 0 take the neutral city at 1, feed it from the
// general at 0 every recruit, and break the general at 2 on turn 8.
func CityRushMoves() []replay.Move {
	return []replay.Move{
		{PlayerIndex: 0, Start: 0, End: 1, Turn: 2},
		{PlayerIndex: 0, Start: 0, End: 1, Turn: 4},
		{PlayerIndex: 0, Start: 0, End: 1, Turn: 6},
		{PlayerIndex: 0, Start: 0, End: 1, Turn: 8},
		{PlayerIndex: 0, Start: 1, End: 2, Turn: 8},
	}
}

// DuelReplay is a 3x1 map: alice at 0, a free city at 1, bob at 2.
// Alice wins on turn 8 (displayed turn 4).
func DuelReplay(id string) *replay.Replay {
	return &replay.Replay{
		Version:    6,
		ID:         id,
		Width:      3,
		Height:     1,
		Usernames:  []string{"alice", "bob"},
		Cities:     []int{1},
		CityArmies: []int{0},
		Generals:   []int{0, 2},
		Moves:      CityRushMoves(),
	}
}

// DuelBlob returns DuelReplay(id) in its compressed wire form.
func DuelBlob(t *testing.T, id string) []byte {
	t.Helper()
	blob, err := replay.Encode(DuelReplay(id))
	require.NoError(t, err)
	return blob
}

// StubFetcher serves blobs by id. The server "moon" is unknown and the id
// "broken" fails like an unreachable bucket.
type StubFetcher map[string][]byte

func (f StubFetcher) Fetch(_ context.Context, server, id string) ([]byte, error) {
	if server == "moon" {
		return nil, replay.ErrUnknownServer
	}
	if id == "broken" {
		return nil, ErrBrokenUpstream
	}
	blob, ok := f[id]
	if !ok {
		return nil, replay.ErrNotFound
	}
	return blob, nil
}
