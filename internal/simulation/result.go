package simulation

import "github.com/Matttaylor8910/generals-events-sub000/internal/game"

// Outcome tells a legitimate finish apart from a replay that hit the turn cap.
type Outcome string

const (
	OutcomeWin          Outcome = "win"
	OutcomeNotConverged Outcome = "not_converged"
)

// PlayerScore is one row of the final score table.
type PlayerScore struct {
	Name   string `json:"name"`
	Kills  int    `json:"kills"`
	Rank   int    `json:"rank"`
	Points int    `json:"points"`
	// Streak is always false here; streak bonuses belong to the event layer.
	Streak bool `json:"streak"`
}

// Result is what a simulation hands to the scoring collaborators.
type Result struct {
	ReplayID string        `json:"replay_id"`
	Scores   []PlayerScore `json:"scores"` // ordered by rank
	Summary  []string      `json:"summary"`
	Turns    int           `json:"turns"`
	Outcome  Outcome       `json:"outcome"`
}

// Converged reports whether the match ended on its own
func (r *Result) Converged() bool { return r.Outcome == OutcomeWin }

// Winner returns the first-ranked player, or "" when the replay did not converge.
func (r *Result) Winner() string {
	if !r.Converged() || len(r.Scores) == 0 {
		return ""
	}
	return r.Scores[0].Name
}

// Score ranks the final match state. Points are (players - rank) + kills.
func Score(m *game.Match, kills []int) []PlayerScore {
	table := m.Scores()
	n := len(table)
	out := make([]PlayerScore, n)
	for i, s := range table {
		rank := i + 1
		k := 0
		if s.Index < len(kills) {
			k = kills[s.Index]
		}
		out[i] = PlayerScore{
			Name:   m.Players[s.Index],
			Kills:  k,
			Rank:   rank,
			Points: (n - rank) + k,
		}
	}
	return out
}
