package domain

// LabelPayload is the advertised summary of a match used for listing.
type LabelPayload struct {
	Open         bool         `json:"open"`
	Game         string       `json:"game"`
	Phase        string       `json:"phase"`
	Turn         int          `json:"turn"`
	OpponentType OpponentType `json:"opponent_type,omitempty"`
}

// LabelGame names the game in match labels.
const LabelGame = "cardduel"

// ComputeLabel derives the advertised label from match state. A nil
// match means the lobby is still waiting for its human player.
func ComputeLabel(m *MatchState, humanJoined bool) LabelPayload {
	if m == nil {
		return LabelPayload{Open: !humanJoined, Game: LabelGame, Phase: "lobby"}
	}
	phase := string(m.Phase)
	if m.Over() {
		phase = "ended"
	}
	return LabelPayload{
		Open:         !humanJoined,
		Game:         LabelGame,
		Phase:        phase,
		Turn:         m.Turn,
		OpponentType: m.OpponentType,
	}
}

// HandSizes returns the hand counts of both sides, player first.
func HandSizes(s Snapshot) (player, opponent int) {
	return len(s.Player.Hand), len(s.Opponent.Hand)
}
