package domain

// PlannedPlay is one card an opponent intends to play, in order.
type PlannedPlay struct {
	CardID string `json:"cardId"`
	Reason string `json:"reason,omitempty"`
}

// Decision is the opponent's plan for its turn.
type Decision struct {
	Plays []PlannedPlay `json:"plays"`
	// EndTurn is reported by the brain; the controller ends the turn either way.
	EndTurn bool `json:"endTurn"`
}

// DefaultDecision plays nothing and ends the turn.
func DefaultDecision() Decision {
	return Decision{Plays: []PlannedPlay{}, EndTurn: true}
}
