package domain

import "fmt"

// EndTurn finalizes the active side's turn: the hand is trimmed to the hand
// limit by discarding from its end, the turn counter advances, the active
// side flips and the phase returns to start. It always succeeds.
func EndTurn(match MatchState, player, opponent PlayerState) (MatchState, PlayerState, PlayerState) {
	m := match.Clone()
	p := player.Clone()
	o := opponent.Clone()

	active := &p
	if m.ActivePlayer == SideOpponent {
		active = &o
	}

	if limit := m.Rules.HandLimit; limit >= 0 {
		discarded := 0
		for len(active.Hand) > limit {
			last := active.Hand[len(active.Hand)-1]
			active.Hand = active.Hand[:len(active.Hand)-1]
			active.Discard = append(active.Discard, last)
			discarded++
		}
		if discarded > 0 {
			m.appendLog(fmt.Sprintf("%s discarded %d card(s) down to the hand limit", active.Side.Label(), discarded))
		}
	}

	m.Turn++
	m.ActivePlayer = m.ActivePlayer.Other()
	m.Phase = PhaseStart
	m.TurnBegun = false
	return m, p, o
}

// Concede drops the conceding side to 0 HP and hands the match to the
// other side. It always succeeds.
func Concede(match MatchState, conceding PlayerState) (MatchState, PlayerState) {
	m := match.Clone()
	p := conceding.Clone()

	p.HP = 0
	m.appendLog(fmt.Sprintf("%s conceded", conceding.Side.Label()))
	if !m.Over() {
		m.Winner = conceding.Side.Other()
	}
	return m, p
}

// CheckOutcome decides the winner once a side's HP has fallen to zero or
// below. An already decided match is returned unchanged.
func CheckOutcome(match MatchState, player, opponent PlayerState) MatchState {
	if match.Over() {
		return match
	}
	var winner Side
	switch {
	case player.HP <= 0 && opponent.HP <= 0:
		// The side that ran itself down on its own turn loses.
		winner = match.ActivePlayer.Other()
	case player.HP <= 0:
		winner = SideOpponent
	case opponent.HP <= 0:
		winner = SidePlayer
	default:
		return match
	}
	m := match.Clone()
	m.Winner = winner
	m.appendLog(fmt.Sprintf("%s wins", winner.Label()))
	return m
}
