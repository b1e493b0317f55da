package domain

// StartTurn draws one card for the active side from the end of its deck,
// resets its per-turn plays and moves the match to the main phase.
// Callers must invoke it exactly once per turn boundary.
func StartTurn(match MatchState, active PlayerState) (MatchState, PlayerState) {
	m := match.Clone()
	p := active.Clone()

	if n := len(p.Deck); n > 0 {
		card := p.Deck[n-1]
		p.Deck = p.Deck[:n-1]
		p.Hand = append(p.Hand, card)
	}
	p.ExtraPlaysRemaining = m.Rules.PlayLimitPerTurn
	m.Phase = PhaseMain
	return m, p
}

// Upkeep regenerates MP for the active side, resets its per-turn plays and
// moves the match to the main phase. MP ends at most at the rules' ceiling,
// so a side that started above it drops to the ceiling on its first upkeep.
func Upkeep(match MatchState, active PlayerState, regen int) (MatchState, PlayerState) {
	m := match.Clone()
	p := active.Clone()

	p.MP = restoreCapped(p.MP, regen, m.Rules.MPCeiling)
	p.ExtraPlaysRemaining = m.Rules.PlayLimitPerTurn
	m.Phase = PhaseMain
	return m, p
}

// restoreCapped returns min(value+amount, ceiling).
// A non-positive ceiling means uncapped.
func restoreCapped(value, amount, ceiling int) int {
	value += amount
	if ceiling > 0 && value > ceiling {
		value = ceiling
	}
	return value
}
