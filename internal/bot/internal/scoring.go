package internal

import "cardduel/internal/domain"

// PhaseWeights tune card scoring for a specific phase.
type PhaseWeights struct {
	HPWeight        float64
	MPWeight        float64
	FatigueWeight   float64
	ExtraPlayBonus  float64
	MPRestoreWeight float64
	ChampionBonus   float64
	LowHPPenalty    float64
}

// BotTuning defines phase weights and thresholds for a bot difficulty.
type BotTuning struct {
	Opening PhaseWeights
	Mid     PhaseWeights
	End     PhaseWeights
	// MinPlayScore is the lowest score a card may have and still be played.
	MinPlayScore float64
	// LowHPThreshold marks the HP under which LowHPPenalty applies.
	LowHPThreshold int
}

// ForPhase returns the weights that match the supplied phase.
func (t BotTuning) ForPhase(phase GamePhase) PhaseWeights {
	switch phase {
	case PhaseOpening:
		return t.Opening
	case PhaseEnd:
		return t.End
	default:
		return t.Mid
	}
}

// Resources is the acting side's pool before a card is paid for.
type Resources struct {
	HP    int
	MP    int
	MaxMP int
}

// ScoredCard holds a card with its computed score.
type ScoredCard struct {
	Card  domain.Card
	Score float64
}

// ScoreCard evaluates playing card from res. Costs are signed deltas so a
// positive weight rewards gains and penalizes payments alike.
func ScoreCard(card domain.Card, res Resources, weights PhaseWeights, lowHP int) float64 {
	score := weights.HPWeight*float64(card.Cost.HP) +
		weights.MPWeight*float64(card.Cost.MP) -
		weights.FatigueWeight*float64(card.Cost.Fatigue)

	if card.HasTag(domain.TagExtraPlay) {
		score += weights.ExtraPlayBonus
	}
	if domain.RestoresMP(card) {
		after := res.MP + card.Cost.MP
		gain := domain.MPRestoreAmount
		if res.MaxMP > 0 && after+gain > res.MaxMP {
			gain = res.MaxMP - after
		}
		if gain > 0 {
			score += weights.MPRestoreWeight * float64(gain)
		}
	}
	if card.Type == domain.CardTypeChampion {
		score += weights.ChampionBonus
	}
	if res.HP+card.Cost.HP < lowHP {
		score -= weights.LowHPPenalty
	}
	return score
}
