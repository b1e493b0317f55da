package bot

import (
	"context"
	"fmt"

	botinternal "cardduel/internal/bot/internal"
	"cardduel/internal/domain"
)

// NormalBot plays the single best-scored affordable card for the current
// phase and passes when nothing clears the tuning's minimum score.
type NormalBot struct {
	Tuning botinternal.BotTuning
}

func (b *NormalBot) Decide(_ context.Context, view MatchView) (Decision, error) {
	d := Decision{Plays: []PlannedPlay{}, EndTurn: true}
	sc := newScratch(view)
	phase := phaseOf(view)
	weights := b.Tuning.ForPhase(phase)

	best, ok := bestScored(sc.playable(view), sc.resources(), weights, b.Tuning)
	if !ok {
		return d, nil
	}
	d.Plays = append(d.Plays, planned(best.Card, fmt.Sprintf("%s phase, score %.1f", phase, best.Score)))
	return d, nil
}

func scoreAll(cards []domain.Card, res botinternal.Resources, weights botinternal.PhaseWeights, lowHP int) []botinternal.ScoredCard {
	scored := make([]botinternal.ScoredCard, 0, len(cards))
	for _, c := range cards {
		scored = append(scored, botinternal.ScoredCard{Card: c, Score: botinternal.ScoreCard(c, res, weights, lowHP)})
	}
	return scored
}

// bestScored returns the highest scoring card at or above the minimum.
// Ties keep hand order.
func bestScored(cards []domain.Card, res botinternal.Resources, weights botinternal.PhaseWeights, tuning botinternal.BotTuning) (botinternal.ScoredCard, bool) {
	var best botinternal.ScoredCard
	found := false
	for _, s := range scoreAll(cards, res, weights, tuning.LowHPThreshold) {
		if s.Score < tuning.MinPlayScore {
			continue
		}
		if !found || s.Score > best.Score {
			best, found = s, true
		}
	}
	return best, found
}
