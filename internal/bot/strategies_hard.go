package bot

import (
	"context"

	botinternal "cardduel/internal/bot/internal"
)

// HardBot chains plays for as long as it has plays left, starting with
// cards that grant extra plays. Each step is simulated through the engine
// so the plan never overplays or spends the last HP.
type HardBot struct {
	Tuning botinternal.BotTuning
	Rules  []SelectionRule
}

func (b *HardBot) Decide(ctx context.Context, view MatchView) (Decision, error) {
	d := Decision{Plays: []PlannedPlay{}, EndTurn: true}
	sc := newScratch(view)
	phase := phaseOf(view)
	weights := b.Tuning.ForPhase(phase)
	rules := b.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	for sc.self.ExtraPlaysRemaining > 0 {
		if ctx.Err() != nil {
			break
		}
		var candidates []botinternal.ScoredCard
		for _, s := range scoreAll(sc.playable(view), sc.resources(), weights, b.Tuning.LowHPThreshold) {
			if s.Score >= b.Tuning.MinPlayScore {
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			break
		}

		sel := &SelectionContext{
			Candidates:    candidates,
			SelectedIndex: -1,
			Phase:         phase,
			PlaysLeft:     sc.self.ExtraPlaysRemaining,
		}
		reason := ""
		for _, rule := range rules {
			before := sel.SelectedIndex
			rule.Apply(sel)
			if sel.SelectedIndex != before {
				reason = rule.Name()
			}
		}
		pick, ok := sel.Selected()
		if !ok || !sc.play(pick.Card) {
			break
		}
		d.Plays = append(d.Plays, planned(pick.Card, reason))
	}
	return d, nil
}
