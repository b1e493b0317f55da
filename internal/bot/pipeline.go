package bot

import (
	botinternal "cardduel/internal/bot/internal"
	"cardduel/internal/domain"
)

// SelectionContext holds the state for one step of the hard bot's chain.
type SelectionContext struct {
	Candidates    []botinternal.ScoredCard
	SelectedIndex int
	Phase         botinternal.GamePhase
	PlaysLeft     int
}

// Selected returns the current pick, if any.
func (c *SelectionContext) Selected() (botinternal.ScoredCard, bool) {
	if c.SelectedIndex < 0 || c.SelectedIndex >= len(c.Candidates) {
		return botinternal.ScoredCard{}, false
	}
	return c.Candidates[c.SelectedIndex], true
}

// SelectionRule represents a logic unit that can influence which card is chosen next.
type SelectionRule interface {
	Name() string
	Apply(ctx *SelectionContext)
}

// HighestScoreRule picks the best-scored candidate.
type HighestScoreRule struct{}

func (r *HighestScoreRule) Name() string { return "HighestScore" }

func (r *HighestScoreRule) Apply(ctx *SelectionContext) {
	best := -1
	for i, c := range ctx.Candidates {
		if best < 0 || c.Score > ctx.Candidates[best].Score {
			best = i
		}
	}
	ctx.SelectedIndex = best
}

// FavorExtraPlayRule prefers cards that grant another play while the
// chain still has a play to spend on them.
type FavorExtraPlayRule struct{}

func (r *FavorExtraPlayRule) Name() string { return "FavorExtraPlay" }

func (r *FavorExtraPlayRule) Apply(ctx *SelectionContext) {
	best := -1
	for i, c := range ctx.Candidates {
		if !c.Card.HasTag(domain.TagExtraPlay) {
			continue
		}
		if best < 0 || c.Score > ctx.Candidates[best].Score {
			best = i
		}
	}
	if best >= 0 {
		ctx.SelectedIndex = best
	}
}

// GuardHPRule avoids HP-costing cards in the endgame when another
// candidate is free of HP cost.
type GuardHPRule struct{}

func (r *GuardHPRule) Name() string { return "GuardHP" }

func (r *GuardHPRule) Apply(ctx *SelectionContext) {
	if ctx.Phase != botinternal.PhaseEnd {
		return
	}
	cur, ok := ctx.Selected()
	if !ok || cur.Card.Cost.HP >= 0 {
		return
	}
	best := -1
	for i, c := range ctx.Candidates {
		if c.Card.Cost.HP < 0 {
			continue
		}
		if best < 0 || c.Score > ctx.Candidates[best].Score {
			best = i
		}
	}
	if best >= 0 {
		ctx.SelectedIndex = best
	}
}

// DefaultRules is the rule order used by the hard bot.
func DefaultRules() []SelectionRule {
	return []SelectionRule{&HighestScoreRule{}, &FavorExtraPlayRule{}, &GuardHPRule{}}
}
