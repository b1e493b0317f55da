package domain

import "strings"

const (
	// TagExtraPlay grants one additional play this turn.
	TagExtraPlay = "extra_play:+1"

	mpRestoreMarker = "+3 MP"
	mpRestoreAmount = 3
)

// EffectResolver applies a played card's effects to the acting side after
// its cost has been paid.
type EffectResolver interface {
	Resolve(card Card, actor PlayerState) PlayerState
}

// BasicEffectResolver recognizes a fixed pair of effects by string match:
// effect text containing "+3 MP" sets MP to min(MP+3, MaxMP),
// and the extra_play:+1 tag grants one more play this turn.
type BasicEffectResolver struct{}

// Resolve implements EffectResolver.
func (BasicEffectResolver) Resolve(card Card, actor PlayerState) PlayerState {
	if RestoresMP(card) {
		actor.MP = restoreCapped(actor.MP, mpRestoreAmount, actor.MaxMP)
	}
	if card.HasTag(TagExtraPlay) {
		actor.ExtraPlaysRemaining++
	}
	return actor
}

// RestoresMP reports whether the card's effect text triggers the MP restore.
func RestoresMP(card Card) bool {
	return strings.Contains(card.Effect, mpRestoreMarker)
}

// MPRestoreAmount is the MP granted by a restoring card before capping.
const MPRestoreAmount = mpRestoreAmount

var _ EffectResolver = BasicEffectResolver{}
