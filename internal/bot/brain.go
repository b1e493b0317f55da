package bot

import (
	botinternal "cardduel/internal/bot/internal"
	"cardduel/internal/domain"
)

// scratch replays planned plays through the engine on a private copy of
// the deciding side, so a local brain only plans plays that will succeed.
type scratch struct {
	match   domain.MatchState
	self    domain.PlayerState
	catalog domain.Catalog
}

func newScratch(view MatchView) *scratch {
	cards := make([]domain.Card, 0, len(view.Self.Hand))
	hand := make([]string, 0, len(view.Self.Hand))
	for _, c := range view.Self.Hand {
		hand = append(hand, c.ID)
		if c.Known {
			cards = append(cards, c.Card())
		}
	}
	return &scratch{
		match: domain.MatchState{
			Turn:         view.Turn,
			Phase:        domain.PhaseMain,
			ActivePlayer: view.Side,
			Rules:        view.Rules,
		},
		self: domain.PlayerState{
			Side:                view.Side,
			HP:                  view.Self.HP,
			MP:                  view.Self.MP,
			MaxHP:               view.Self.MaxHP,
			MaxMP:               view.Self.MaxMP,
			Fatigue:             view.Self.Fatigue,
			Hand:                hand,
			ExtraPlaysRemaining: view.Self.ExtraPlaysRemaining,
		},
		catalog: domain.Catalog{{ID: "view", Cards: cards}},
	}
}

// canPlay reports whether the card would be accepted without costing the
// side its last HP. Overplays are never allowed.
func (s *scratch) canPlay(card domain.Card) bool {
	if s.self.ExtraPlaysRemaining <= 0 || !s.self.InHand(card.ID) {
		return false
	}
	return domain.CanAfford(s.self, card) && s.self.HP+card.Cost.HP > 0
}

// play commits the card to the scratch state.
func (s *scratch) play(card domain.Card) bool {
	if !s.canPlay(card) {
		return false
	}
	res := domain.PlayCard(s.match, s.self, card.ID, s.catalog, domain.BasicEffectResolver{})
	if !res.Success {
		return false
	}
	s.match, s.self = res.Match, res.Player
	return true
}

func (s *scratch) resources() botinternal.Resources {
	return botinternal.Resources{HP: s.self.HP, MP: s.self.MP, MaxMP: s.self.MaxMP}
}

// playable lists the known hand cards the side can still play, in hand order.
func (s *scratch) playable(view MatchView) []domain.Card {
	var out []domain.Card
	for _, c := range view.Self.Hand {
		if !c.Known {
			continue
		}
		card := c.Card()
		if s.canPlay(card) {
			out = append(out, card)
		}
	}
	return out
}

func phaseOf(view MatchView) botinternal.GamePhase {
	return botinternal.DetectPhase(view.Turn,
		botinternal.Vitals{HP: view.Self.HP, MaxHP: view.Self.MaxHP},
		botinternal.Vitals{HP: view.Opponent.HP, MaxHP: view.Opponent.MaxHP})
}

func planned(card domain.Card, reason string) PlannedPlay {
	return PlannedPlay{CardID: card.ID, Reason: reason}
}
