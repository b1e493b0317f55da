package bot

import (
	"context"

	"cardduel/internal/domain"
)

// Decision is the opponent's plan for one turn.
type Decision = domain.Decision

// PlannedPlay is one entry of a Decision.
type PlannedPlay = domain.PlannedPlay

// Brain is the interface that all opponent strategies must implement.
// Implementations must not block past ctx.
type Brain interface {
	Decide(ctx context.Context, view MatchView) (Decision, error)
}

// CardView is the public description of a card in a view. Known is false
// when the id did not resolve against the catalog.
type CardView struct {
	ID     string          `json:"id"`
	Title  string          `json:"title,omitempty"`
	Type   domain.CardType `json:"type,omitempty"`
	Effect string          `json:"effect,omitempty"`
	Cost   domain.Cost     `json:"cost"`
	Tags   []string        `json:"tags,omitempty"`
	Known  bool            `json:"-"`
}

// Card rebuilds the engine card the view was made from.
func (c CardView) Card() domain.Card {
	return domain.Card{ID: c.ID, Title: c.Title, Type: c.Type, Effect: c.Effect, Cost: c.Cost, Tags: c.Tags}
}

// SideView is one side of the match as the deciding side sees it. Hand is
// only filled for the deciding side.
type SideView struct {
	HP                  int        `json:"hp"`
	MP                  int        `json:"mp"`
	MaxHP               int        `json:"maxHp"`
	MaxMP               int        `json:"maxMp"`
	Fatigue             int        `json:"fatigue"`
	ExtraPlaysRemaining int        `json:"extraPlaysRemaining"`
	Hand                []CardView `json:"hand,omitempty"`
	HandSize            int        `json:"handSize"`
	DeckSize            int        `json:"deckSize"`
	Champions           []string   `json:"champions"`
}

// MatchView is the serialized match state handed to a Brain.
type MatchView struct {
	Turn         int          `json:"turn"`
	Phase        domain.Phase `json:"phase"`
	ActivePlayer domain.Side  `json:"activePlayer"`
	Rules        domain.Rules `json:"rules"`
	Self         SideView     `json:"self"`
	Opponent     SideView     `json:"opponent"`
	Side         domain.Side  `json:"side"`
}

// NewMatchView builds the view of snap for side. The other side's hand is
// reduced to its size.
func NewMatchView(snap domain.Snapshot, side domain.Side, catalog domain.Catalog) MatchView {
	self := snap.Side(side)
	other := snap.Side(side.Other())

	view := MatchView{
		Turn:         snap.Match.Turn,
		Phase:        snap.Match.Phase,
		ActivePlayer: snap.Match.ActivePlayer,
		Rules:        snap.Match.Rules,
		Self:         sideView(self),
		Opponent:     sideView(other),
		Side:         side,
	}
	view.Self.Hand = make([]CardView, 0, len(self.Hand))
	for _, id := range self.Hand {
		card, ok := catalog.Lookup(id)
		if !ok {
			view.Self.Hand = append(view.Self.Hand, CardView{ID: id})
			continue
		}
		view.Self.Hand = append(view.Self.Hand, CardView{
			ID:     card.ID,
			Title:  card.Title,
			Type:   card.Type,
			Effect: card.Effect,
			Cost:   card.Cost,
			Tags:   append([]string(nil), card.Tags...),
			Known:  true,
		})
	}
	return view
}

func sideView(p domain.PlayerState) SideView {
	champions := append([]string{}, p.Champions...)
	return SideView{
		HP:                  p.HP,
		MP:                  p.MP,
		MaxHP:               p.MaxHP,
		MaxMP:               p.MaxMP,
		Fatigue:             p.Fatigue,
		ExtraPlaysRemaining: p.ExtraPlaysRemaining,
		HandSize:            len(p.Hand),
		DeckSize:            len(p.Deck),
		Champions:           champions,
	}
}
