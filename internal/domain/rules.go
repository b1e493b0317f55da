package domain

import "fmt"

const (
	overplayHPPenalty      = 2
	overplayFatiguePenalty = 1
)

// RejectReason explains why a play did not go through.
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectMatchOver    RejectReason = "match_over"
	RejectNotYourTurn  RejectReason = "not_your_turn"
	RejectWrongPhase   RejectReason = "wrong_phase"
	RejectNotInHand    RejectReason = "not_in_hand"
	RejectOverplay     RejectReason = "overplay"
	RejectUnknownCard  RejectReason = "unknown_card"
	RejectUnaffordable RejectReason = "unaffordable"
)

// PlayResult is the outcome of a play attempt. Match and Player always hold
// the state to continue from, whether or not the play succeeded.
type PlayResult struct {
	Success bool
	Reason  RejectReason
	Card    Card
	Match   MatchState
	Player  PlayerState
}

// PlayCard validates and executes playing cardID from actor's hand.
//
// Checks run in order and the first failure short-circuits: active side,
// main phase, card in hand, remaining plays, card definition, cost. Running
// out of plays is punished rather than just rejected: the actor loses 2 HP,
// gains 1 fatigue and the turn is forced to its end, with the card kept in
// hand. Nothing is mutated on any other rejection.
func PlayCard(match MatchState, actor PlayerState, cardID string, catalog Catalog, resolver EffectResolver) PlayResult {
	reject := func(reason RejectReason) PlayResult {
		return PlayResult{Reason: reason, Match: match, Player: actor}
	}

	if match.Over() {
		return reject(RejectMatchOver)
	}
	if match.ActivePlayer != actor.Side {
		return reject(RejectNotYourTurn)
	}
	if match.Phase != PhaseMain {
		return reject(RejectWrongPhase)
	}
	idx := indexOf(actor.Hand, cardID)
	if idx < 0 {
		return reject(RejectNotInHand)
	}

	if actor.ExtraPlaysRemaining <= 0 {
		m := match.Clone()
		p := actor.Clone()
		p.HP -= overplayHPPenalty
		p.Fatigue += overplayFatiguePenalty
		m.Phase = PhaseEnd
		m.appendLog(fmt.Sprintf("%s tried to play beyond the turn limit and is exhausted (-%d HP, +%d fatigue)",
			actor.Side.Label(), overplayHPPenalty, overplayFatiguePenalty))
		return PlayResult{Reason: RejectOverplay, Match: m, Player: p}
	}

	card, ok := catalog.Lookup(cardID)
	if !ok {
		m := match.Clone()
		m.appendLog(fmt.Sprintf("%s cannot play unknown card %s", actor.Side.Label(), cardID))
		return PlayResult{Reason: RejectUnknownCard, Match: m, Player: actor}
	}

	if actor.HP+card.Cost.HP < 0 || actor.MP+card.Cost.MP < 0 {
		m := match.Clone()
		m.appendLog(fmt.Sprintf("%s cannot afford %s", actor.Side.Label(), card.Title))
		return PlayResult{Reason: RejectUnaffordable, Card: card, Match: m, Player: actor}
	}

	m := match.Clone()
	p := actor.Clone()

	p.HP += card.Cost.HP
	p.MP += card.Cost.MP
	p.Fatigue += card.Cost.Fatigue
	p.Hand = removeAt(p.Hand, idx)
	p.Discard = append(p.Discard, cardID)

	if resolver != nil {
		p = resolver.Resolve(card, p)
	}

	p.ExtraPlaysRemaining--
	m.appendLog(fmt.Sprintf("%s played %s", actor.Side.Label(), card.Title))

	return PlayResult{Success: true, Card: card, Match: m, Player: p}
}

// CanAfford reports whether paying the card's cost keeps HP and MP at or
// above zero.
func CanAfford(p PlayerState, card Card) bool {
	return p.HP+card.Cost.HP >= 0 && p.MP+card.Cost.MP >= 0
}
