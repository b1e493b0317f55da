package app

import "cardduel/internal/domain"

// EventKind identifies emitted match events for host dispatch.
type EventKind string

const (
	EventMatchStarted    EventKind = "match_started"
	EventTurnBegan       EventKind = "turn_began"
	EventCardPlayed      EventKind = "card_played"
	EventPlayRejected    EventKind = "play_rejected"
	EventOverplayPenalty EventKind = "overplay_penalty"
	EventTurnEnded       EventKind = "turn_ended"
	EventMatchEnded      EventKind = "match_ended"
	EventMulligan        EventKind = "mulligan"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // owner ids; empty means broadcast
}

// MatchStartedPayload goes to the owner only. OpponentHandSize is all the
// owner learns about the opponent's deal.
type MatchStartedPayload struct {
	MatchID          string              `json:"match_id"`
	OpponentType     domain.OpponentType `json:"opponent_type"`
	ActivePlayer     domain.Side         `json:"active_player"`
	Player           OwnSide             `json:"player"`
	OpponentHandSize int                 `json:"opponent_hand_size"`
}

type TurnBeganPayload struct {
	Side     domain.Side `json:"side"`
	Turn     int         `json:"turn"`
	Drew     bool        `json:"drew"`
	MP       int         `json:"mp"`
	HandSize int         `json:"hand_size"`
}

type CardPlayedPayload struct {
	Side  domain.Side `json:"side"`
	Card  domain.Card `json:"card"`
	HP    int         `json:"hp"`
	MP    int         `json:"mp"`
	Plays int         `json:"plays"`
}

type PlayRejectedPayload struct {
	Side   domain.Side         `json:"side"`
	CardID string              `json:"card_id"`
	Reason domain.RejectReason `json:"reason"`
}

type OverplayPenaltyPayload struct {
	Side    domain.Side `json:"side"`
	CardID  string      `json:"card_id"`
	HP      int         `json:"hp"`
	Fatigue int         `json:"fatigue"`
}

type TurnEndedPayload struct {
	Side       domain.Side `json:"side"`
	Discarded  []string    `json:"discarded"`
	Turn       int         `json:"turn"`
	NextActive domain.Side `json:"next_active"`
}

type MatchEndedPayload struct {
	Winner domain.Side `json:"winner"`
	Reason string      `json:"reason"`
	Turn   int         `json:"turn"`
}

type MulliganPayload struct {
	Side     domain.Side `json:"side"`
	HandSize int         `json:"hand_size"`
}

// Match end reasons.
const (
	EndReasonKnockout = "knockout"
	EndReasonConcede  = "concede"
)
