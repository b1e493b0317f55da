package app

import "cardduel/internal/domain"

// MatchHeader is the client-facing match state. The seed stays in the
// snapshot: with the deck list it reproduces both shuffles.
type MatchHeader struct {
	ID              string              `json:"id"`
	Turn            int                 `json:"turn"`
	Phase           domain.Phase        `json:"phase"`
	ActivePlayer    domain.Side         `json:"activePlayer"`
	Log             []string            `json:"log"`
	Rules           domain.Rules        `json:"rules"`
	Strategy        domain.Strategy     `json:"strategy,omitempty"`
	OpponentType    domain.OpponentType `json:"opponentType"`
	AIDifficulty    string              `json:"aiDifficulty,omitempty"`
	TimedMatch      bool                `json:"timedMatch"`
	MulliganEnabled bool                `json:"mulliganEnabled"`
	TurnBegun       bool                `json:"turnBegun"`
	Winner          domain.Side         `json:"winner,omitempty"`
}

// NewMatchHeader copies m without its seed.
func NewMatchHeader(m domain.MatchState) MatchHeader {
	return MatchHeader{
		ID:              m.ID,
		Turn:            m.Turn,
		Phase:           m.Phase,
		ActivePlayer:    m.ActivePlayer,
		Log:             append([]string{}, m.Log...),
		Rules:           m.Rules,
		Strategy:        m.Strategy,
		OpponentType:    m.OpponentType,
		AIDifficulty:    m.AIDifficulty,
		TimedMatch:      m.TimedMatch,
		MulliganEnabled: m.MulliganEnabled,
		TurnBegun:       m.TurnBegun,
		Winner:          m.Winner,
	}
}

// OwnSide is the owner's own resources. The deck order is the draw order,
// so only its size is shown.
type OwnSide struct {
	Side                domain.Side `json:"side"`
	HP                  int         `json:"hp"`
	MP                  int         `json:"mp"`
	MaxHP               int         `json:"maxHp"`
	MaxMP               int         `json:"maxMp"`
	Fatigue             int         `json:"fatigue"`
	Hand                []string    `json:"hand"`
	DeckSize            int         `json:"deckSize"`
	Discard             []string    `json:"discard"`
	Champions           []string    `json:"champions"`
	ExtraPlaysRemaining int         `json:"extraPlaysRemaining"`
	MulliganUsed        bool        `json:"mulliganUsed"`
}

// NewOwnSide copies p with its deck reduced to a count.
func NewOwnSide(p domain.PlayerState) OwnSide {
	return OwnSide{
		Side:                p.Side,
		HP:                  p.HP,
		MP:                  p.MP,
		MaxHP:               p.MaxHP,
		MaxMP:               p.MaxMP,
		Fatigue:             p.Fatigue,
		Hand:                append([]string{}, p.Hand...),
		DeckSize:            len(p.Deck),
		Discard:             append([]string{}, p.Discard...),
		Champions:           append([]string{}, p.Champions...),
		ExtraPlaysRemaining: p.ExtraPlaysRemaining,
		MulliganUsed:        p.MulliganUsed,
	}
}

// PlayerView is the owner's view of a snapshot: the opponent's hand and
// both decks are reduced to counts and the seed is left out.
type PlayerView struct {
	Match            MatchHeader `json:"match"`
	Player           OwnSide     `json:"player"`
	OpponentHP       int         `json:"opponent_hp"`
	OpponentMP       int         `json:"opponent_mp"`
	OpponentMaxHP    int         `json:"opponent_max_hp"`
	OpponentMaxMP    int         `json:"opponent_max_mp"`
	OpponentFatigue  int         `json:"opponent_fatigue"`
	OpponentHandSize int         `json:"opponent_hand_size"`
	OpponentDeckSize int         `json:"opponent_deck_size"`
	OpponentDiscard  []string    `json:"opponent_discard"`
	Champions        []string    `json:"opponent_champions"`
}

// NewPlayerView hides the opponent's private state and the owner's draw order.
func NewPlayerView(snap domain.Snapshot) PlayerView {
	o := snap.Opponent
	return PlayerView{
		Match:            NewMatchHeader(snap.Match),
		Player:           NewOwnSide(snap.Player),
		OpponentHP:       o.HP,
		OpponentMP:       o.MP,
		OpponentMaxHP:    o.MaxHP,
		OpponentMaxMP:    o.MaxMP,
		OpponentFatigue:  o.Fatigue,
		OpponentHandSize: len(o.Hand),
		OpponentDeckSize: len(o.Deck),
		OpponentDiscard:  append([]string{}, o.Discard...),
		Champions:        append([]string{}, o.Champions...),
	}
}
