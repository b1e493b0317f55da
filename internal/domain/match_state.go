package domain

import (
	"fmt"
	"math/rand"
)

// MatchSetup is everything needed to deal a new match.
type MatchSetup struct {
	ID              string
	Profile         Profile
	Deck            Deck
	OpponentType    OpponentType
	AIDifficulty    string
	TimedMatch      bool
	MulliganEnabled bool
	// Seed reproduces the shuffle. Empty means generate one from SeedSource.
	Seed       string
	SeedSource *rand.Rand
	// Rules overrides DefaultRules when non-zero.
	Rules Rules
}

// InitializeMatch shuffles the deck, deals both sides and returns the
// initial snapshot. The opponent receives an identical copy of the
// shuffled deck and the same starting resources as the player.
// A missing deck yields empty hands rather than an error.
func InitializeMatch(setup MatchSetup) Snapshot {
	rules := setup.Rules
	if rules == (Rules{}) {
		rules = DefaultRules()
	}

	seed := setup.Seed
	if seed == "" {
		seed = GenerateSeed(setup.SeedSource)
	}

	shuffled := ShuffleDeck(setup.Deck.Cards, NewRNG(seed))
	stats := CalculatePlayerStats(setup.Profile.Strategy, setup.Profile.KeyStat)

	player := newPlayerState(SidePlayer, stats, rules, shuffled)
	opponent := newPlayerState(SideOpponent, stats, rules, shuffled)

	opponentType := setup.OpponentType
	if opponentType == "" {
		opponentType = OpponentLocalAI
	}

	match := MatchState{
		ID:              setup.ID,
		Turn:            0,
		Phase:           PhaseStart,
		ActivePlayer:    SidePlayer,
		Log:             []string{},
		Rules:           rules,
		Seed:            seed,
		Strategy:        setup.Profile.Strategy,
		OpponentType:    opponentType,
		AIDifficulty:    setup.AIDifficulty,
		TimedMatch:      setup.TimedMatch,
		MulliganEnabled: setup.MulliganEnabled,
	}

	return Snapshot{Match: match, Player: player, Opponent: opponent}
}

func newPlayerState(side Side, stats Stats, rules Rules, shuffled []string) PlayerState {
	deck := cloneIDs(shuffled)
	if deck == nil {
		deck = []string{}
	}
	hand, rest := dealFromFront(deck, rules.StartingHand)
	return PlayerState{
		Side:                side,
		HP:                  stats.HP,
		MP:                  stats.MP,
		MaxHP:               stats.HP,
		MaxMP:               stats.MP,
		Fatigue:             0,
		Hand:                hand,
		Deck:                rest,
		Discard:             []string{},
		Champions:           []string{},
		ExtraPlaysRemaining: rules.PlayLimitPerTurn,
		Flags:               map[string]bool{},
	}
}

// dealFromFront removes up to n cards from the front of deck.
func dealFromFront(deck []string, n int) (hand, rest []string) {
	if n > len(deck) {
		n = len(deck)
	}
	hand = make([]string, n)
	copy(hand, deck[:n])
	rest = make([]string, len(deck)-n)
	copy(rest, deck[n:])
	return hand, rest
}

// CanMulligan reports whether the side may still take its mulligan:
// the match allows it, it is turn 0 before the first draw, and the side
// has not used it.
func CanMulligan(match MatchState, p PlayerState) bool {
	return match.MulliganEnabled &&
		match.Turn == 0 &&
		match.Phase == PhaseStart &&
		!match.TurnBegun &&
		!p.MulliganUsed
}

// Mulligan returns the side's hand to its deck, reshuffles with a seed
// derived from the match seed and deals the same number of cards again.
// It returns ok=false and unchanged state when not allowed.
func Mulligan(match MatchState, p PlayerState) (MatchState, PlayerState, bool) {
	if !CanMulligan(match, p) {
		return match, p, false
	}
	m := match.Clone()
	out := p.Clone()

	pool := append(cloneIDs(out.Hand), out.Deck...)
	shuffled := ShuffleDeck(pool, NewRNG(fmt.Sprintf("%s:mulligan:%s", m.Seed, p.Side)))
	out.Hand, out.Deck = dealFromFront(shuffled, len(p.Hand))
	out.MulliganUsed = true

	m.appendLog(fmt.Sprintf("%s took a mulligan", p.Side.Label()))
	return m, out, true
}
