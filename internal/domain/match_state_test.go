package domain

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestInitializeMatchExampleScenario(t *testing.T) {
	snap := InitializeMatch(MatchSetup{
		ID:      "m1",
		Profile: Profile{Name: "Ada", Strategy: StrategyBalanced, KeyStat: KeyStatIntelligence},
		Deck:    numberedDeck(30),
		Seed:    "ABCDEFGHIJKLMNOP",
	})

	if snap.Player.HP != 28 || snap.Player.MP != 14 {
		t.Fatalf("player stats = %d/%d, want 28/14", snap.Player.HP, snap.Player.MP)
	}
	wantHand := []string{"c2", "c3", "c1", "c4", "c19"}
	if !reflect.DeepEqual(snap.Player.Hand, wantHand) {
		t.Fatalf("player hand = %v, want %v", snap.Player.Hand, wantHand)
	}
	wantDeck := []string{
		"c15", "c10", "c25", "c9", "c7", "c11", "c30", "c27", "c29", "c18", "c14", "c21", "c22",
		"c24", "c23", "c8", "c17", "c20", "c6", "c28", "c12", "c13", "c26", "c16", "c5",
	}
	if !reflect.DeepEqual(snap.Player.Deck, wantDeck) {
		t.Fatalf("player deck = %v, want %v", snap.Player.Deck, wantDeck)
	}

	// The opponent mirrors the player.
	if !reflect.DeepEqual(snap.Opponent.Hand, snap.Player.Hand) || !reflect.DeepEqual(snap.Opponent.Deck, snap.Player.Deck) {
		t.Fatalf("opponent deal differs from player deal")
	}
	if snap.Opponent.HP != 28 || snap.Opponent.MP != 14 {
		t.Fatalf("opponent stats = %d/%d, want 28/14", snap.Opponent.HP, snap.Opponent.MP)
	}

	m := snap.Match
	if m.Turn != 0 || m.Phase != PhaseStart || m.ActivePlayer != SidePlayer {
		t.Fatalf("unexpected match header: %+v", m)
	}
	if m.Seed != "ABCDEFGHIJKLMNOP" {
		t.Fatalf("seed = %q", m.Seed)
	}
	if m.Rules.HandLimit != 7 || m.Rules.ChampionSlots != 3 || m.Rules.PlayLimitPerTurn != 1 {
		t.Fatalf("rules = %+v", m.Rules)
	}
	if len(m.Log) != 0 {
		t.Fatalf("log should start empty: %v", m.Log)
	}
}

func TestInitializeMatchConservesCards(t *testing.T) {
	deck := numberedDeck(10)
	snap := InitializeMatch(MatchSetup{
		Profile: Profile{Strategy: StrategyDefensive, KeyStat: KeyStatCharisma},
		Deck:    deck,
		Seed:    "ten",
	})

	for _, side := range []PlayerState{snap.Player, snap.Opponent} {
		if len(side.Hand) != 5 || len(side.Deck) != 5 {
			t.Fatalf("%s hand/deck = %d/%d, want 5/5", side.Side, len(side.Hand), len(side.Deck))
		}
		all := append(append(append([]string{}, side.Hand...), side.Deck...), side.Discard...)
		sort.Strings(all)
		want := append([]string{}, deck.Cards...)
		sort.Strings(want)
		if !reflect.DeepEqual(all, want) {
			t.Fatalf("%s cards = %v, want %v", side.Side, all, want)
		}
		if side.Fatigue != 0 || len(side.Discard) != 0 || len(side.Champions) != 0 || side.ExtraPlaysRemaining != 1 {
			t.Fatalf("%s not freshly initialized: %+v", side.Side, side)
		}
	}
	if !reflect.DeepEqual(deck.Cards, numberedDeck(10).Cards) {
		t.Fatalf("input deck mutated: %v", deck.Cards)
	}
}

func TestInitializeMatchGeneratesSeed(t *testing.T) {
	snap := InitializeMatch(MatchSetup{
		Profile:    Profile{Strategy: StrategyAggressive, KeyStat: KeyStatStrength},
		Deck:       numberedDeck(30),
		SeedSource: rand.New(rand.NewSource(1)),
	})
	if len(snap.Match.Seed) != 16 {
		t.Fatalf("generated seed = %q", snap.Match.Seed)
	}
	again := InitializeMatch(MatchSetup{
		Profile: Profile{Strategy: StrategyAggressive, KeyStat: KeyStatStrength},
		Deck:    numberedDeck(30),
		Seed:    snap.Match.Seed,
	})
	if !reflect.DeepEqual(snap.Player.Hand, again.Player.Hand) {
		t.Fatalf("recorded seed does not reproduce the deal")
	}
}

func TestInitializeMatchEmptyDeck(t *testing.T) {
	snap := InitializeMatch(MatchSetup{Seed: "x"})
	if len(snap.Player.Hand) != 0 || len(snap.Player.Deck) != 0 {
		t.Fatalf("expected empty hand and deck, got %+v", snap.Player)
	}
}

func TestMulligan(t *testing.T) {
	snap := InitializeMatch(MatchSetup{
		Profile:         Profile{Strategy: StrategyBalanced, KeyStat: KeyStatCharisma},
		Deck:            numberedDeck(30),
		Seed:            "mull",
		MulliganEnabled: true,
	})

	m, p, ok := Mulligan(snap.Match, snap.Player)
	if !ok {
		t.Fatal("mulligan should be allowed at turn 0")
	}
	if len(p.Hand) != 5 || len(p.Deck) != 25 || !p.MulliganUsed {
		t.Fatalf("unexpected state after mulligan: hand=%d deck=%d used=%v", len(p.Hand), len(p.Deck), p.MulliganUsed)
	}
	if len(m.Log) != 1 {
		t.Fatalf("expected one log entry, got %v", m.Log)
	}

	if _, _, ok := Mulligan(m, p); ok {
		t.Fatal("second mulligan should be refused")
	}

	started, _ := StartTurn(snap.Match, snap.Player)
	if _, _, ok := Mulligan(started, snap.Player); ok {
		t.Fatal("mulligan after the first draw should be refused")
	}

	disabled := snap.Match
	disabled.MulliganEnabled = false
	if _, _, ok := Mulligan(disabled, snap.Player); ok {
		t.Fatal("mulligan should be refused when disabled")
	}
}
