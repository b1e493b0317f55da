package domain

import (
	"reflect"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	catalog := testCatalog(cardStrike)
	snap := InitializeMatch(MatchSetup{
		ID:           "match-1",
		Profile:      Profile{Strategy: StrategyAggressive, KeyStat: KeyStatStrength},
		Deck:         Deck{Cards: []string{"strike", "strike", "strike", "strike", "strike", "strike", "strike"}},
		Seed:         "round-trip",
		OpponentType: OpponentLLM,
		AIDifficulty: "hard",
		TimedMatch:   true,
	})
	snap.Match, snap.Player = StartTurn(snap.Match, snap.Player)
	res := PlayCard(snap.Match, snap.Player, "strike", catalog, BasicEffectResolver{})
	snap.Match, snap.Player = res.Match, res.Player
	snap.Player.Flags["shielded"] = true

	data, err := MarshalSnapshot(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(restored, snap) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", restored, snap)
	}
}

func TestUnmarshalSnapshotRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalSnapshot([]byte("{not json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	snap := InitializeMatch(MatchSetup{Deck: numberedDeck(10), Seed: "clone"})
	c := snap.Clone()
	c.Player.Hand[0] = "changed"
	c.Match.Log = append(c.Match.Log, "x")
	c.Player.Flags["x"] = true
	if snap.Player.Hand[0] == "changed" || len(snap.Match.Log) != 0 || snap.Player.Flags["x"] {
		t.Fatal("clone shares memory with original")
	}
}
