package nakama

import (
	"encoding/json"
	"testing"

	"cardduel/internal/app"
	"cardduel/internal/domain"
)

func TestEncodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   app.Event
		op      int64
		field   string
		want    interface{}
		wantErr bool
	}{
		{
			name:  "TurnEnded",
			event: app.Event{Kind: app.EventTurnEnded, Payload: app.TurnEndedPayload{Side: domain.SidePlayer, Turn: 1, NextActive: domain.SideOpponent, Discarded: []string{}}},
			op:    OpTurnEnded,
			field: "next_active",
			want:  "opponent",
		},
		{
			name:  "PlayRejected",
			event: app.Event{Kind: app.EventPlayRejected, Payload: app.PlayRejectedPayload{Side: domain.SidePlayer, CardID: "strike", Reason: domain.RejectNotInHand}},
			op:    OpPlayRejected,
			field: "reason",
			want:  "not_in_hand",
		},
		{
			name:  "OverplayPenalty",
			event: app.Event{Kind: app.EventOverplayPenalty, Payload: app.OverplayPenaltyPayload{Side: domain.SideOpponent, CardID: "strike", HP: 8, Fatigue: 2}},
			op:    OpOverplayPenalty,
			field: "hp",
			want:  float64(8),
		},
		{
			name:    "UnknownKind",
			event:   app.Event{Kind: "mystery", Payload: map[string]int{}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, data, err := encodeEvent(tt.event)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("encodeEvent: %v", err)
			}
			if op != tt.op {
				t.Errorf("op = %d, want %d", op, tt.op)
			}
			var got map[string]interface{}
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("wire bytes are not JSON: %v", err)
			}
			if got[tt.field] != tt.want {
				t.Errorf("%s = %v, want %v", tt.field, got[tt.field], tt.want)
			}
		})
	}
}

func TestNewPlayerViewHidesOpponent(t *testing.T) {
	snap := domain.InitializeMatch(domain.MatchSetup{
		ID:      "m-1",
		Profile: domain.Profile{Strategy: domain.StrategyAggressive, KeyStat: domain.KeyStatIntelligence},
		Deck:    domain.Deck{Cards: []string{"a", "b", "c", "d", "e", "f", "g"}},
		Seed:    "view-seed",
	})

	view := app.NewPlayerView(snap)
	if view.OpponentHandSize != len(snap.Opponent.Hand) || view.OpponentDeckSize != len(snap.Opponent.Deck) {
		t.Errorf("opponent counts = %d/%d", view.OpponentHandSize, view.OpponentDeckSize)
	}

	data, err := encodeWire(view)
	if err != nil {
		t.Fatalf("encodeWire: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, leaked := got["opponent"]; leaked {
		t.Error("view leaks the opponent state")
	}
	player, _ := got["player"].(map[string]interface{})
	if hand, _ := player["hand"].([]interface{}); len(hand) != len(snap.Player.Hand) {
		t.Errorf("player hand = %v", player["hand"])
	}
	if _, leaked := player["deck"]; leaked {
		t.Error("view leaks the owner's draw order")
	}
	if size, _ := player["deckSize"].(float64); int(size) != len(snap.Player.Deck) {
		t.Errorf("deckSize = %v, want %d", player["deckSize"], len(snap.Player.Deck))
	}
	match, _ := got["match"].(map[string]interface{})
	if _, leaked := match["seed"]; leaked {
		t.Error("view leaks the seed")
	}
}
