package internal

import (
	"testing"

	"cardduel/internal/domain"
)

var testWeights = PhaseWeights{
	HPWeight:        1.5,
	MPWeight:        0.5,
	FatigueWeight:   1.0,
	ExtraPlayBonus:  2.0,
	MPRestoreWeight: 1.0,
	ChampionBonus:   1.0,
	LowHPPenalty:    5.0,
}

func TestScoreCard(t *testing.T) {
	res := Resources{HP: 20, MP: 5, MaxMP: 10}
	tests := []struct {
		name string
		card domain.Card
		res  Resources
		want float64
	}{
		{"free card", domain.Card{ID: "a", Type: domain.CardTypeEvent}, res, 0},
		{"mp and fatigue cost", domain.Card{ID: "b", Type: domain.CardTypeTactic, Cost: domain.Cost{MP: -2, Fatigue: 1}}, res, -2},
		{"extra play", domain.Card{ID: "c", Type: domain.CardTypeTactic, Tags: []string{domain.TagExtraPlay}}, res, 2},
		{"champion", domain.Card{ID: "d", Type: domain.CardTypeChampion, Cost: domain.Cost{HP: -2}}, res, -2},
		{"full restore", domain.Card{ID: "e", Type: domain.CardTypeSkill, Effect: "Restore +3 MP"}, res, 3},
		{"capped restore", domain.Card{ID: "f", Type: domain.CardTypeSkill, Effect: "Restore +3 MP"}, Resources{HP: 20, MP: 9, MaxMP: 10}, 1},
		{"low hp", domain.Card{ID: "g", Type: domain.CardTypeEvent, Cost: domain.Cost{HP: -2}}, Resources{HP: 5, MP: 0, MaxMP: 10}, -8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreCard(tt.card, tt.res, testWeights, 4); got != tt.want {
				t.Fatalf("ScoreCard = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestForPhase(t *testing.T) {
	tuning := BotTuning{
		Opening: PhaseWeights{HPWeight: 1},
		Mid:     PhaseWeights{HPWeight: 2},
		End:     PhaseWeights{HPWeight: 3},
	}
	if tuning.ForPhase(PhaseOpening).HPWeight != 1 || tuning.ForPhase(PhaseMid).HPWeight != 2 || tuning.ForPhase(PhaseEnd).HPWeight != 3 {
		t.Fatal("ForPhase returned the wrong weights")
	}
}
