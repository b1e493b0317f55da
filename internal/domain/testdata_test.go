package domain

import "fmt"

// testCatalog builds a single collection holding the given cards.
func testCatalog(cards ...Card) Catalog {
	return Catalog{{ID: "core", Name: "Core", Cards: cards}}
}

func numberedDeck(n int) Deck {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%d", i+1)
	}
	return Deck{Name: "test", Collection: "core", Cards: ids}
}

// mainPhase returns a match and player ready to play cards.
func mainPhase(hand ...string) (MatchState, PlayerState) {
	m := MatchState{
		Turn:         1,
		Phase:        PhaseMain,
		ActivePlayer: SidePlayer,
		Rules:        DefaultRules(),
		Log:          []string{},
	}
	p := PlayerState{
		Side:                SidePlayer,
		HP:                  20,
		MP:                  5,
		MaxHP:               28,
		MaxMP:               10,
		Hand:                hand,
		Deck:                []string{},
		Discard:             []string{},
		Champions:           []string{},
		ExtraPlaysRemaining: 1,
		Flags:               map[string]bool{},
	}
	return m, p
}
