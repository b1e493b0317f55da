package domain

import "fmt"

// DefaultDeckSize is the number of cards a constructed deck must hold.
const DefaultDeckSize = 30

// CopyLimit returns the maximum copies of a card of the given rarity
// allowed in one deck. Zero means unlimited.
func CopyLimit(r Rarity) int {
	switch r {
	case RarityRare:
		return 2
	case RarityUnique:
		return 1
	default:
		return 0
	}
}

// ShuffleDeck returns a shuffled copy of the given card ids.
func ShuffleDeck(ids []string, rng *RNG) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	rng.Shuffle(out)
	return out
}

// DeckIssue describes one problem with a deck entry.
type DeckIssue struct {
	Index  int    `json:"index"`
	CardID string `json:"cardId"`
	Reason string `json:"reason"`
}

func (i DeckIssue) String() string {
	return fmt.Sprintf("#%d %s: %s", i.Index, i.CardID, i.Reason)
}

const (
	IssueUnknownCard     = "unknown card"
	IssueWrongCollection = "card belongs to another collection"
	IssueCopyLimit       = "copy limit exceeded"
	IssueDeckTooLarge    = "deck is full"
)

// SanitizeDeck keeps the valid entries of a deck in order and reports the
// skipped ones. Entries are checked against the catalog, the deck's
// collection and rarity copy limits; anything beyond size is dropped.
// size <= 0 disables the size cap.
func SanitizeDeck(deck Deck, catalog Catalog, size int) (Deck, []DeckIssue) {
	out := Deck{Name: deck.Name, Collection: deck.Collection, Cards: make([]string, 0, len(deck.Cards))}
	var issues []DeckIssue
	counts := make(map[string]int, len(deck.Cards))

	for i, id := range deck.Cards {
		card, ok := catalog.Lookup(id)
		if !ok {
			issues = append(issues, DeckIssue{Index: i, CardID: id, Reason: IssueUnknownCard})
			continue
		}
		if deck.Collection != "" && card.Collection != "" && card.Collection != deck.Collection {
			issues = append(issues, DeckIssue{Index: i, CardID: id, Reason: IssueWrongCollection})
			continue
		}
		if limit := CopyLimit(card.Rarity); limit > 0 && counts[id] >= limit {
			issues = append(issues, DeckIssue{Index: i, CardID: id, Reason: IssueCopyLimit})
			continue
		}
		if size > 0 && len(out.Cards) >= size {
			issues = append(issues, DeckIssue{Index: i, CardID: id, Reason: IssueDeckTooLarge})
			continue
		}
		counts[id]++
		out.Cards = append(out.Cards, id)
	}
	return out, issues
}

// ValidateDeck reports every problem that keeps the deck from being
// playable as-is, including a wrong card count.
func ValidateDeck(deck Deck, catalog Catalog, size int) []DeckIssue {
	clean, issues := SanitizeDeck(deck, catalog, 0)
	if size > 0 && len(clean.Cards) != size {
		issues = append(issues, DeckIssue{
			Index:  -1,
			Reason: fmt.Sprintf("deck has %d valid cards, want %d", len(clean.Cards), size),
		})
	}
	return issues
}

// removeAt returns ids without the element at index i.
func removeAt(ids []string, i int) []string {
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}
