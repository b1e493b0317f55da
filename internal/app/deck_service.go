package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

var (
	ErrInvalidDeckFile = errors.New("invalid deck file")
	ErrDeckIncomplete  = errors.New("deck is incomplete")
	ErrNoStarterDeck   = errors.New("collection cannot fill a starter deck")
)

// ImportReport lists what an import kept and what it skipped.
type ImportReport struct {
	Kept    int                `json:"kept"`
	Skipped []domain.DeckIssue `json:"skipped"`
}

// DeckService converts decks to and from the export format and stores them.
type DeckService struct {
	catalog domain.Catalog
	store   ports.DeckStore
	size    int

	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewDeckService constructs a deck service; store may be nil when only
// import/export is needed.
func NewDeckService(catalog domain.Catalog, store ports.DeckStore, size int) *DeckService {
	if size <= 0 {
		size = domain.DefaultDeckSize
	}
	return &DeckService{
		catalog: catalog,
		store:   store,
		size:    size,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		now:     time.Now,
	}
}

// Export renders the deck in its human-editable JSON form.
func (s *DeckService) Export(deck domain.Deck) ([]byte, error) {
	if deck.Cards == nil {
		deck.Cards = []string{}
	}
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deck: %w", err)
	}
	return data, nil
}

// Import parses an exported deck and drops every entry that is unknown,
// belongs to another collection, exceeds its rarity copy limit or does not
// fit the deck size. Only a malformed document fails the whole import.
func (s *DeckService) Import(data []byte) (domain.Deck, ImportReport, error) {
	var deck domain.Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return domain.Deck{}, ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidDeckFile, err)
	}
	deck.Name = strings.TrimSpace(deck.Name)

	clean, issues := domain.SanitizeDeck(deck, s.catalog, s.size)
	report := ImportReport{Kept: len(clean.Cards), Skipped: issues}
	if report.Skipped == nil {
		report.Skipped = []domain.DeckIssue{}
	}
	return clean, report, nil
}

// Save validates and stores a complete deck under a new id. A non-empty
// id replaces the existing deck with that id.
func (s *DeckService) Save(ctx context.Context, userID, id string, deck domain.Deck) (ports.SavedDeck, error) {
	if s.store == nil {
		return ports.SavedDeck{}, fmt.Errorf("deck store not configured")
	}
	if issues := domain.ValidateDeck(deck, s.catalog, s.size); len(issues) > 0 {
		return ports.SavedDeck{}, fmt.Errorf("%w: %s", ErrDeckIncomplete, issues[0])
	}
	if id == "" {
		id = s.newID()
	}
	saved := ports.SavedDeck{ID: id, Deck: deck}
	if err := s.store.SaveDeck(ctx, userID, saved); err != nil {
		return ports.SavedDeck{}, fmt.Errorf("failed to save deck: %w", err)
	}
	return saved, nil
}

// List returns the user's saved decks.
func (s *DeckService) List(ctx context.Context, userID string) ([]ports.SavedDeck, error) {
	if s.store == nil {
		return nil, fmt.Errorf("deck store not configured")
	}
	return s.store.ListDecks(ctx, userID)
}

// Get returns one saved deck.
func (s *DeckService) Get(ctx context.Context, userID, deckID string) (ports.SavedDeck, error) {
	if s.store == nil {
		return ports.SavedDeck{}, fmt.Errorf("deck store not configured")
	}
	return s.store.GetDeck(ctx, userID, deckID)
}

// StarterDeck fills a deck from the collection's free cards, cycling
// through them in catalog order within their copy limits. An empty
// collectionID uses the first collection.
func (s *DeckService) StarterDeck(collectionID string) (domain.Deck, error) {
	if len(s.catalog) == 0 {
		return domain.Deck{}, fmt.Errorf("%w: empty catalog", ErrNoStarterDeck)
	}
	col := s.catalog[0]
	if collectionID != "" {
		var ok bool
		if col, ok = s.catalog.Collection(collectionID); !ok {
			return domain.Deck{}, fmt.Errorf("%w: unknown collection %s", ErrNoStarterDeck, collectionID)
		}
	}

	deck := domain.Deck{Name: col.Name + " Starter", Collection: col.ID, Cards: make([]string, 0, s.size)}
	counts := make(map[string]int)
	for len(deck.Cards) < s.size {
		added := false
		for _, card := range col.Cards {
			if len(deck.Cards) == s.size {
				break
			}
			if card.TokenCost > 0 {
				continue
			}
			if limit := domain.CopyLimit(card.Rarity); limit > 0 && counts[card.ID] >= limit {
				continue
			}
			counts[card.ID]++
			deck.Cards = append(deck.Cards, card.ID)
			added = true
		}
		if !added {
			return domain.Deck{}, fmt.Errorf("%w: %s has %d of %d cards", ErrNoStarterDeck, col.ID, len(deck.Cards), s.size)
		}
	}
	return deck, nil
}

func (s *DeckService) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}
