package ports

import (
	"context"
	"errors"

	"cardduel/internal/domain"
)

// ErrNotFound is returned by stores when no record exists for the key.
var ErrNotFound = errors.New("not found")

// SnapshotStore persists the in-progress match of an owner. Each owner has
// at most one live match.
type SnapshotStore interface {
	Save(ctx context.Context, owner string, snap domain.Snapshot) error
	// Load returns ErrNotFound when the owner has no match in progress.
	Load(ctx context.Context, owner string) (domain.Snapshot, error)
	Delete(ctx context.Context, owner string) error
}

// ProfileStore persists player profiles.
type ProfileStore interface {
	// GetProfile returns ErrNotFound for users that never set up a profile.
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	SaveProfile(ctx context.Context, userID string, profile domain.Profile) error
}

// SavedDeck is a deck stored under a generated id.
type SavedDeck struct {
	ID   string      `json:"id"`
	Deck domain.Deck `json:"deck"`
}

// DeckStore persists a user's saved decks.
type DeckStore interface {
	SaveDeck(ctx context.Context, userID string, deck SavedDeck) error
	ListDecks(ctx context.Context, userID string) ([]SavedDeck, error)
	// GetDeck returns ErrNotFound for unknown ids.
	GetDeck(ctx context.Context, userID, deckID string) (SavedDeck, error)
}
