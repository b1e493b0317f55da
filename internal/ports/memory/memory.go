// Package memory holds in-process stores used by the simulator and tests.
package memory

import (
	"context"
	"sync"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

// SnapshotStore keeps snapshots in a map keyed by owner.
type SnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]domain.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snaps: make(map[string]domain.Snapshot)}
}

func (s *SnapshotStore) Save(_ context.Context, owner string, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[owner] = snap.Clone()
	return nil
}

func (s *SnapshotStore) Load(_ context.Context, owner string) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[owner]
	if !ok {
		return domain.Snapshot{}, ports.ErrNotFound
	}
	return snap.Clone(), nil
}

func (s *SnapshotStore) Delete(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, owner)
	return nil
}

// ProfileStore keeps profiles in a map keyed by user id.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]domain.Profile)}
}

func (s *ProfileStore) GetProfile(_ context.Context, userID string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return domain.Profile{}, ports.ErrNotFound
	}
	p.Unlocked = append([]string(nil), p.Unlocked...)
	return p, nil
}

func (s *ProfileStore) SaveProfile(_ context.Context, userID string, profile domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile.Unlocked = append([]string(nil), profile.Unlocked...)
	s.profiles[userID] = profile
	return nil
}

// DeckStore keeps saved decks per user in insertion order.
type DeckStore struct {
	mu    sync.RWMutex
	decks map[string][]ports.SavedDeck
}

func NewDeckStore() *DeckStore {
	return &DeckStore{decks: make(map[string][]ports.SavedDeck)}
}

// SaveDeck replaces a deck with the same id or appends a new one.
func (s *DeckStore) SaveDeck(_ context.Context, userID string, deck ports.SavedDeck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deck.Deck.Cards = append([]string(nil), deck.Deck.Cards...)
	list := s.decks[userID]
	for i := range list {
		if list[i].ID == deck.ID {
			list[i] = deck
			return nil
		}
	}
	s.decks[userID] = append(list, deck)
	return nil
}

func (s *DeckStore) ListDecks(_ context.Context, userID string) ([]ports.SavedDeck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ports.SavedDeck, len(s.decks[userID]))
	copy(out, s.decks[userID])
	return out, nil
}

func (s *DeckStore) GetDeck(_ context.Context, userID, deckID string) (ports.SavedDeck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.decks[userID] {
		if d.ID == deckID {
			return d, nil
		}
	}
	return ports.SavedDeck{}, ports.ErrNotFound
}

// Wallet is an EconomyPort over an in-memory balance map.
type Wallet struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewWallet() *Wallet {
	return &Wallet{balances: make(map[string]int64)}
}

func (w *Wallet) GetBalance(_ context.Context, userID string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[userID], nil
}

// UpdateBalances applies all updates or none.
func (w *Wallet) UpdateBalances(_ context.Context, updates []ports.WalletUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	next := make(map[string]int64, len(updates))
	for _, u := range updates {
		bal, ok := next[u.UserID]
		if !ok {
			bal = w.balances[u.UserID]
		}
		bal += u.Amount
		if bal < 0 {
			return ports.ErrInsufficientTokens
		}
		next[u.UserID] = bal
	}
	for id, bal := range next {
		w.balances[id] = bal
	}
	return nil
}

var (
	_ ports.SnapshotStore = (*SnapshotStore)(nil)
	_ ports.ProfileStore  = (*ProfileStore)(nil)
	_ ports.DeckStore     = (*DeckStore)(nil)
	_ ports.EconomyPort   = (*Wallet)(nil)
)
