package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

const deckListLimit = 100

// StorageAPI is the part of runtime.NakamaModule the storage adapter uses.
type StorageAPI interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error
	StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error)
}

// NakamaStorageAdapter persists snapshots, profiles and decks as
// user-owned storage objects. Clients may read their profile and decks
// but never their match snapshot.
type NakamaStorageAdapter struct {
	nk StorageAPI
}

// NewNakamaStorageAdapter creates a new storage adapter.
func NewNakamaStorageAdapter(nk StorageAPI) *NakamaStorageAdapter {
	return &NakamaStorageAdapter{nk: nk}
}

func (a *NakamaStorageAdapter) read(ctx context.Context, collection, key, userID string, out interface{}) error {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: collection,
		Key:        key,
		UserID:     userID,
	}})
	if err != nil {
		return fmt.Errorf("failed to read %s/%s: %w", collection, key, err)
	}
	if len(objects) == 0 {
		return ports.ErrNotFound
	}
	if err := json.Unmarshal([]byte(objects[0].Value), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s/%s: %w", collection, key, err)
	}
	return nil
}

func (a *NakamaStorageAdapter) write(ctx context.Context, collection, key, userID string, value interface{}, read int) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", collection, key, err)
	}
	_, err = a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      collection,
		Key:             key,
		UserID:          userID,
		Value:           string(data),
		PermissionRead:  read,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, key, err)
	}
	return nil
}

// Save implements ports.SnapshotStore.
func (a *NakamaStorageAdapter) Save(ctx context.Context, owner string, snap domain.Snapshot) error {
	return a.write(ctx, collectionSnapshots, snapshotKey, owner, snap, runtime.STORAGE_PERMISSION_NO_READ)
}

// Load implements ports.SnapshotStore.
func (a *NakamaStorageAdapter) Load(ctx context.Context, owner string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := a.read(ctx, collectionSnapshots, snapshotKey, owner, &snap); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// Delete implements ports.SnapshotStore.
func (a *NakamaStorageAdapter) Delete(ctx context.Context, owner string) error {
	err := a.nk.StorageDelete(ctx, []*runtime.StorageDelete{{
		Collection: collectionSnapshots,
		Key:        snapshotKey,
		UserID:     owner,
	}})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// GetProfile implements ports.ProfileStore.
func (a *NakamaStorageAdapter) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	if err := a.read(ctx, collectionProfiles, profileKey, userID, &p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// SaveProfile implements ports.ProfileStore. The token balance lives in
// the wallet and is not stored.
func (a *NakamaStorageAdapter) SaveProfile(ctx context.Context, userID string, profile domain.Profile) error {
	profile.Tokens = 0
	return a.write(ctx, collectionProfiles, profileKey, userID, profile, runtime.STORAGE_PERMISSION_OWNER_READ)
}

// SaveDeck implements ports.DeckStore.
func (a *NakamaStorageAdapter) SaveDeck(ctx context.Context, userID string, deck ports.SavedDeck) error {
	return a.write(ctx, collectionDecks, deck.ID, userID, deck, runtime.STORAGE_PERMISSION_OWNER_READ)
}

// GetDeck implements ports.DeckStore.
func (a *NakamaStorageAdapter) GetDeck(ctx context.Context, userID, deckID string) (ports.SavedDeck, error) {
	var d ports.SavedDeck
	if err := a.read(ctx, collectionDecks, deckID, userID, &d); err != nil {
		return ports.SavedDeck{}, err
	}
	return d, nil
}

// ListDecks implements ports.DeckStore.
func (a *NakamaStorageAdapter) ListDecks(ctx context.Context, userID string) ([]ports.SavedDeck, error) {
	var decks []ports.SavedDeck
	cursor := ""
	for {
		objects, next, err := a.nk.StorageList(ctx, "", userID, collectionDecks, deckListLimit, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list decks: %w", err)
		}
		for _, obj := range objects {
			var d ports.SavedDeck
			if err := json.Unmarshal([]byte(obj.Value), &d); err != nil {
				return nil, fmt.Errorf("failed to unmarshal deck %s: %w", obj.Key, err)
			}
			decks = append(decks, d)
		}
		if next == "" {
			return decks, nil
		}
		cursor = next
	}
}

var (
	_ ports.SnapshotStore = (*NakamaStorageAdapter)(nil)
	_ ports.ProfileStore  = (*NakamaStorageAdapter)(nil)
	_ ports.DeckStore     = (*NakamaStorageAdapter)(nil)
)
