package nakama

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

type storedObject struct {
	value string
	read  int
}

// fakeStorage implements StorageAPI over a map. StorageList pages one
// object at a time to exercise cursors.
type fakeStorage struct {
	objects map[string]storedObject
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]storedObject)}
}

func storageKey(collection, key, userID string) string {
	return collection + "/" + userID + "/" + key
}

func (f *fakeStorage) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	var out []*api.StorageObject
	for _, r := range reads {
		if obj, ok := f.objects[storageKey(r.Collection, r.Key, r.UserID)]; ok {
			out = append(out, &api.StorageObject{Collection: r.Collection, Key: r.Key, UserId: r.UserID, Value: obj.value})
		}
	}
	return out, nil
}

func (f *fakeStorage) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	var acks []*api.StorageObjectAck
	for _, w := range writes {
		f.objects[storageKey(w.Collection, w.Key, w.UserID)] = storedObject{value: w.Value, read: w.PermissionRead}
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID})
	}
	return acks, nil
}

func (f *fakeStorage) StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error {
	for _, d := range deletes {
		delete(f.objects, storageKey(d.Collection, d.Key, d.UserID))
	}
	return nil
}

func (f *fakeStorage) StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error) {
	prefix := collection + "/" + userID + "/"
	var keys []string
	for k := range f.objects {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", errors.New("bad cursor")
		}
		start = n
	}
	if start >= len(keys) {
		return nil, "", nil
	}
	k := keys[start]
	obj := &api.StorageObject{Collection: collection, Key: k[len(prefix):], UserId: userID, Value: f.objects[k].value}
	next := ""
	if start+1 < len(keys) {
		next = strconv.Itoa(start + 1)
	}
	return []*api.StorageObject{obj}, next, nil
}

func TestStorageAdapterSnapshots(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	adapter := NewNakamaStorageAdapter(storage)

	if _, err := adapter.Load(ctx, ownerID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("Load on empty store = %v, want ErrNotFound", err)
	}

	snap := domain.InitializeMatch(domain.MatchSetup{
		ID:      "m-1",
		Profile: domain.Profile{Strategy: domain.StrategyBalanced, KeyStat: domain.KeyStatCharisma},
		Deck:    domain.Deck{Cards: []string{"strike", "focus", "strike", "focus", "strike", "strike"}},
		Seed:    "storage-seed",
	})
	if err := adapter.Save(ctx, ownerID, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	obj := storage.objects[storageKey(collectionSnapshots, snapshotKey, ownerID)]
	if obj.read != runtime.STORAGE_PERMISSION_NO_READ {
		t.Errorf("snapshot read permission = %d, want no read", obj.read)
	}

	got, err := adapter.Load(ctx, ownerID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Match.ID != "m-1" || got.Match.Seed != "storage-seed" || len(got.Player.Hand) != len(snap.Player.Hand) {
		t.Errorf("loaded snapshot = %+v", got.Match)
	}

	if err := adapter.Delete(ctx, ownerID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := adapter.Load(ctx, ownerID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Load after Delete = %v", err)
	}
}

func TestStorageAdapterProfileDropsTokens(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	adapter := NewNakamaStorageAdapter(storage)

	err := adapter.SaveProfile(ctx, ownerID, domain.Profile{Name: "Ada", Strategy: domain.StrategyDefensive, KeyStat: domain.KeyStatStrength, Tokens: 55})
	if err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	got, err := adapter.GetProfile(ctx, ownerID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Name != "Ada" || got.Strategy != domain.StrategyDefensive {
		t.Errorf("profile = %+v", got)
	}
	if got.Tokens != 0 {
		t.Errorf("stored tokens = %d, want 0", got.Tokens)
	}
	if obj := storage.objects[storageKey(collectionProfiles, profileKey, ownerID)]; obj.read != runtime.STORAGE_PERMISSION_OWNER_READ {
		t.Errorf("profile read permission = %d", obj.read)
	}
}

func TestStorageAdapterListDecksPaginates(t *testing.T) {
	ctx := context.Background()
	adapter := NewNakamaStorageAdapter(newFakeStorage())

	for _, id := range []string{"a", "b", "c"} {
		deck := ports.SavedDeck{ID: id, Deck: domain.Deck{Name: "deck " + id, Collection: "core", Cards: []string{"strike"}}}
		if err := adapter.SaveDeck(ctx, ownerID, deck); err != nil {
			t.Fatalf("SaveDeck: %v", err)
		}
	}
	if err := adapter.SaveDeck(ctx, "someone-else", ports.SavedDeck{ID: "z"}); err != nil {
		t.Fatalf("SaveDeck: %v", err)
	}

	decks, err := adapter.ListDecks(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListDecks: %v", err)
	}
	if len(decks) != 3 {
		t.Fatalf("listed %d decks, want 3", len(decks))
	}
	got, err := adapter.GetDeck(ctx, ownerID, "b")
	if err != nil || got.Deck.Name != "deck b" {
		t.Errorf("GetDeck = %+v, %v", got, err)
	}
	if _, err := adapter.GetDeck(ctx, ownerID, "z"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("GetDeck across users = %v, want ErrNotFound", err)
	}
}
