package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore()

	_, err := store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	snap := domain.Snapshot{Match: domain.MatchState{ID: "m1", Log: []string{"a"}}}
	require.NoError(t, store.Save(ctx, "u1", snap))
	snap.Match.Log[0] = "mutated"

	got, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Match.Log[0])

	require.NoError(t, store.Delete(ctx, "u1"))
	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeckStoreReplacesByID(t *testing.T) {
	ctx := context.Background()
	store := NewDeckStore()
	require.NoError(t, store.SaveDeck(ctx, "u1", ports.SavedDeck{ID: "d1", Deck: domain.Deck{Name: "one"}}))
	require.NoError(t, store.SaveDeck(ctx, "u1", ports.SavedDeck{ID: "d2", Deck: domain.Deck{Name: "two"}}))
	require.NoError(t, store.SaveDeck(ctx, "u1", ports.SavedDeck{ID: "d1", Deck: domain.Deck{Name: "renamed"}}))

	list, err := store.ListDecks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "renamed", list[0].Deck.Name)

	_, err = store.GetDeck(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestWalletAllOrNothing(t *testing.T) {
	ctx := context.Background()
	w := NewWallet()
	require.NoError(t, w.UpdateBalances(ctx, []ports.WalletUpdate{{UserID: "u1", Amount: 10}}))

	err := w.UpdateBalances(ctx, []ports.WalletUpdate{
		{UserID: "u2", Amount: 5},
		{UserID: "u1", Amount: -11},
	})
	assert.ErrorIs(t, err, ports.ErrInsufficientTokens)

	bal, _ := w.GetBalance(ctx, "u1")
	assert.Equal(t, int64(10), bal)
	bal, _ = w.GetBalance(ctx, "u2")
	assert.Equal(t, int64(0), bal)
}
