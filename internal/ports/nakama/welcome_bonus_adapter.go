package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/ports"
)

// MultiUpdateAPI is the part of runtime.NakamaModule the welcome bonus adapter uses.
type MultiUpdateAPI interface {
	MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error)
}

// welcomeMarker is stored next to the wallet credit. Writing it with
// version "*" fails once it exists, which rolls the credit back too.
type welcomeMarker struct {
	Tokens    int64  `json:"tokens"`
	Reason    string `json:"reason"`
	GrantedAt string `json:"granted_at"`
}

// NakamaWelcomeBonusAdapter credits the welcome tokens and writes the
// marker in one MultiUpdate.
type NakamaWelcomeBonusAdapter struct {
	nk  MultiUpdateAPI
	now func() time.Time
}

func NewNakamaWelcomeBonusAdapter(nk MultiUpdateAPI) *NakamaWelcomeBonusAdapter {
	return &NakamaWelcomeBonusAdapter{nk: nk, now: time.Now}
}

// GrantOnce implements ports.WelcomeBonusPort.
func (a *NakamaWelcomeBonusAdapter) GrantOnce(ctx context.Context, grant ports.WelcomeGrant) (bool, error) {
	if grant.UserID == "" {
		return false, errors.New("welcome grant needs a user")
	}
	if grant.Tokens <= 0 {
		return false, fmt.Errorf("welcome grant of %d tokens", grant.Tokens)
	}

	value, err := json.Marshal(welcomeMarker{
		Tokens:    grant.Tokens,
		Reason:    grant.Reason,
		GrantedAt: a.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal welcome marker: %w", err)
	}

	write := &runtime.StorageWrite{
		Collection:      collectionOnboarding,
		Key:             keyWelcomeGrant,
		UserID:          grant.UserID,
		Value:           string(value),
		Version:         "*",
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}
	credit := &runtime.WalletUpdate{
		UserID:    grant.UserID,
		Changeset: map[string]int64{currencyTokens: grant.Tokens},
		Metadata:  map[string]interface{}{"reason": grant.Reason},
	}

	_, _, err = a.nk.MultiUpdate(ctx, nil, []*runtime.StorageWrite{write}, nil, []*runtime.WalletUpdate{credit}, true)
	switch {
	case errors.Is(err, runtime.ErrStorageRejectedVersion):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to grant welcome tokens: %w", err)
	}
	return true, nil
}

var _ ports.WelcomeBonusPort = (*NakamaWelcomeBonusAdapter)(nil)
