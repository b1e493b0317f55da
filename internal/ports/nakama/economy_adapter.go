package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/ports"
)

// WalletAPI is the part of runtime.NakamaModule the economy adapter uses.
type WalletAPI interface {
	AccountsGetId(ctx context.Context, userIDs []string) ([]*api.Account, error)
	WalletsUpdate(ctx context.Context, updates []*runtime.WalletUpdate, updateLedger bool) ([]*runtime.WalletUpdateResult, error)
}

// NakamaEconomyAdapter keeps token balances in Nakama wallets.
type NakamaEconomyAdapter struct {
	nk WalletAPI
}

func NewNakamaEconomyAdapter(nk WalletAPI) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{nk: nk}
}

// GetBalance returns the user's token balance; a missing wallet is zero.
func (a *NakamaEconomyAdapter) GetBalance(ctx context.Context, userID string) (int64, error) {
	balances, err := a.balances(ctx, []string{userID})
	if err != nil {
		return 0, err
	}
	return balances[userID], nil
}

func (a *NakamaEconomyAdapter) balances(ctx context.Context, userIDs []string) (map[string]int64, error) {
	accounts, err := a.nk.AccountsGetId(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	out := make(map[string]int64, len(accounts))
	for _, account := range accounts {
		if account.GetUser() == nil || account.Wallet == "" {
			continue
		}
		var wallet map[string]int64
		if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
			return nil, fmt.Errorf("failed to unmarshal wallet of %s: %w", account.GetUser().GetId(), err)
		}
		out[account.GetUser().GetId()] = wallet[currencyTokens]
	}
	return out, nil
}

// UpdateBalances nets the updates per user, checks every debit against
// the current balance and then applies all changes in one batch.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	net := make(map[string]int64)
	var order []string
	for _, u := range updates {
		if _, seen := net[u.UserID]; !seen {
			order = append(order, u.UserID)
		}
		net[u.UserID] += u.Amount
	}

	var debited []string
	for _, id := range order {
		if net[id] < 0 {
			debited = append(debited, id)
		}
	}
	if len(debited) > 0 {
		balances, err := a.balances(ctx, debited)
		if err != nil {
			return err
		}
		for _, id := range debited {
			if balances[id]+net[id] < 0 {
				return fmt.Errorf("%w: user %s has %d, needs %d", ports.ErrInsufficientTokens, id, balances[id], -net[id])
			}
		}
	}

	batch := make([]*runtime.WalletUpdate, 0, len(updates))
	for _, u := range updates {
		if u.Amount == 0 {
			continue
		}
		batch = append(batch, &runtime.WalletUpdate{
			UserID:    u.UserID,
			Changeset: map[string]int64{currencyTokens: u.Amount},
			Metadata:  u.Metadata,
		})
	}
	if len(batch) == 0 {
		return nil
	}
	if _, err := a.nk.WalletsUpdate(ctx, batch, true); err != nil {
		return fmt.Errorf("failed to update wallets: %w", err)
	}
	return nil
}

var _ ports.EconomyPort = (*NakamaEconomyAdapter)(nil)
