package ports

import (
	"context"
	"errors"
)

// ErrInsufficientTokens is returned when a debit would overdraw a wallet.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// WalletUpdate represents a single token change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort manages the token currency used to unlock cards.
type EconomyPort interface {
	// GetBalance retrieves the current token balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies wallet changes. A negative amount that would
	// overdraw a wallet fails with ErrInsufficientTokens.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
