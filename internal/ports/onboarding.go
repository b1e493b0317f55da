package ports

import "context"

// AccountNamer sets the name other players see for an account.
type AccountNamer interface {
	// NameAccount renames userID. Implementations may keep the old
	// username when the new one is taken, as long as the display name
	// changes.
	NameAccount(ctx context.Context, userID, name string) error
}

// WelcomeGrant is the one-time token gift for a new account.
type WelcomeGrant struct {
	UserID string
	Tokens int64
	Reason string
}

// WelcomeBonusPort grants the welcome tokens at most once per user.
type WelcomeBonusPort interface {
	// GrantOnce returns false when the user already received the grant.
	GrantOnce(ctx context.Context, grant WelcomeGrant) (bool, error)
}
