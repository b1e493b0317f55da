package nakama

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"cardduel/internal/ports"
)

// AccountAPI is the part of runtime.NakamaModule the account adapter uses.
type AccountAPI interface {
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// NakamaAccountAdapter names accounts after their duelist profile.
type NakamaAccountAdapter struct {
	nk AccountAPI
}

func NewNakamaAccountAdapter(nk AccountAPI) *NakamaAccountAdapter {
	return &NakamaAccountAdapter{nk: nk}
}

// NameAccount sets the display name to name and the username to its
// lower-case slug. Usernames are unique in Nakama, so when the slug is
// taken only the display name changes.
func (a *NakamaAccountAdapter) NameAccount(ctx context.Context, userID, name string) error {
	username := usernameSlug(name)
	if username != "" {
		if err := a.nk.AccountUpdateId(ctx, userID, username, nil, name, "", "", "", ""); err == nil {
			return nil
		}
	}
	if err := a.nk.AccountUpdateId(ctx, userID, "", nil, name, "", "", "", ""); err != nil {
		return fmt.Errorf("failed to rename account %s: %w", userID, err)
	}
	return nil
}

func usernameSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

var _ ports.AccountNamer = (*NakamaAccountAdapter)(nil)
