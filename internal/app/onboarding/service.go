package onboarding

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

const (
	defaultWelcomeTokens = 100
	maxNameLength        = 24
)

var (
	ErrInvalidName     = errors.New("invalid profile name")
	ErrInvalidChoice   = errors.New("invalid strategy or key stat")
	ErrAlreadyUnlocked = errors.New("card already unlocked")
	ErrNotForSale      = errors.New("card cannot be unlocked with tokens")
	ErrUnknownCard     = errors.New("unknown card")
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the account update failed but onboarding continued.
	ProfileUpdateErr error
	// WelcomeBonusGranted is false when the bonus was granted earlier.
	WelcomeBonusGranted bool
	Profile             domain.Profile
}

// Service handles post-auth onboarding and profile management.
type Service struct {
	accounts      ports.AccountNamer
	bonuses       ports.WelcomeBonusPort
	profiles      ports.ProfileStore
	economy       ports.EconomyPort
	rng           *rand.Rand
	welcomeTokens int64
}

// NewService constructs an onboarding service. accounts and bonuses are
// required for OnboardNewUser; profiles and economy for the profile flows.
// rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountNamer, bonuses ports.WelcomeBonusPort, profiles ports.ProfileStore, economy ports.EconomyPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts:      accounts,
		bonuses:       bonuses,
		profiles:      profiles,
		economy:       economy,
		rng:           rng,
		welcomeTokens: defaultWelcomeTokens,
	}
}

// SetWelcomeTokens overrides the one-time token grant.
func (s *Service) SetWelcomeTokens(amount int64) {
	if amount > 0 {
		s.welcomeTokens = amount
	}
}

// OnboardNewUser names a new account, stores a default balanced profile
// and grants the welcome tokens once.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.NameAccount(ctx, userID, displayName); err != nil {
		// Account names are cosmetic; the token grant still has to happen.
		result.ProfileUpdateErr = err
	}

	if s.profiles != nil {
		if _, err := s.profiles.GetProfile(ctx, userID); errors.Is(err, ports.ErrNotFound) {
			profile := newProfile(displayName, domain.StrategyBalanced, domain.KeyStatCharisma)
			if err := s.profiles.SaveProfile(ctx, userID, profile); err != nil {
				return result, fmt.Errorf("failed to save default profile: %w", err)
			}
			result.Profile = profile
		}
	}

	granted, err := s.bonuses.GrantOnce(ctx, ports.WelcomeGrant{
		UserID: userID,
		Tokens: s.welcomeTokens,
		Reason: "welcome_bonus",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant welcome bonus: %w", err)
	}
	result.WelcomeBonusGranted = granted

	return result, nil
}

// SetupProfile validates the choices and stores the profile with its
// derived stats. Unlocked cards of an existing profile are kept.
func (s *Service) SetupProfile(ctx context.Context, userID, name string, strategy domain.Strategy, keyStat domain.KeyStat) (domain.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxNameLength {
		return domain.Profile{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strategy.Valid() || !keyStat.Valid() {
		return domain.Profile{}, fmt.Errorf("%w: %q/%q", ErrInvalidChoice, strategy, keyStat)
	}

	profile := newProfile(name, strategy, keyStat)
	existing, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		profile.Unlocked = existing.Unlocked
	case !errors.Is(err, ports.ErrNotFound):
		return domain.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.profiles.SaveProfile(ctx, userID, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	if s.accounts != nil {
		// The stored profile is authoritative; the account name only mirrors it.
		_ = s.accounts.NameAccount(ctx, userID, name)
	}
	return s.withBalance(ctx, userID, profile), nil
}

// GetProfile returns the stored profile with the current token balance.
func (s *Service) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.withBalance(ctx, userID, profile), nil
}

// UnlockCard spends the card's token cost and records the unlock.
func (s *Service) UnlockCard(ctx context.Context, userID string, catalog domain.Catalog, cardID string) (domain.Profile, error) {
	card, ok := catalog.Lookup(cardID)
	if !ok {
		return domain.Profile{}, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	if card.TokenCost <= 0 {
		return domain.Profile{}, fmt.Errorf("%w: %s", ErrNotForSale, cardID)
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile.HasUnlocked(cardID) {
		return domain.Profile{}, ErrAlreadyUnlocked
	}

	debit := []ports.WalletUpdate{{
		UserID: userID,
		Amount: -int64(card.TokenCost),
		Metadata: map[string]interface{}{
			"reason":  "unlock_card",
			"card_id": cardID,
		},
	}}
	if err := s.economy.UpdateBalances(ctx, debit); err != nil {
		return domain.Profile{}, fmt.Errorf("failed to charge tokens: %w", err)
	}

	profile.Unlocked = append(profile.Unlocked, cardID)
	if err := s.profiles.SaveProfile(ctx, userID, profile); err != nil {
		return domain.Profile{}, fmt.Errorf("failed to save profile: %w", err)
	}
	return s.withBalance(ctx, userID, profile), nil
}

func (s *Service) withBalance(ctx context.Context, userID string, p domain.Profile) domain.Profile {
	if s.economy == nil {
		return p
	}
	if bal, err := s.economy.GetBalance(ctx, userID); err == nil {
		p.Tokens = bal
	}
	return p
}

func newProfile(name string, strategy domain.Strategy, keyStat domain.KeyStat) domain.Profile {
	stats := domain.CalculatePlayerStats(strategy, keyStat)
	return domain.Profile{
		Name:     name,
		Strategy: strategy,
		KeyStat:  keyStat,
		HP:       stats.HP,
		MP:       stats.MP,
		Unlocked: []string{},
	}
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Ashen", "Brave", "Clever", "Gilded", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Duelist", "Herald", "Warden", "Oracle", "Rogue", "Sage", "Knight", "Seer", "Bard", "Squire"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
