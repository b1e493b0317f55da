package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"cardduel/internal/domain"
	"cardduel/internal/ports"
	"cardduel/internal/ports/memory"
)

type fakeAccountPort struct {
	updateErr error
	names     map[string]string
}

func (f fakeAccountPort) NameAccount(ctx context.Context, userID, name string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.names != nil {
		f.names[userID] = name
	}
	return nil
}

type fakeWelcomeBonusPort struct {
	updateErr error
	updates   []ports.WelcomeGrant
	granted   bool
}

func (f *fakeWelcomeBonusPort) GrantOnce(ctx context.Context, grant ports.WelcomeGrant) (bool, error) {
	f.updates = append(f.updates, grant)
	if f.updateErr != nil {
		return false, f.updateErr
	}
	return f.granted, nil
}

var shop = domain.Catalog{{ID: "core", Cards: []domain.Card{
	{ID: "crown", Rarity: domain.RarityUnique, TokenCost: 40},
	{ID: "strike", Rarity: domain.RarityCommon},
}}}

func newProfileService(t *testing.T, tokens int64) (*Service, *memory.ProfileStore, *memory.Wallet) {
	t.Helper()
	profiles := memory.NewProfileStore()
	wallet := memory.NewWallet()
	if tokens > 0 {
		if err := wallet.UpdateBalances(context.Background(), []ports.WalletUpdate{{UserID: "user-1", Amount: tokens}}); err != nil {
			t.Fatalf("seed wallet: %v", err)
		}
	}
	return NewService(fakeAccountPort{}, &fakeWelcomeBonusPort{granted: true}, profiles, wallet, rand.New(rand.NewSource(1))), profiles, wallet
}

func TestOnboardNewUser_GrantsWelcomeBonus(t *testing.T) {
	bonuses := &fakeWelcomeBonusPort{granted: true}
	profiles := memory.NewProfileStore()
	service := NewService(fakeAccountPort{}, bonuses, profiles, nil, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr != nil {
		t.Fatalf("Expected no profile update error, got %v", result.ProfileUpdateErr)
	}

	if len(bonuses.updates) != 1 {
		t.Fatalf("Expected 1 welcome bonus call, got %d", len(bonuses.updates))
	}
	if bonuses.updates[0].Tokens != defaultWelcomeTokens {
		t.Fatalf("Expected welcome bonus %d, got %d", defaultWelcomeTokens, bonuses.updates[0].Tokens)
	}
	if !result.WelcomeBonusGranted {
		t.Fatal("Expected welcome bonus to be marked as granted")
	}

	stored, err := profiles.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("default profile not stored: %v", err)
	}
	if stored.Strategy != domain.StrategyBalanced || stored.HP != 28 || stored.MP != 10 {
		t.Fatalf("unexpected default profile: %+v", stored)
	}
}

func TestOnboardNewUser_KeepsExistingProfile(t *testing.T) {
	profiles := memory.NewProfileStore()
	existing := domain.Profile{Name: "Ada", Strategy: domain.StrategyAggressive, KeyStat: domain.KeyStatStrength}
	if err := profiles.SaveProfile(context.Background(), "user-1", existing); err != nil {
		t.Fatal(err)
	}
	service := NewService(fakeAccountPort{}, &fakeWelcomeBonusPort{}, profiles, nil, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	stored, _ := profiles.GetProfile(context.Background(), "user-1")
	if stored.Name != "Ada" {
		t.Fatalf("existing profile overwritten: %+v", stored)
	}
}

func TestOnboardNewUser_AccountUpdateFailureStillGrantsBonus(t *testing.T) {
	bonuses := &fakeWelcomeBonusPort{granted: true}
	service := NewService(fakeAccountPort{updateErr: errors.New("update failed")}, bonuses, nil, nil, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.ProfileUpdateErr == nil {
		t.Fatal("Expected profile update error to be captured")
	}
	if len(bonuses.updates) != 1 || !result.WelcomeBonusGranted {
		t.Fatalf("Expected welcome bonus to be granted, calls=%d", len(bonuses.updates))
	}
}

func TestOnboardNewUser_WelcomeBonusFailureReturnsError(t *testing.T) {
	service := NewService(fakeAccountPort{}, &fakeWelcomeBonusPort{updateErr: errors.New("wallet failed")}, nil, nil, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewUser(context.Background(), "user-1"); err == nil {
		t.Fatal("Expected error when welcome bonus fails")
	}
}

func TestOnboardNewUser_WelcomeBonusAlreadyGranted(t *testing.T) {
	bonuses := &fakeWelcomeBonusPort{granted: false}
	service := NewService(fakeAccountPort{}, bonuses, nil, nil, rand.New(rand.NewSource(1)))
	service.SetWelcomeTokens(250)

	result, err := service.OnboardNewUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OnboardNewUser returned error: %v", err)
	}
	if result.WelcomeBonusGranted {
		t.Fatal("Expected welcome bonus to be marked as already granted")
	}
	if bonuses.updates[0].Tokens != 250 {
		t.Fatalf("amount = %d, want 250", bonuses.updates[0].Tokens)
	}
}

func TestSetupProfile(t *testing.T) {
	service, _, _ := newProfileService(t, 15)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		strategy domain.Strategy
		keyStat  domain.KeyStat
		wantErr  error
	}{
		{"empty name", "  ", domain.StrategyBalanced, domain.KeyStatCharisma, ErrInvalidName},
		{"long name", "abcdefghijklmnopqrstuvwxyz", domain.StrategyBalanced, domain.KeyStatCharisma, ErrInvalidName},
		{"bad strategy", "Ada", "reckless", domain.KeyStatCharisma, ErrInvalidChoice},
		{"bad stat", "Ada", domain.StrategyBalanced, "luck", ErrInvalidChoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.SetupProfile(ctx, "user-1", tt.input, tt.strategy, tt.keyStat); !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	p, err := service.SetupProfile(ctx, "user-1", " Ada ", domain.StrategyAggressive, domain.KeyStatStrength)
	if err != nil {
		t.Fatalf("SetupProfile returned error: %v", err)
	}
	if p.Name != "Ada" || p.HP != 32 || p.MP != 12 || p.Tokens != 15 {
		t.Fatalf("profile = %+v", p)
	}
}

func TestSetupProfile_RenamesAccount(t *testing.T) {
	names := map[string]string{}
	service := NewService(fakeAccountPort{names: names}, &fakeWelcomeBonusPort{}, memory.NewProfileStore(), nil, rand.New(rand.NewSource(1)))

	if _, err := service.SetupProfile(context.Background(), "user-1", "Ada", domain.StrategyDefensive, domain.KeyStatIntelligence); err != nil {
		t.Fatalf("SetupProfile returned error: %v", err)
	}
	if names["user-1"] != "Ada" {
		t.Fatalf("account name = %q, want Ada", names["user-1"])
	}
}

func TestSetupProfile_AccountRenameFailureIgnored(t *testing.T) {
	service := NewService(fakeAccountPort{updateErr: errors.New("taken")}, &fakeWelcomeBonusPort{}, memory.NewProfileStore(), nil, rand.New(rand.NewSource(1)))

	if _, err := service.SetupProfile(context.Background(), "user-1", "Ada", domain.StrategyDefensive, domain.KeyStatIntelligence); err != nil {
		t.Fatalf("SetupProfile returned error: %v", err)
	}
}

func TestUnlockCard(t *testing.T) {
	service, _, wallet := newProfileService(t, 50)
	ctx := context.Background()

	if _, err := service.UnlockCard(ctx, "user-1", shop, "crown"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected missing profile, got %v", err)
	}
	if _, err := service.SetupProfile(ctx, "user-1", "Ada", domain.StrategyBalanced, domain.KeyStatCharisma); err != nil {
		t.Fatal(err)
	}

	if _, err := service.UnlockCard(ctx, "user-1", shop, "strike"); !errors.Is(err, ErrNotForSale) {
		t.Fatalf("expected ErrNotForSale, got %v", err)
	}
	if _, err := service.UnlockCard(ctx, "user-1", shop, "ghost"); !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}

	p, err := service.UnlockCard(ctx, "user-1", shop, "crown")
	if err != nil {
		t.Fatalf("UnlockCard returned error: %v", err)
	}
	if !p.HasUnlocked("crown") || p.Tokens != 10 {
		t.Fatalf("profile = %+v", p)
	}

	if _, err := service.UnlockCard(ctx, "user-1", shop, "crown"); !errors.Is(err, ErrAlreadyUnlocked) {
		t.Fatalf("expected ErrAlreadyUnlocked, got %v", err)
	}

	// re-running setup keeps unlocks
	p, err = service.SetupProfile(ctx, "user-1", "Ada", domain.StrategyDefensive, domain.KeyStatCharisma)
	if err != nil || !p.HasUnlocked("crown") {
		t.Fatalf("unlock lost after setup: %+v, %v", p, err)
	}

	bal, _ := wallet.GetBalance(ctx, "user-1")
	if bal != 10 {
		t.Fatalf("balance = %d, want 10", bal)
	}
}

func TestUnlockCardInsufficientTokens(t *testing.T) {
	service, profiles, _ := newProfileService(t, 5)
	ctx := context.Background()
	if _, err := service.SetupProfile(ctx, "user-1", "Ada", domain.StrategyBalanced, domain.KeyStatCharisma); err != nil {
		t.Fatal(err)
	}
	if _, err := service.UnlockCard(ctx, "user-1", shop, "crown"); !errors.Is(err, ports.ErrInsufficientTokens) {
		t.Fatalf("expected ErrInsufficientTokens, got %v", err)
	}
	p, _ := profiles.GetProfile(ctx, "user-1")
	if p.HasUnlocked("crown") {
		t.Fatal("unlock recorded without payment")
	}
}
