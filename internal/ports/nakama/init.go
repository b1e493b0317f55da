package nakama

import (
	"context"
	"database/sql"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"

	"cardduel/internal/app"
	"cardduel/internal/app/onboarding"
	"cardduel/internal/bot"
	"cardduel/internal/config"
	"cardduel/internal/content"
	"cardduel/internal/domain"
)

const defaultConfigPath = "data/game_config.json"

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	path := defaultConfigPath
	if val, ok := env["cardduel_config_path"]; ok && val != "" {
		path = val
	}
	if err := config.LoadGameConfig(path); err != nil {
		logger.Error("InitModule: Failed to load game config: %v", err)
		return err
	}
	cfg := config.GetGameConfig()
	cfg.ApplyEnv(env)

	catalog, err := content.LoadDir(cfg.CollectionsDir)
	if err != nil {
		logger.Error("InitModule: Failed to load collections from %s: %v", cfg.CollectionsDir, err)
		return err
	}
	roster, err := bot.LoadRoster(cfg.IdentitiesPath)
	if err != nil {
		logger.Warn("InitModule: Failed to load opponent personas: %v", err)
	}
	ready := roster.Provision(ctx, nk, logger)

	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}

	deps := NewDeps(cfg, catalog, nk, zl)
	deps.Roster = roster

	if err := RegisterRPCs(initializer, deps); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(NewAfterAuthenticateDevice(deps)); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchNameCardDuel, NewMatchFactory(deps)); err != nil {
		return err
	}

	logger.Info("CardDuel Go module loaded: %d collections, %d opponent accounts, regen %s, llm endpoint set: %v.", len(catalog), ready, cfg.RegenMode, cfg.LLM.Endpoint != "")
	return nil
}

// NewDeps builds the shared services on top of Nakama storage and wallets.
func NewDeps(cfg config.GameConfig, catalog domain.Catalog, nk runtime.NakamaModule, logger *zap.Logger) *Deps {
	storage := NewNakamaStorageAdapter(nk)
	economy := NewNakamaEconomyAdapter(nk)

	profiles := onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaWelcomeBonusAdapter(nk), storage, economy, nil)
	profiles.SetWelcomeTokens(cfg.WelcomeTokens)

	ttl := time.Duration(cfg.LLM.TokenTTLSecs) * time.Second
	return &Deps{
		Config:     cfg,
		Catalog:    catalog,
		Matches:    app.NewService(storage, catalog, cfg, nil),
		Decks:      app.NewDeckService(catalog, storage, cfg.DeckSize),
		Profiles:   storage,
		Onboarding: profiles,
		Tokens:     app.NewTokenService(cfg.LLM.GatewaySecret, cfg.LLM.GatewayIssuer, ttl),
		NewBrain:   bot.NewFactory(cfg, logger),
	}
}
