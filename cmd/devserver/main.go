// Command devserver hosts card duels over HTTP and websockets without
// Nakama, keeping match snapshots in SQLite.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cardduel/internal/app"
	"cardduel/internal/bot"
	"cardduel/internal/config"
	"cardduel/internal/content"
	"cardduel/internal/ports/httpapi"
	"cardduel/internal/ports/sqlite"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "devserver:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	configPath := fs.String("config", "data/game_config.json", "path to the game config")
	dbPath := fs.String("db", "cardduel.db", "sqlite database path, or :memory:")
	auth := fs.Bool("auth", false, "require gateway tokens signed with the configured secret")
	dev := fs.Bool("dev", false, "human-readable logs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger, err := newLogger(*dev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := config.LoadGameConfig(*configPath); err != nil {
		return err
	}
	cfg := config.GetGameConfig()
	cfg.ApplyEnv(environ())

	catalog, err := content.LoadDir(cfg.CollectionsDir)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}
	roster, err := bot.LoadRoster(cfg.IdentitiesPath)
	if err != nil {
		logger.Warn("using generated opponent personas", zap.Error(err))
	}

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if stored, err := store.List(context.Background()); err == nil && len(stored) > 0 {
		logger.Info("resumable matches", zap.Int("count", len(stored)), zap.String("latest_owner", stored[0].Owner))
	}

	var tokens *app.TokenService
	if *auth {
		if cfg.LLM.GatewaySecret == "" {
			return errors.New("-auth needs llm.gateway_secret or cardduel_llm_gateway_secret")
		}
		tokens = app.NewTokenService(cfg.LLM.GatewaySecret, cfg.LLM.GatewayIssuer, time.Duration(cfg.LLM.TokenTTLSecs)*time.Second)
	}

	server := httpapi.NewServer(httpapi.Options{
		Matches:           app.NewService(store, catalog, cfg, nil),
		Decks:             app.NewDeckService(catalog, nil, cfg.DeckSize),
		Tokens:            tokens,
		NewBrain:          bot.NewFactory(cfg, logger),
		Roster:            roster,
		DeckSize:          cfg.DeckSize,
		DefaultDifficulty: cfg.DefaultDifficulty,
		Logger:            logger.Named("httpapi"),
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("devserver listening",
			zap.String("addr", *addr),
			zap.String("db", *dbPath),
			zap.Int("collections", len(catalog)),
			zap.Int("personas", roster.Len()),
			zap.Bool("auth", tokens != nil))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// environ exposes CARDDUEL_* variables under the lower-case keys the
// Nakama runtime environment uses.
func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(strings.ToLower(key), "cardduel_") {
			continue
		}
		env[strings.ToLower(key)] = val
	}
	return env
}
