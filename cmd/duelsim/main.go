// Command duelsim deals or plays a bot-vs-bot duel for a seed.
//
//	duelsim deal -seed ABCDEFGHIJKLMNOP -numbered 30
//	duelsim play -seed ABCDEFGHIJKLMNOP -player hard -opponent easy
//	duelsim play -archive-bucket my-duels -gcs-endpoint http://localhost:4443/storage/v1/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cardduel/internal/app"
	"cardduel/internal/bot"
	"cardduel/internal/config"
	"cardduel/internal/content"
	"cardduel/internal/domain"
	"cardduel/internal/ports/gcs"
	"cardduel/internal/sim"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "deal":
		err = cmdDeal(os.Args[2:], os.Stdout)
	case "play":
		err = cmdPlay(os.Args[2:], os.Stdout)
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: duelsim <deal|play> [flags]")
}

type commonFlags struct {
	seed       *string
	strategy   *string
	keyStat    *string
	configPath *string
	deckPath   *string
	collection *string
}

func registerCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		seed:       fs.String("seed", "", "shuffle seed; empty picks a fresh one"),
		strategy:   fs.String("strategy", string(domain.StrategyBalanced), "aggressive, balanced or defensive"),
		keyStat:    fs.String("key-stat", string(domain.KeyStatIntelligence), "strength, intelligence or charisma"),
		configPath: fs.String("config", "data/game_config.json", "path to the game config"),
		deckPath:   fs.String("deck", "", "exported deck file; empty uses the starter deck"),
		collection: fs.String("collection", "", "collection for the starter deck"),
	}
}

func (c commonFlags) profile() (domain.Profile, error) {
	p := domain.Profile{Strategy: domain.Strategy(*c.strategy), KeyStat: domain.KeyStat(*c.keyStat)}
	if !p.Strategy.Valid() || !p.KeyStat.Valid() {
		return domain.Profile{}, fmt.Errorf("invalid profile %s/%s", p.Strategy, p.KeyStat)
	}
	return p, nil
}

func loadConfig(path string) (config.GameConfig, error) {
	if err := config.LoadGameConfig(path); err != nil {
		return config.GameConfig{}, err
	}
	return config.GetGameConfig(), nil
}

// loadDeck imports the deck file, or builds the starter deck when none is
// given.
func loadDeck(c commonFlags, catalog domain.Catalog, cfg config.GameConfig, logger *zap.Logger) (domain.Deck, error) {
	decks := app.NewDeckService(catalog, nil, cfg.DeckSize)
	if *c.deckPath == "" {
		return decks.StarterDeck(*c.collection)
	}
	data, err := os.ReadFile(*c.deckPath)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to read deck: %w", err)
	}
	deck, report, err := decks.Import(data)
	if err != nil {
		return domain.Deck{}, err
	}
	for _, issue := range report.Skipped {
		logger.Warn("skipped deck entry", zap.String("issue", issue.String()))
	}
	return deck, nil
}

func cmdDeal(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("deal", flag.ContinueOnError)
	common := registerCommon(fs)
	numbered := fs.Int("numbered", 0, "deal a synthetic deck c1..cN instead of real cards")
	if err := fs.Parse(args); err != nil {
		return err
	}
	profile, err := common.profile()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(*common.configPath)
	if err != nil {
		return err
	}

	var deck domain.Deck
	if *numbered > 0 {
		for i := 1; i <= *numbered; i++ {
			deck.Cards = append(deck.Cards, "c"+strconv.Itoa(i))
		}
	} else {
		catalog, err := content.LoadDir(cfg.CollectionsDir)
		if err != nil {
			return fmt.Errorf("failed to load collections: %w", err)
		}
		if deck, err = loadDeck(common, catalog, cfg, zap.NewNop()); err != nil {
			return err
		}
	}

	snap := sim.Deal(sim.Setup{Seed: *common.seed, Profile: profile, Deck: deck}, app.RulesFromConfig(cfg.Rules))
	printDeal(out, profile, snap)
	return nil
}

func printDeal(out io.Writer, profile domain.Profile, snap domain.Snapshot) {
	fmt.Fprintf(out, "seed:     %s\n", snap.Match.Seed)
	fmt.Fprintf(out, "profile:  %s/%s\n", profile.Strategy, profile.KeyStat)
	for _, side := range []domain.PlayerState{snap.Player, snap.Opponent} {
		fmt.Fprintf(out, "%s: hp=%d mp=%d\n", side.Side.Label(), side.HP, side.MP)
		fmt.Fprintf(out, "  hand: %s\n", strings.Join(side.Hand, " "))
		fmt.Fprintf(out, "  deck: %s\n", strings.Join(side.Deck, " "))
	}
}

func cmdPlay(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	common := registerCommon(fs)
	player := fs.String("player", "normal", "player brain difficulty")
	opponent := fs.String("opponent", "normal", "opponent brain difficulty")
	maxTurns := fs.Int("max-turns", 200, "stop after this many turns")
	verbose := fs.Bool("v", false, "log every turn")
	bucket := fs.String("archive-bucket", "", "Cloud Storage bucket for the duel record; empty skips archiving")
	prefix := fs.String("archive-prefix", "duels", "object prefix inside the archive bucket")
	endpoint := fs.String("gcs-endpoint", "", "storage emulator endpoint, used without credentials")
	if err := fs.Parse(args); err != nil {
		return err
	}
	profile, err := common.profile()
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadConfig(*common.configPath)
	if err != nil {
		return err
	}
	catalog, err := content.LoadDir(cfg.CollectionsDir)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}
	deck, err := loadDeck(common, catalog, cfg, logger)
	if err != nil {
		return err
	}

	brains := bot.NewFactory(cfg, logger)
	playerBrain, err := brains(domain.OpponentLocalAI, *player)
	if err != nil {
		return err
	}
	opponentBrain, err := brains(domain.OpponentLocalAI, *opponent)
	if err != nil {
		return err
	}

	ctx := context.Background()
	res, err := sim.NewRunner(catalog, cfg, logger).Run(ctx, sim.Setup{
		Seed:     *common.seed,
		Profile:  profile,
		Deck:     deck,
		Player:   playerBrain,
		Opponent: opponentBrain,
		MaxTurns: *maxTurns,
	})
	if err != nil {
		return err
	}

	printDeal(out, profile, sim.Deal(sim.Setup{Seed: res.Seed, Profile: profile, Deck: deck}, app.RulesFromConfig(cfg.Rules)))
	for _, line := range res.Final.Match.Log {
		fmt.Fprintln(out, line)
	}
	switch {
	case res.TurnLimit:
		fmt.Fprintf(out, "no winner after %d turns (player hp=%d, opponent hp=%d)\n", res.Turns, res.Final.Player.HP, res.Final.Opponent.HP)
	default:
		fmt.Fprintf(out, "%s wins on turn %d\n", res.Winner.Label(), res.Turns)
	}
	fmt.Fprintf(out, "rejected or penalized plays: %d\n", res.Rejected)

	if *bucket == "" {
		return nil
	}
	return archive(ctx, out, logger, *bucket, *prefix, *endpoint, res)
}

func archive(ctx context.Context, out io.Writer, logger *zap.Logger, bucket, prefix, endpoint string, res sim.Result) error {
	store, err := gcs.Open(ctx, bucket, prefix, endpoint)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	uris, err := sim.Archive(ctx, store, res)
	if err != nil {
		return err
	}
	for _, uri := range uris {
		logger.Debug("archived", zap.String("uri", uri))
		fmt.Fprintf(out, "archived %s\n", uri)
	}
	return nil
}
