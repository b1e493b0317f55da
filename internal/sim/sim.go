// Package sim plays whole matches between two brains without a host.
package sim

import (
	"context"

	"go.uber.org/zap"

	"cardduel/internal/app"
	"cardduel/internal/bot"
	"cardduel/internal/config"
	"cardduel/internal/domain"
	"cardduel/internal/ports/memory"
)

const (
	simOwner        = "sim"
	defaultMaxTurns = 200
)

// Setup describes one simulated duel. Player drives the player side and
// Opponent the opponent side.
type Setup struct {
	Seed     string
	Profile  domain.Profile
	Deck     domain.Deck
	Player   bot.Brain
	Opponent bot.Brain
	MaxTurns int
}

// Result summarizes a finished duel. Winner is empty when the duel hit
// the turn limit.
type Result struct {
	Seed      string
	Winner    domain.Side
	Turns     int
	TurnLimit bool
	Final     domain.Snapshot
	Events    []app.Event
	Rejected  int
}

// Runner plays duels on a private in-memory store.
type Runner struct {
	catalog domain.Catalog
	cfg     config.GameConfig
	logger  *zap.Logger
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(catalog domain.Catalog, cfg config.GameConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{catalog: catalog, cfg: cfg, logger: logger}
}

// Deal returns the opening snapshot for a setup without playing it.
func Deal(setup Setup, rules domain.Rules) domain.Snapshot {
	return domain.InitializeMatch(domain.MatchSetup{
		ID:      "deal",
		Profile: setup.Profile,
		Deck:    setup.Deck,
		Seed:    setup.Seed,
		Rules:   rules,
	})
}

// Run plays the duel to the end.
func (r *Runner) Run(ctx context.Context, setup Setup) (Result, error) {
	maxTurns := setup.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	svc := app.NewService(memory.NewSnapshotStore(), r.catalog, r.cfg, nil)
	session, events, err := svc.StartMatch(ctx, simOwner, app.StartMatchRequest{
		Profile:      setup.Profile,
		Deck:         setup.Deck,
		OpponentType: domain.OpponentLocalAI,
		Seed:         setup.Seed,
	})
	if err != nil {
		return Result{}, err
	}
	res := Result{Seed: session.Snapshot.Match.Seed, Events: events}
	opponent := &bot.Agent{ID: "opponent", Name: "Opponent", Brain: setup.Opponent}

	for !session.Snapshot.Match.Over() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if session.Snapshot.Match.Turn >= maxTurns {
			res.TurnLimit = true
			break
		}

		evs, err := svc.BeginTurn(ctx, session)
		res.Events = append(res.Events, evs...)
		if err != nil {
			return res, err
		}

		if session.Snapshot.Match.ActivePlayer == domain.SideOpponent {
			d, err := opponent.Play(ctx, session.Snapshot.Clone(), r.catalog)
			if err != nil {
				r.logger.Warn("opponent used the default decision", zap.Error(err))
			}
			evs, err = svc.ApplyOpponentDecision(ctx, session, d)
		} else {
			evs, err = r.playerTurn(ctx, svc, session, setup.Player)
		}
		res.Events = append(res.Events, evs...)
		if err != nil {
			return res, err
		}
		r.logger.Debug("turn finished",
			zap.Int("turn", session.Snapshot.Match.Turn),
			zap.Int("player_hp", session.Snapshot.Player.HP),
			zap.Int("opponent_hp", session.Snapshot.Opponent.HP))
	}

	for _, ev := range res.Events {
		if ev.Kind == app.EventPlayRejected || ev.Kind == app.EventOverplayPenalty {
			res.Rejected++
		}
	}
	res.Final = session.Snapshot
	res.Winner = session.Snapshot.Match.Winner
	res.Turns = session.Snapshot.Match.Turn
	return res, nil
}

// playerTurn mirrors ApplyOpponentDecision for the player side.
func (r *Runner) playerTurn(ctx context.Context, svc *app.Service, session *app.Session, brain bot.Brain) ([]app.Event, error) {
	d := domain.DefaultDecision()
	if brain != nil {
		view := bot.NewMatchView(session.Snapshot.Clone(), domain.SidePlayer, r.catalog)
		decided, err := brain.Decide(ctx, view)
		if err != nil {
			r.logger.Warn("player used the default decision", zap.Error(err))
		} else {
			d = decided
		}
	}

	var events []app.Event
	for _, play := range d.Plays {
		evs, err := svc.PlayCard(ctx, session, domain.SidePlayer, play.CardID)
		events = append(events, evs...)
		if err != nil {
			return events, err
		}
		if session.Snapshot.Match.Over() || !played(evs) {
			break
		}
	}
	if session.Snapshot.Match.Over() {
		return events, nil
	}
	evs, err := svc.EndTurn(ctx, session, domain.SidePlayer)
	return append(events, evs...), err
}

func played(events []app.Event) bool {
	for _, ev := range events {
		if ev.Kind == app.EventCardPlayed {
			return true
		}
	}
	return false
}
