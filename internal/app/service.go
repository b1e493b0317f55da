package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"cardduel/internal/config"
	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

var (
	ErrMatchOver          = errors.New("match is over")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrTurnAlreadyBegun   = errors.New("turn already begun")
	ErrTurnNotBegun       = errors.New("turn not begun")
	ErrMulliganNotAllowed = errors.New("mulligan not allowed")
	ErrNoMatch            = errors.New("no match in progress")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrUnknownSide        = errors.New("unknown side")
)

// Session is one owner's live match. Callers must serialize operations on
// the same session.
type Session struct {
	Owner    string
	Snapshot domain.Snapshot
}

// StartMatchRequest carries the choices made in the lobby.
type StartMatchRequest struct {
	Profile         domain.Profile
	Deck            domain.Deck
	OpponentType    domain.OpponentType
	AIDifficulty    string
	TimedMatch      bool
	MulliganEnabled bool
	// Seed reproduces a previous deal; empty generates a fresh one.
	Seed string
}

// Service contains the match use-cases operating on domain state. Every
// mutating call persists the resulting snapshot.
type Service struct {
	store    ports.SnapshotStore
	catalog  domain.Catalog
	resolver domain.EffectResolver
	rng      *rand.Rand
	rules    domain.Rules
	regen    config.RegenMode
}

// NewService constructs a Service. rng may be nil to use a time-seeded
// default for seed generation.
func NewService(store ports.SnapshotStore, catalog domain.Catalog, cfg config.GameConfig, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store:    store,
		catalog:  catalog,
		resolver: domain.BasicEffectResolver{},
		rng:      rng,
		rules:    RulesFromConfig(cfg.Rules),
		regen:    cfg.RegenMode,
	}
}

// SetResolver replaces the effect resolver applied to successful plays.
func (s *Service) SetResolver(r domain.EffectResolver) {
	s.resolver = r
}

// Catalog returns the card catalog the service validates plays against.
func (s *Service) Catalog() domain.Catalog {
	return s.catalog
}

// RulesFromConfig converts configured rules, falling back to the defaults
// for any zero field.
func RulesFromConfig(c config.RulesConfig) domain.Rules {
	r := domain.DefaultRules()
	if c.HandLimit > 0 {
		r.HandLimit = c.HandLimit
	}
	if c.ChampionSlots > 0 {
		r.ChampionSlots = c.ChampionSlots
	}
	if c.PlayLimitPerTurn > 0 {
		r.PlayLimitPerTurn = c.PlayLimitPerTurn
	}
	if c.StartingHand > 0 {
		r.StartingHand = c.StartingHand
	}
	if c.MPCeiling > 0 {
		r.MPCeiling = c.MPCeiling
	}
	return r
}

// StartMatch deals a new match for owner, replacing any stored one.
func (s *Service) StartMatch(ctx context.Context, owner string, req StartMatchRequest) (*Session, []Event, error) {
	if !req.Profile.Strategy.Valid() || !req.Profile.KeyStat.Valid() {
		return nil, nil, fmt.Errorf("%w: strategy %q key stat %q", ErrInvalidProfile, req.Profile.Strategy, req.Profile.KeyStat)
	}
	difficulty := req.AIDifficulty
	if difficulty == "" {
		difficulty = DefaultAIDifficulty
	}

	snap := domain.InitializeMatch(domain.MatchSetup{
		ID:              uuid.New().String(),
		Profile:         req.Profile,
		Deck:            req.Deck,
		OpponentType:    req.OpponentType,
		AIDifficulty:    difficulty,
		TimedMatch:      req.TimedMatch,
		MulliganEnabled: req.MulliganEnabled,
		Seed:            req.Seed,
		SeedSource:      s.rng,
		Rules:           s.rules,
	})
	session := &Session{Owner: owner, Snapshot: snap}

	_, opponentHand := domain.HandSizes(snap)
	events := []Event{{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			MatchID:          snap.Match.ID,
			OpponentType:     snap.Match.OpponentType,
			ActivePlayer:     snap.Match.ActivePlayer,
			Player:           NewOwnSide(snap.Player),
			OpponentHandSize: opponentHand,
		},
		Recipients: []string{owner},
	}}

	if err := s.store.Save(ctx, owner, snap); err != nil {
		return session, events, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return session, events, nil
}

// Resume restores the owner's in-progress match.
func (s *Service) Resume(ctx context.Context, owner string) (*Session, error) {
	snap, err := s.store.Load(ctx, owner)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &Session{Owner: owner, Snapshot: snap}, nil
}

// Abandon drops the owner's stored match.
func (s *Service) Abandon(ctx context.Context, owner string) error {
	if err := s.store.Delete(ctx, owner); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// BeginTurn runs the start-of-turn draw and upkeep for the active side.
// It may run once per turn.
func (s *Service) BeginTurn(ctx context.Context, session *Session) ([]Event, error) {
	snap := session.Snapshot
	if snap.Match.Over() {
		return nil, ErrMatchOver
	}
	if snap.Match.TurnBegun || snap.Match.Phase != domain.PhaseStart {
		return nil, ErrTurnAlreadyBegun
	}

	active := snap.Match.ActivePlayer
	before := snap.Side(active)
	m, p := domain.StartTurn(snap.Match, before)
	m, p = domain.Upkeep(m, p, s.regenFor(m))
	m.TurnBegun = true

	snap.Match = m
	snap = snap.WithSide(p)
	session.Snapshot = snap

	events := []Event{{
		Kind: EventTurnBegan,
		Payload: TurnBeganPayload{
			Side:     active,
			Turn:     m.Turn,
			Drew:     len(p.Deck) < len(before.Deck),
			MP:       p.MP,
			HandSize: len(p.Hand),
		},
	}}
	return events, s.persist(ctx, session)
}

func (s *Service) regenFor(m domain.MatchState) int {
	if s.regen == config.RegenStrategy {
		return domain.MPRegenPerTurn(m.Strategy)
	}
	return domain.FlatMPRegen
}

// PlayCard attempts to play cardID for side. Illegal plays are reported as
// events, not errors.
func (s *Service) PlayCard(ctx context.Context, session *Session, side domain.Side, cardID string) ([]Event, error) {
	if err := checkSide(side); err != nil {
		return nil, err
	}
	snap := session.Snapshot
	if snap.Match.Over() {
		return nil, ErrMatchOver
	}

	res := domain.PlayCard(snap.Match, snap.Side(side), cardID, s.catalog, s.resolver)
	snap.Match = res.Match
	snap = snap.WithSide(res.Player)

	var events []Event
	switch {
	case res.Success:
		events = append(events, Event{
			Kind: EventCardPlayed,
			Payload: CardPlayedPayload{
				Side:  side,
				Card:  res.Card,
				HP:    res.Player.HP,
				MP:    res.Player.MP,
				Plays: res.Player.ExtraPlaysRemaining,
			},
		})
	case res.Reason == domain.RejectOverplay:
		events = append(events, Event{
			Kind: EventOverplayPenalty,
			Payload: OverplayPenaltyPayload{
				Side:    side,
				CardID:  cardID,
				HP:      res.Player.HP,
				Fatigue: res.Player.Fatigue,
			},
		})
	default:
		events = append(events, Event{
			Kind:       EventPlayRejected,
			Payload:    PlayRejectedPayload{Side: side, CardID: cardID, Reason: res.Reason},
			Recipients: s.sideRecipients(session, side),
		})
	}

	snap.Match = domain.CheckOutcome(snap.Match, snap.Player, snap.Opponent)
	session.Snapshot = snap
	if snap.Match.Over() {
		events = append(events, matchEnded(snap.Match, EndReasonKnockout))
	}
	return events, s.persist(ctx, session)
}

// EndTurn finalizes side's turn and hands play to the other side.
func (s *Service) EndTurn(ctx context.Context, session *Session, side domain.Side) ([]Event, error) {
	if err := checkSide(side); err != nil {
		return nil, err
	}
	snap := session.Snapshot
	if snap.Match.Over() {
		return nil, ErrMatchOver
	}
	if snap.Match.ActivePlayer != side {
		return nil, ErrNotYourTurn
	}
	if !snap.Match.TurnBegun {
		return nil, ErrTurnNotBegun
	}

	before := len(snap.Side(side).Discard)
	m, p, o := domain.EndTurn(snap.Match, snap.Player, snap.Opponent)
	snap = domain.Snapshot{Match: m, Player: p, Opponent: o}
	after := snap.Side(side).Discard
	discarded := append([]string{}, after[before:]...)

	snap.Match = domain.CheckOutcome(snap.Match, snap.Player, snap.Opponent)
	session.Snapshot = snap

	events := []Event{{
		Kind: EventTurnEnded,
		Payload: TurnEndedPayload{
			Side:       side,
			Discarded:  discarded,
			Turn:       snap.Match.Turn,
			NextActive: snap.Match.ActivePlayer,
		},
	}}
	if snap.Match.Over() {
		events = append(events, matchEnded(snap.Match, EndReasonKnockout))
	}
	return events, s.persist(ctx, session)
}

// Concede ends the match with side losing.
func (s *Service) Concede(ctx context.Context, session *Session, side domain.Side) ([]Event, error) {
	if err := checkSide(side); err != nil {
		return nil, err
	}
	snap := session.Snapshot
	if snap.Match.Over() {
		return nil, ErrMatchOver
	}

	m, p := domain.Concede(snap.Match, snap.Side(side))
	snap.Match = m
	snap = snap.WithSide(p)
	session.Snapshot = snap

	events := []Event{matchEnded(m, EndReasonConcede)}
	return events, s.persist(ctx, session)
}

// Mulligan redraws side's opening hand.
func (s *Service) Mulligan(ctx context.Context, session *Session, side domain.Side) ([]Event, error) {
	if err := checkSide(side); err != nil {
		return nil, err
	}
	snap := session.Snapshot
	if snap.Match.Over() {
		return nil, ErrMatchOver
	}

	m, p, ok := domain.Mulligan(snap.Match, snap.Side(side))
	if !ok {
		return nil, ErrMulliganNotAllowed
	}
	snap.Match = m
	snap = snap.WithSide(p)
	session.Snapshot = snap

	events := []Event{{
		Kind:    EventMulligan,
		Payload: MulliganPayload{Side: side, HandSize: len(p.Hand)},
	}}
	return events, s.persist(ctx, session)
}

// ApplyOpponentDecision runs the opponent's turn: it begins the turn if
// needed, plays the planned cards in order until one fails and then ends
// the turn. A decision is the whole turn, so the turn ends even when
// d.EndTurn is false; no host asks the opponent twice in one turn.
func (s *Service) ApplyOpponentDecision(ctx context.Context, session *Session, d domain.Decision) ([]Event, error) {
	snap := session.Snapshot
	if snap.Match.Over() {
		return nil, ErrMatchOver
	}
	if snap.Match.ActivePlayer != domain.SideOpponent {
		return nil, ErrNotYourTurn
	}

	var events []Event
	if !snap.Match.TurnBegun {
		evs, err := s.BeginTurn(ctx, session)
		events = append(events, evs...)
		if err != nil {
			return events, err
		}
	}

	for _, play := range d.Plays {
		evs, err := s.PlayCard(ctx, session, domain.SideOpponent, play.CardID)
		events = append(events, evs...)
		if err != nil {
			return events, err
		}
		if session.Snapshot.Match.Over() || !playSucceeded(evs) {
			break
		}
	}
	if session.Snapshot.Match.Over() {
		return events, nil
	}

	evs, err := s.EndTurn(ctx, session, domain.SideOpponent)
	return append(events, evs...), err
}

func playSucceeded(events []Event) bool {
	for _, ev := range events {
		if ev.Kind == EventCardPlayed {
			return true
		}
	}
	return false
}

// persist saves a live match or drops a finished one.
func (s *Service) persist(ctx context.Context, session *Session) error {
	if session.Snapshot.Match.Over() {
		if err := s.store.Delete(ctx, session.Owner); err != nil {
			return fmt.Errorf("failed to delete finished match: %w", err)
		}
		return nil
	}
	if err := s.store.Save(ctx, session.Owner, session.Snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *Service) sideRecipients(session *Session, side domain.Side) []string {
	if side == domain.SidePlayer {
		return []string{session.Owner}
	}
	return nil
}

func matchEnded(m domain.MatchState, reason string) Event {
	return Event{
		Kind:    EventMatchEnded,
		Payload: MatchEndedPayload{Winner: m.Winner, Reason: reason, Turn: m.Turn},
	}
}

func checkSide(side domain.Side) error {
	if side != domain.SidePlayer && side != domain.SideOpponent {
		return fmt.Errorf("%w: %q", ErrUnknownSide, side)
	}
	return nil
}
