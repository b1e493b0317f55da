// Package httpapi hosts matches over HTTP and websockets for running the
// game without Nakama.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"cardduel/internal/app"
	"cardduel/internal/bot"
	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

const maxBodyBytes = 1 << 20

var (
	errMatchInProgress = errors.New("match already in progress")
	errUnauthorized    = errors.New("missing or invalid token")
	errForbidden       = errors.New("token does not belong to this owner")
)

// Options configures a Server. Tokens may be nil to serve without
// authentication.
type Options struct {
	Matches           *app.Service
	Decks             *app.DeckService
	Tokens            *app.TokenService
	NewBrain          bot.Factory
	Roster            *bot.Roster
	DeckSize          int
	DefaultDifficulty string
	Logger            *zap.Logger
}

// Server routes match and deck requests. Operations on one owner's match
// are serialized; different owners proceed independently.
type Server struct {
	opts   Options
	logger *zap.Logger
	router *mux.Router
	hub    *hub

	mu    sync.Mutex
	slots map[string]*slot
}

// slot holds one owner's live session and opponent.
type slot struct {
	mu      sync.Mutex
	session *app.Session
	agent   *bot.Agent
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DeckSize <= 0 {
		opts.DeckSize = domain.DefaultDeckSize
	}
	if opts.DefaultDifficulty == "" {
		opts.DefaultDifficulty = app.DefaultAIDifficulty
	}
	s := &Server{
		opts:   opts,
		logger: logger,
		router: mux.NewRouter(),
		hub:    newHub(),
		slots:  make(map[string]*slot),
	}

	s.router.HandleFunc("/matches", s.handleStart).Methods(http.MethodPost)
	s.router.HandleFunc("/matches/{owner}", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/matches/{owner}/begin-turn", s.action(s.beginTurn)).Methods(http.MethodPost)
	s.router.HandleFunc("/matches/{owner}/play", s.action(s.playCard)).Methods(http.MethodPost)
	s.router.HandleFunc("/matches/{owner}/end-turn", s.action(s.endTurn)).Methods(http.MethodPost)
	s.router.HandleFunc("/matches/{owner}/concede", s.action(s.concede)).Methods(http.MethodPost)
	s.router.HandleFunc("/matches/{owner}/mulligan", s.action(s.mulligan)).Methods(http.MethodPost)
	s.router.HandleFunc("/matches/{owner}/events", s.handleEvents).Methods(http.MethodGet)
	s.router.HandleFunc("/decks/import", s.handleImportDeck).Methods(http.MethodPost)
	s.router.HandleFunc("/decks/export", s.handleExportDeck).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) slotFor(owner string) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[owner]
	if !ok {
		sl = &slot{}
		s.slots[owner] = sl
	}
	return sl
}

// load restores the owner's stored match into sl. Callers hold sl.mu.
func (s *Server) load(ctx context.Context, owner string, sl *slot) error {
	if sl.session != nil {
		return nil
	}
	session, err := s.opts.Matches.Resume(ctx, owner)
	if err != nil {
		return err
	}
	return s.attach(sl, session)
}

func (s *Server) attach(sl *slot, session *app.Session) error {
	m := session.Snapshot.Match
	brain, err := s.opts.NewBrain(m.OpponentType, m.AIDifficulty)
	if err != nil {
		return err
	}
	persona := s.opts.Roster.Pick(m.OpponentType, m.AIDifficulty)
	sl.session = session
	sl.agent = &bot.Agent{ID: persona.UserID, Name: persona.Name(), Brain: brain}
	return nil
}

// StartRequest is the POST /matches body. Owner may be omitted when the
// request carries a token.
type StartRequest struct {
	Owner        string              `json:"owner"`
	Profile      *domain.Profile     `json:"profile"`
	Deck         *domain.Deck        `json:"deck"`
	OpponentType domain.OpponentType `json:"opponent_type"`
	Difficulty   string              `json:"difficulty"`
	Timed        bool                `json:"timed"`
	Mulligan     bool                `json:"mulligan"`
	Seed         string              `json:"seed"`
}

// ActionResponse is returned by every match operation.
type ActionResponse struct {
	Events []Message       `json:"events"`
	View   *app.PlayerView `json:"view,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	req := StartRequest{}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.opts.Tokens != nil && req.Owner == "" {
		if userID, err := s.verify(r); err == nil {
			req.Owner = userID
		}
	}
	if req.Owner == "" {
		writeError(w, http.StatusBadRequest, "owner required")
		return
	}
	if err := s.authorizeOwner(r, req.Owner); err != nil {
		s.writeErr(w, err)
		return
	}
	if req.OpponentType == "" {
		req.OpponentType = domain.OpponentLocalAI
	}
	if req.OpponentType != domain.OpponentLocalAI && req.OpponentType != domain.OpponentLLM {
		writeError(w, http.StatusBadRequest, "unknown opponent type")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = s.opts.DefaultDifficulty
	}
	profile := domain.Profile{Strategy: domain.StrategyBalanced, KeyStat: domain.KeyStatCharisma}
	if req.Profile != nil {
		profile = *req.Profile
	}
	deck, err := s.resolveDeck(req.Deck)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sl := s.slotFor(req.Owner)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if err := s.load(r.Context(), req.Owner, sl); err != nil && !errors.Is(err, app.ErrNoMatch) {
		s.writeErr(w, err)
		return
	}
	if sl.session != nil && !sl.session.Snapshot.Match.Over() {
		s.writeErr(w, errMatchInProgress)
		return
	}

	session, events, err := s.opts.Matches.StartMatch(r.Context(), req.Owner, app.StartMatchRequest{
		Profile:         profile,
		Deck:            deck,
		OpponentType:    req.OpponentType,
		AIDifficulty:    req.Difficulty,
		TimedMatch:      req.Timed,
		MulliganEnabled: req.Mulligan,
		Seed:            req.Seed,
	})
	if err != nil && session == nil {
		s.writeErr(w, err)
		return
	}
	if err != nil {
		s.logger.Warn("match started but not persisted", zap.String("owner", req.Owner), zap.Error(err))
	}
	if err := s.attach(sl, session); err != nil {
		sl.session = nil
		s.logger.Error("failed to create opponent", zap.String("owner", req.Owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create opponent")
		return
	}

	s.logger.Info("match started",
		zap.String("owner", req.Owner),
		zap.String("match_id", session.Snapshot.Match.ID),
		zap.String("seed", session.Snapshot.Match.Seed),
		zap.String("opponent", string(req.OpponentType)),
		zap.String("difficulty", req.Difficulty))
	s.respond(w, http.StatusCreated, req.Owner, sl, events)
}

func (s *Server) resolveDeck(deck *domain.Deck) (domain.Deck, error) {
	if deck == nil {
		return s.opts.Decks.StarterDeck("")
	}
	if issues := domain.ValidateDeck(*deck, s.opts.Matches.Catalog(), s.opts.DeckSize); len(issues) > 0 {
		return domain.Deck{}, fmt.Errorf("deck is not playable: %s", issues[0])
	}
	return *deck, nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.authorize(w, r)
	if !ok {
		return
	}
	view, err := s.currentView(r.Context(), owner)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) currentView(ctx context.Context, owner string) (app.PlayerView, error) {
	sl := s.slotFor(owner)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if err := s.load(ctx, owner, sl); err != nil {
		return app.PlayerView{}, err
	}
	return app.NewPlayerView(sl.session.Snapshot), nil
}

// actionFunc runs one operation on a loaded session under its slot lock.
type actionFunc func(ctx context.Context, r *http.Request, sl *slot) ([]app.Event, error)

func (s *Server) action(fn actionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := s.authorize(w, r)
		if !ok {
			return
		}
		sl := s.slotFor(owner)
		sl.mu.Lock()
		defer sl.mu.Unlock()

		if err := s.load(r.Context(), owner, sl); err != nil {
			s.writeErr(w, err)
			return
		}
		events, err := fn(r.Context(), r, sl)
		s.hub.publishEvents(owner, events)
		if err != nil {
			s.logger.Warn("match operation failed",
				zap.String("owner", owner),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			s.writeErr(w, err)
			return
		}
		s.respond(w, http.StatusOK, owner, sl, events)
	}
}

func (s *Server) beginTurn(ctx context.Context, r *http.Request, sl *slot) ([]app.Event, error) {
	if sl.session.Snapshot.Match.ActivePlayer != domain.SidePlayer {
		return nil, app.ErrNotYourTurn
	}
	return s.opts.Matches.BeginTurn(ctx, sl.session)
}

// PlayRequest is the /play body.
type PlayRequest struct {
	CardID string `json:"card_id"`
}

func (s *Server) playCard(ctx context.Context, r *http.Request, sl *slot) ([]app.Event, error) {
	req := PlayRequest{}
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if req.CardID == "" {
		return nil, fmt.Errorf("%w: card_id required", errBadRequest)
	}
	return s.opts.Matches.PlayCard(ctx, sl.session, domain.SidePlayer, req.CardID)
}

// endTurn ends the player's turn and plays the opponent's turn before
// returning.
func (s *Server) endTurn(ctx context.Context, r *http.Request, sl *slot) ([]app.Event, error) {
	events, err := s.opts.Matches.EndTurn(ctx, sl.session, domain.SidePlayer)
	if err != nil {
		return events, err
	}
	m := sl.session.Snapshot.Match
	if m.Over() || m.ActivePlayer != domain.SideOpponent {
		return events, nil
	}
	more, err := s.playOpponent(ctx, sl)
	return append(events, more...), err
}

func (s *Server) playOpponent(ctx context.Context, sl *slot) ([]app.Event, error) {
	var events []app.Event
	if !sl.session.Snapshot.Match.TurnBegun {
		evs, err := s.opts.Matches.BeginTurn(ctx, sl.session)
		events = append(events, evs...)
		if err != nil {
			return events, err
		}
	}
	d, err := sl.agent.Play(ctx, sl.session.Snapshot.Clone(), s.opts.Matches.Catalog())
	if err != nil {
		s.logger.Warn("opponent fell back to the default decision",
			zap.String("owner", sl.session.Owner),
			zap.String("agent", sl.agent.Name),
			zap.Error(err))
	}
	evs, err := s.opts.Matches.ApplyOpponentDecision(ctx, sl.session, d)
	return append(events, evs...), err
}

func (s *Server) concede(ctx context.Context, r *http.Request, sl *slot) ([]app.Event, error) {
	return s.opts.Matches.Concede(ctx, sl.session, domain.SidePlayer)
}

func (s *Server) mulligan(ctx context.Context, r *http.Request, sl *slot) ([]app.Event, error) {
	return s.opts.Matches.Mulligan(ctx, sl.session, domain.SidePlayer)
}

func (s *Server) respond(w http.ResponseWriter, status int, owner string, sl *slot, events []app.Event) {
	resp := ActionResponse{Events: []Message{}}
	for _, ev := range visibleTo(owner, events) {
		resp.Events = append(resp.Events, Message{Type: string(ev.Kind), Data: ev.Payload})
	}
	view := app.NewPlayerView(sl.session.Snapshot)
	resp.View = &view
	s.hub.publish(owner, Message{Type: "state", Data: view})
	writeJSON(w, status, resp)
}

// ImportResponse carries the sanitized deck and what was dropped.
type ImportResponse struct {
	Deck   domain.Deck      `json:"deck"`
	Report app.ImportReport `json:"report"`
}

func (s *Server) handleImportDeck(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	deck, report, err := s.opts.Decks.Import(data)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{Deck: deck, Report: report})
}

func (s *Server) handleExportDeck(w http.ResponseWriter, r *http.Request) {
	deck := domain.Deck{}
	if err := decodeBody(r, &deck); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := s.opts.Decks.Export(deck)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="deck.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// authorize resolves the {owner} path variable and checks the caller's
// token when authentication is on.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := mux.Vars(r)["owner"]
	if err := s.authorizeOwner(r, owner); err != nil {
		s.writeErr(w, err)
		return "", false
	}
	return owner, true
}

func (s *Server) authorizeOwner(r *http.Request, owner string) error {
	if s.opts.Tokens == nil {
		return nil
	}
	userID, err := s.verify(r)
	if err != nil {
		return err
	}
	if userID != owner {
		return errForbidden
	}
	return nil
}

// verify reads a bearer token, or the token query parameter for
// websocket clients that cannot set headers.
func (s *Server) verify(r *http.Request) (string, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", errUnauthorized
	}
	userID, _, err := s.opts.Tokens.VerifyToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUnauthorized, err)
	}
	return userID, nil
}

var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, app.ErrNoMatch), errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMatchInProgress), errors.Is(err, app.ErrMatchOver), errors.Is(err, app.ErrNotYourTurn),
		errors.Is(err, app.ErrTurnAlreadyBegun), errors.Is(err, app.ErrTurnNotBegun), errors.Is(err, app.ErrMulliganNotAllowed):
		return http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, app.ErrInvalidProfile), errors.Is(err, app.ErrUnknownSide),
		errors.Is(err, app.ErrDeckIncomplete), errors.Is(err, app.ErrInvalidDeckFile), errors.Is(err, app.ErrNoStarterDeck):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
