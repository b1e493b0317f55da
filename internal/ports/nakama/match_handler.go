package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"

	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/app"
	"cardduel/internal/bot"
	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

const (
	tickRate = 1
	// endGraceTicks keeps a finished match alive so the client receives
	// the final events before the match closes.
	endGraceTicks = 5
	// llmGraceTicks is added to the LLM timeout before a pending call is
	// abandoned by the loop.
	llmGraceTicks = 2
)

// MatchState holds the authoritative runtime state for one duel: a single
// human owner against one opponent agent.
type MatchState struct {
	Owner            string           `json:"owner"`
	Presence         runtime.Presence `json:"-"`
	Resume           bool             `json:"resume"`
	Tick             int64            `json:"tick"`
	Session          *app.Session     `json:"-"`
	Agent            *bot.Agent       `json:"-"`
	BotMinDelay      int              `json:"bot_min_delay"`
	BotMaxDelay      int              `json:"bot_max_delay"`
	BotWaitUntil     int64            `json:"bot_wait_until"`
	TurnDuration     int              `json:"turn_duration"`
	TurnDeadline     int64            `json:"turn_deadline"`
	TurnDeadlineTurn int              `json:"turn_deadline_turn"`
	LLMTimeout       int              `json:"llm_timeout"`
	EndedAt          int64            `json:"ended_at"`

	pending *pendingDecision
}

// pendingDecision is an opponent decision being computed off the loop.
type pendingDecision struct {
	result   chan bot.Decision
	cancel   context.CancelFunc
	turn     int
	deadline int64
}

func (ms *MatchState) live() bool {
	return ms.Session != nil && !ms.Session.Snapshot.Match.Over()
}

type matchLabel struct {
	domain.LabelPayload
	Owner string `json:"owner"`
}

// NewMatchFactory returns the factory function registered with Nakama.
func NewMatchFactory(deps *Deps) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule) (runtime.Match, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return &matchHandler{deps: deps}, nil
	}
}

type matchHandler struct {
	deps *Deps
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing duel.")

	cfg := mh.deps.Config
	state := &MatchState{
		BotMinDelay:  cfg.BotMinDelaySeconds,
		BotMaxDelay:  cfg.BotMaxDelaySeconds,
		TurnDuration: cfg.TurnDurationSeconds,
		LLMTimeout:   cfg.LLM.TimeoutSeconds,
	}
	if owner, ok := params["owner"].(string); ok {
		state.Owner = owner
	}
	if resume, ok := params["resume"].(bool); ok {
		state.Resume = resume
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}

	label, err := mh.label(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if matchState.Owner != "" && presence.GetUserId() != matchState.Owner {
		return state, false, "Match is private"
	}
	if matchState.Presence != nil {
		return state, false, "Match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presence = p
		if matchState.Owner == "" {
			matchState.Owner = p.GetUserId()
		}
	}

	if matchState.Session == nil && matchState.Resume {
		session, err := mh.deps.Matches.Resume(ctx, matchState.Owner)
		switch {
		case errors.Is(err, app.ErrNoMatch):
			logger.Info("MatchJoin: Nothing to resume for %s.", matchState.Owner)
		case err != nil:
			logger.Error("MatchJoin: Failed to resume match for %s: %v", matchState.Owner, err)
		default:
			if err := mh.attach(matchState, session); err != nil {
				logger.Error("MatchJoin: Failed to create opponent for %s: %v", matchState.Owner, err)
			} else {
				logger.Info("MatchJoin: Resumed match %s at turn %d.", session.Snapshot.Match.ID, session.Snapshot.Match.Turn)
			}
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.sendMatchState(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when the owner leaves. The stored snapshot stays
// resumable; a pending opponent call is cancelled and resolved with the
// default decision.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		if matchState.Presence != nil && p.GetUserId() == matchState.Presence.GetUserId() {
			matchState.Presence = nil
		}
	}
	if matchState.Presence != nil {
		return matchState
	}

	mh.abandonPending(ctx, matchState, dispatcher, logger)
	logger.Info("MatchLeave: Owner %s left, terminating match.", matchState.Owner)
	return nil
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		if msg.GetUserId() != matchState.Owner {
			logger.Warn("MatchLoop: Ignoring message from non-owner %s", msg.GetUserId())
			continue
		}
		switch msg.GetOpCode() {
		case OpStartMatch:
			mh.handleStartMatch(ctx, matchState, dispatcher, logger, msg)
		case OpBeginTurn:
			mh.handleBeginTurn(ctx, matchState, dispatcher, logger)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpEndTurn:
			mh.handleEndTurn(ctx, matchState, dispatcher, logger)
		case OpConcede:
			mh.handleConcede(ctx, matchState, dispatcher, logger)
		case OpMulligan:
			mh.handleMulligan(ctx, matchState, dispatcher, logger)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processOpponent(ctx, matchState, dispatcher, logger)
	mh.processTurnTimer(ctx, matchState, dispatcher, logger)

	if matchState.Session != nil && matchState.Session.Snapshot.Match.Over() {
		if matchState.EndedAt == 0 {
			matchState.EndedAt = tick
		}
		if tick-matchState.EndedAt >= endGraceTicks {
			logger.Info("MatchLoop: Match %s finished, terminating.", matchState.Session.Snapshot.Match.ID)
			return nil
		}
	}

	return matchState
}

// StartMatchRequest is the OpStartMatch payload. The deck is taken from
// DeckID, then Deck, then the starter deck of the first collection.
type StartMatchRequest struct {
	DeckID       string              `json:"deck_id"`
	Deck         *domain.Deck        `json:"deck"`
	OpponentType domain.OpponentType `json:"opponent_type"`
	Difficulty   string              `json:"difficulty"`
	Timed        bool                `json:"timed"`
	Mulligan     bool                `json:"mulligan"`
	Seed         string              `json:"seed"`
}

func (mh *matchHandler) handleStartMatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if state.live() {
		mh.sendError(state, dispatcher, logger, errCodeFailedPrecondition, "match already in progress")
		return
	}

	req := StartMatchRequest{}
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &req); err != nil {
			logger.Warn("StartMatch: Invalid request from %s: %v", state.Owner, err)
			mh.sendError(state, dispatcher, logger, errCodeInvalidArgument, "invalid start request")
			return
		}
	}
	if req.OpponentType == "" {
		req.OpponentType = domain.OpponentLocalAI
	}
	if req.OpponentType != domain.OpponentLocalAI && req.OpponentType != domain.OpponentLLM {
		mh.sendError(state, dispatcher, logger, errCodeInvalidArgument, "unknown opponent type")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = mh.deps.Config.DefaultDifficulty
	}

	profile, err := mh.deps.Profiles.GetProfile(ctx, state.Owner)
	if errors.Is(err, ports.ErrNotFound) {
		profile = domain.Profile{Strategy: domain.StrategyBalanced, KeyStat: domain.KeyStatCharisma}
	} else if err != nil {
		logger.Error("StartMatch: Failed to load profile for %s: %v", state.Owner, err)
		mh.sendError(state, dispatcher, logger, errCodeInternal, "failed to load profile")
		return
	}

	deck, err := mh.resolveDeck(ctx, state.Owner, req)
	if err != nil {
		logger.Warn("StartMatch: Deck rejected for %s: %v", state.Owner, err)
		mh.sendError(state, dispatcher, logger, errCodeInvalidArgument, err.Error())
		return
	}

	session, events, err := mh.deps.Matches.StartMatch(ctx, state.Owner, app.StartMatchRequest{
		Profile:         profile,
		Deck:            deck,
		OpponentType:    req.OpponentType,
		AIDifficulty:    req.Difficulty,
		TimedMatch:      req.Timed,
		MulliganEnabled: req.Mulligan,
		Seed:            req.Seed,
	})
	if err != nil && session == nil {
		logger.Error("StartMatch: Failed to start match: %v", err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
		return
	}
	if err != nil {
		logger.Warn("StartMatch: Match started but not persisted: %v", err)
	}
	if err := mh.attach(state, session); err != nil {
		logger.Error("StartMatch: Failed to create opponent: %v", err)
		mh.sendError(state, dispatcher, logger, errCodeInternal, "failed to create opponent")
		state.Session = nil
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastEvents(state, dispatcher, logger, events)
	logger.Info("StartMatch: Match %s started for %s against %s (%s).", session.Snapshot.Match.ID, state.Owner, state.Agent.Name, req.OpponentType)
}

func (mh *matchHandler) resolveDeck(ctx context.Context, owner string, req StartMatchRequest) (domain.Deck, error) {
	var deck domain.Deck
	switch {
	case req.DeckID != "":
		saved, err := mh.deps.Decks.Get(ctx, owner, req.DeckID)
		if err != nil {
			return domain.Deck{}, err
		}
		deck = saved.Deck
	case req.Deck != nil:
		deck = *req.Deck
	default:
		return mh.deps.Decks.StarterDeck("")
	}
	if issues := domain.ValidateDeck(deck, mh.deps.Catalog, mh.deps.Config.DeckSize); len(issues) > 0 {
		return domain.Deck{}, errors.New("deck is not playable: " + issues[0].String())
	}
	return deck, nil
}

// attach binds a session and its opponent agent to the match.
func (mh *matchHandler) attach(state *MatchState, session *app.Session) error {
	agent, err := mh.deps.newAgent(session.Snapshot.Match)
	if err != nil {
		return err
	}
	state.Session = session
	state.Agent = agent
	state.BotWaitUntil = 0
	state.TurnDeadline = 0
	state.EndedAt = 0
	return nil
}

func (mh *matchHandler) ownerTurn(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) bool {
	if state.Session == nil {
		mh.sendError(state, dispatcher, logger, errCodeFailedPrecondition, "no match in progress")
		return false
	}
	return true
}

func (mh *matchHandler) handleBeginTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !mh.ownerTurn(state, dispatcher, logger) {
		return
	}
	if state.Session.Snapshot.Match.ActivePlayer != domain.SidePlayer {
		mh.sendError(state, dispatcher, logger, errorCode(app.ErrNotYourTurn), app.ErrNotYourTurn.Error())
		return
	}
	events, err := mh.deps.Matches.BeginTurn(ctx, state.Session)
	mh.finish(state, dispatcher, logger, "BeginTurn", events, err)
}

// PlayCardRequest is the OpPlayCard payload.
type PlayCardRequest struct {
	CardID string `json:"card_id"`
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	if !mh.ownerTurn(state, dispatcher, logger) {
		return
	}
	req := PlayCardRequest{}
	if err := json.Unmarshal(msg.GetData(), &req); err != nil || req.CardID == "" {
		logger.Warn("PlayCard: Invalid request from %s: %v", state.Owner, err)
		mh.sendError(state, dispatcher, logger, errCodeInvalidArgument, "invalid play request")
		return
	}
	events, err := mh.deps.Matches.PlayCard(ctx, state.Session, domain.SidePlayer, req.CardID)
	mh.finish(state, dispatcher, logger, "PlayCard", events, err)
}

func (mh *matchHandler) handleEndTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !mh.ownerTurn(state, dispatcher, logger) {
		return
	}
	events, err := mh.deps.Matches.EndTurn(ctx, state.Session, domain.SidePlayer)
	mh.finish(state, dispatcher, logger, "EndTurn", events, err)
}

func (mh *matchHandler) handleConcede(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !mh.ownerTurn(state, dispatcher, logger) {
		return
	}
	mh.cancelPending(state)
	events, err := mh.deps.Matches.Concede(ctx, state.Session, domain.SidePlayer)
	mh.finish(state, dispatcher, logger, "Concede", events, err)
}

func (mh *matchHandler) handleMulligan(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !mh.ownerTurn(state, dispatcher, logger) {
		return
	}
	events, err := mh.deps.Matches.Mulligan(ctx, state.Session, domain.SidePlayer)
	mh.finish(state, dispatcher, logger, "Mulligan", events, err)
	if err == nil {
		mh.sendMatchState(state, dispatcher, logger)
	}
}

// finish broadcasts the events of an owner action and reports its error.
func (mh *matchHandler) finish(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, action string, events []app.Event, err error) {
	mh.broadcastEvents(state, dispatcher, logger, events)
	if err != nil {
		logger.Warn("%s: User %s failed: %v", action, state.Owner, err)
		mh.sendError(state, dispatcher, logger, errorCode(err), err.Error())
	}
	mh.updateLabel(state, dispatcher, logger)
}

// processOpponent drives the opponent's turn: wait out the configured
// delay, begin the turn, then decide. Local brains decide inline; the LLM
// brain runs in a goroutine whose result is collected on a later tick.
func (mh *matchHandler) processOpponent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.live() || state.Session.Snapshot.Match.ActivePlayer != domain.SideOpponent {
		state.BotWaitUntil = 0
		return
	}

	if p := state.pending; p != nil {
		select {
		case d := <-p.result:
			state.pending = nil
			mh.applyDecision(ctx, state, dispatcher, logger, d)
		default:
			if state.Tick >= p.deadline {
				logger.Warn("processOpponent: Opponent decision for turn %d timed out, ending turn.", p.turn)
				mh.cancelPending(state)
				mh.applyDecision(ctx, state, dispatcher, logger, domain.DefaultDecision())
			}
		}
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if span := state.BotMaxDelay - state.BotMinDelay; span > 0 {
			delay += rand.Intn(span + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processOpponent: Opponent will act at tick %d (current %d)", state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	if !state.Session.Snapshot.Match.TurnBegun {
		events, err := mh.deps.Matches.BeginTurn(ctx, state.Session)
		mh.broadcastEvents(state, dispatcher, logger, events)
		if err != nil {
			logger.Error("processOpponent: Failed to begin opponent turn: %v", err)
			return
		}
	}

	snap := state.Session.Snapshot.Clone()
	agent := state.Agent
	if snap.Match.OpponentType == domain.OpponentLLM {
		callCtx, cancel := context.WithCancel(context.Background())
		p := &pendingDecision{
			result:   make(chan bot.Decision, 1),
			cancel:   cancel,
			turn:     snap.Match.Turn,
			deadline: state.Tick + int64(state.LLMTimeout+llmGraceTicks),
		}
		state.pending = p
		catalog := mh.deps.Catalog
		go func() {
			d, err := agent.Play(callCtx, snap, catalog)
			if err != nil {
				d = domain.DefaultDecision()
			}
			p.result <- d
		}()
		mh.broadcast(state, dispatcher, logger, OpOpponentThinking, map[string]interface{}{"turn": snap.Match.Turn}, nil)
		return
	}

	d, err := agent.Play(ctx, snap, mh.deps.Catalog)
	if err != nil {
		logger.Warn("processOpponent: Opponent %s failed to decide: %v", agent.Name, err)
	}
	mh.applyDecision(ctx, state, dispatcher, logger, d)
}

func (mh *matchHandler) applyDecision(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, d bot.Decision) {
	events, err := mh.deps.Matches.ApplyOpponentDecision(ctx, state.Session, d)
	mh.broadcastEvents(state, dispatcher, logger, events)
	if err != nil {
		logger.Error("applyDecision: Failed to apply opponent decision: %v", err)
	}
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) cancelPending(state *MatchState) {
	if state.pending != nil {
		state.pending.cancel()
		state.pending = nil
	}
}

// abandonPending cancels an in-flight opponent call and resolves the turn
// with the default decision so the stored snapshot is consistent.
func (mh *matchHandler) abandonPending(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.pending == nil {
		return
	}
	mh.cancelPending(state)
	if state.live() && state.Session.Snapshot.Match.ActivePlayer == domain.SideOpponent {
		mh.applyDecision(ctx, state, dispatcher, logger, domain.DefaultDecision())
	}
}

// processTurnTimer ends the owner's turn once a timed turn runs out,
// beginning it first if the owner never did.
func (mh *matchHandler) processTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.live() || state.TurnDuration <= 0 {
		state.TurnDeadline = 0
		return
	}
	m := state.Session.Snapshot.Match
	if !m.TimedMatch || m.ActivePlayer != domain.SidePlayer {
		state.TurnDeadline = 0
		return
	}
	if state.TurnDeadline == 0 || state.TurnDeadlineTurn != m.Turn {
		state.TurnDeadline = state.Tick + int64(state.TurnDuration)
		state.TurnDeadlineTurn = m.Turn
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}
	state.TurnDeadline = 0
	logger.Info("processTurnTimer: Turn %d of %s timed out.", m.Turn, state.Owner)

	if !m.TurnBegun {
		events, err := mh.deps.Matches.BeginTurn(ctx, state.Session)
		mh.broadcastEvents(state, dispatcher, logger, events)
		if err != nil {
			logger.Error("processTurnTimer: Failed to begin turn: %v", err)
			return
		}
	}
	if !state.live() {
		return
	}
	events, err := mh.deps.Matches.EndTurn(ctx, state.Session, domain.SidePlayer)
	mh.finish(state, dispatcher, logger, "processTurnTimer", events, err)
}

// broadcastEvents encodes app events and dispatches them to their recipients.
func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, data, err := encodeEvent(ev)
		if err != nil {
			logger.Error("Failed to encode event %v: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if state.Presence != nil && state.Presence.GetUserId() == uid {
					recipients = append(recipients, state.Presence)
				}
			}
			// Intended for someone who is not connected: never fall back to a broadcast.
			if len(recipients) == 0 {
				continue
			}
		}
		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Error("Failed to dispatch event %v: %v", ev.Kind, err)
		}
	}
}

func (mh *matchHandler) broadcast(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, opCode int64, payload interface{}, recipients []runtime.Presence) {
	data, err := encodeWire(payload)
	if err != nil {
		logger.Error("Failed to encode message %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("Failed to dispatch message %d: %v", opCode, err)
	}
}

// sendMatchState sends the owner's view of the match, or an empty lobby
// view when nothing has started yet.
func (mh *matchHandler) sendMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Presence == nil {
		return
	}
	payload := map[string]interface{}{"match": nil}
	if state.Session != nil {
		view := app.NewPlayerView(state.Session.Snapshot)
		payload = map[string]interface{}{
			"view":     view,
			"opponent": state.Agent.Name,
		}
	}
	mh.broadcast(state, dispatcher, logger, OpMatchState, payload, []runtime.Presence{state.Presence})
}

// sendError sends an error event to the owner.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	if state.Presence == nil {
		logger.Warn("Cannot send error to %s: Presence not found", state.Owner)
		return
	}
	payload := map[string]interface{}{"code": code, "message": message}
	mh.broadcast(state, dispatcher, logger, OpError, payload, []runtime.Presence{state.Presence})
}

func (mh *matchHandler) label(state *MatchState) (string, error) {
	var m *domain.MatchState
	if state.Session != nil {
		m = &state.Session.Snapshot.Match
	}
	data, err := encodeWire(matchLabel{
		LabelPayload: domain.ComputeLabel(m, state.Presence != nil),
		Owner:        state.Owner,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.label(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	if matchState, ok := state.(*MatchState); ok {
		mh.abandonPending(ctx, matchState, dispatcher, logger)
	}
	logger.Debug("MatchTerminate: Match terminated with %d seconds grace", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

// errorCode maps service errors onto runtime error codes.
func errorCode(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound), errors.Is(err, app.ErrNoMatch):
		return errCodeNotFound
	case errors.Is(err, app.ErrMatchOver), errors.Is(err, app.ErrNotYourTurn),
		errors.Is(err, app.ErrTurnAlreadyBegun), errors.Is(err, app.ErrTurnNotBegun),
		errors.Is(err, app.ErrMulliganNotAllowed), errors.Is(err, ports.ErrInsufficientTokens):
		return errCodeFailedPrecondition
	case errors.Is(err, app.ErrInvalidProfile), errors.Is(err, app.ErrUnknownSide),
		errors.Is(err, app.ErrDeckIncomplete), errors.Is(err, app.ErrInvalidDeckFile):
		return errCodeInvalidArgument
	default:
		return errCodeInternal
	}
}
