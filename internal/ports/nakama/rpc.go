package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/app"
	"cardduel/internal/app/onboarding"
	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

type rpcHandler struct {
	deps *Deps
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, deps *Deps) error {
	h := &rpcHandler{deps: deps}
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcQuickMatch:   h.quickMatch,
		RpcResumeMatch:  h.resumeMatch,
		RpcSetupProfile: h.setupProfile,
		RpcGetProfile:   h.getProfile,
		RpcUnlockCard:   h.unlockCard,
		RpcSaveDeck:     h.saveDeck,
		RpcListDecks:    h.listDecks,
		RpcExportDeck:   h.exportDeck,
		RpcImportDeck:   h.importDeck,
		RpcLLMToken:     h.llmToken,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}
	return nil
}

func callerID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", errCodeUnauthenticated)
	}
	return userID, nil
}

func decodePayload(payload string, out interface{}) error {
	if payload == "" {
		return runtime.NewError("payload required", errCodeInvalidArgument)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return runtime.NewError("invalid payload", errCodeInvalidArgument)
	}
	return nil
}

// rpcError maps service errors onto runtime errors.
func rpcError(logger runtime.Logger, rpc, userID string, err error) error {
	switch {
	case errors.Is(err, onboarding.ErrInvalidName), errors.Is(err, onboarding.ErrInvalidChoice),
		errors.Is(err, onboarding.ErrUnknownCard), errors.Is(err, onboarding.ErrNotForSale):
		return runtime.NewError(err.Error(), errCodeInvalidArgument)
	case errors.Is(err, onboarding.ErrAlreadyUnlocked):
		return runtime.NewError(err.Error(), errCodeFailedPrecondition)
	}
	code := errorCode(err)
	if code == errCodeInternal {
		logger.Error("%s [User:%s]: %v", rpc, userID, err)
		return runtime.NewError("internal error", errCodeInternal)
	}
	return runtime.NewError(err.Error(), code)
}

// SetupProfileRequest is the setup_profile payload.
type SetupProfileRequest struct {
	Name     string          `json:"name"`
	Strategy domain.Strategy `json:"strategy"`
	KeyStat  domain.KeyStat  `json:"key_stat"`
}

func (h *rpcHandler) setupProfile(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := SetupProfileRequest{}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	profile, err := h.deps.Onboarding.SetupProfile(ctx, userID, req.Name, req.Strategy, req.KeyStat)
	if err != nil {
		return "", rpcError(logger, "RpcSetupProfile", userID, err)
	}
	logger.Info("RpcSetupProfile [User:%s]: Profile saved (%s/%s).", userID, profile.Strategy, profile.KeyStat)
	return marshalResponse(profile)
}

func (h *rpcHandler) getProfile(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	profile, err := h.deps.Onboarding.GetProfile(ctx, userID)
	if err != nil {
		return "", rpcError(logger, "RpcGetProfile", userID, err)
	}
	return marshalResponse(profile)
}

// UnlockCardRequest is the unlock_card payload.
type UnlockCardRequest struct {
	CardID string `json:"card_id"`
}

func (h *rpcHandler) unlockCard(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := UnlockCardRequest{}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	profile, err := h.deps.Onboarding.UnlockCard(ctx, userID, h.deps.Catalog, req.CardID)
	if err != nil {
		return "", rpcError(logger, "RpcUnlockCard", userID, err)
	}
	logger.Info("RpcUnlockCard [User:%s]: Unlocked %s, %d tokens left.", userID, req.CardID, profile.Tokens)
	return marshalResponse(profile)
}

// SaveDeckRequest is the save_deck payload. An empty ID stores a new deck.
type SaveDeckRequest struct {
	ID   string      `json:"id"`
	Deck domain.Deck `json:"deck"`
}

func (h *rpcHandler) saveDeck(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := SaveDeckRequest{}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	saved, err := h.deps.Decks.Save(ctx, userID, req.ID, req.Deck)
	if err != nil {
		return "", rpcError(logger, "RpcSaveDeck", userID, err)
	}
	return marshalResponse(saved)
}

func (h *rpcHandler) listDecks(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	decks, err := h.deps.Decks.List(ctx, userID)
	if err != nil {
		return "", rpcError(logger, "RpcListDecks", userID, err)
	}
	if decks == nil {
		decks = []ports.SavedDeck{}
	}
	return marshalResponse(map[string]interface{}{"decks": decks})
}

// ExportDeckRequest is the export_deck payload: a saved deck id or an
// inline deck.
type ExportDeckRequest struct {
	ID   string       `json:"id"`
	Deck *domain.Deck `json:"deck"`
}

func (h *rpcHandler) exportDeck(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := ExportDeckRequest{}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	var deck domain.Deck
	switch {
	case req.ID != "":
		saved, err := h.deps.Decks.Get(ctx, userID, req.ID)
		if err != nil {
			return "", rpcError(logger, "RpcExportDeck", userID, err)
		}
		deck = saved.Deck
	case req.Deck != nil:
		deck = *req.Deck
	default:
		return "", runtime.NewError("id or deck required", errCodeInvalidArgument)
	}
	data, err := h.deps.Decks.Export(deck)
	if err != nil {
		return "", rpcError(logger, "RpcExportDeck", userID, err)
	}
	return marshalResponse(map[string]string{"file": string(data)})
}

// ImportDeckRequest is the import_deck payload: the exported file content.
type ImportDeckRequest struct {
	File string `json:"file"`
}

// ImportDeckResponse carries the sanitized deck and what was dropped.
type ImportDeckResponse struct {
	Deck   domain.Deck      `json:"deck"`
	Report app.ImportReport `json:"report"`
}

func (h *rpcHandler) importDeck(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := ImportDeckRequest{}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	deck, report, err := h.deps.Decks.Import([]byte(req.File))
	if err != nil {
		return "", rpcError(logger, "RpcImportDeck", userID, err)
	}
	if len(report.Skipped) > 0 {
		logger.Info("RpcImportDeck [User:%s]: Kept %d cards, skipped %d.", userID, report.Kept, len(report.Skipped))
	}
	return marshalResponse(ImportDeckResponse{Deck: deck, Report: report})
}

// LLMTokenRequest is the llm_token payload; MatchID scopes the token.
type LLMTokenRequest struct {
	MatchID string `json:"match_id"`
}

func (h *rpcHandler) llmToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := LLMTokenRequest{}
	if payload != "" {
		if err := decodePayload(payload, &req); err != nil {
			return "", err
		}
	}
	token, err := h.deps.Tokens.GenerateToken(userID, req.MatchID)
	if err != nil {
		logger.Error("RpcLLMToken [User:%s]: Failed to generate token: %v", userID, err)
		return "", runtime.NewError("failed to generate token", errCodeFailedPrecondition)
	}
	return marshalResponse(map[string]string{"token": token})
}
