package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/app"
	"cardduel/internal/domain"
)

// QuickMatchResponse is the payload returned to clients when requesting a match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
	Resumed bool   `json:"resumed,omitempty"`
}

// MatchAPI is the part of runtime.NakamaModule used to find and create matches.
type MatchAPI interface {
	MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error)
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

func (h *rpcHandler) quickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return h.findOrCreate(ctx, logger, nk, false)
}

// resumeMatch opens a match that restores the caller's stored duel.
func (h *rpcHandler) resumeMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	if _, err := h.deps.Matches.Resume(ctx, userID); err != nil {
		if errors.Is(err, app.ErrNoMatch) {
			return "", runtime.NewError("no match to resume", errCodeNotFound)
		}
		logger.Error("RpcResumeMatch [User:%s]: Failed to load snapshot: %v", userID, err)
		return "", runtime.NewError("failed to load match", errCodeInternal)
	}
	return h.findOrCreate(ctx, logger, nk, true)
}

// findOrCreate returns the caller's open match, creating one when none is
// listed. Matches are private to their owner.
func (h *rpcHandler) findOrCreate(ctx context.Context, logger runtime.Logger, nk MatchAPI, resume bool) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf("+label.open:T +label.game:%s +label.owner:%q", domain.LabelGame, userID)
	minSize, maxSize := 0, 1
	matches, err := nk.MatchList(ctx, 1, true, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", runtime.NewError("failed to list matches", errCodeInternal)
	}
	if len(matches) > 0 && !resume {
		logger.Info("RpcQuickMatch [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return marshalResponse(QuickMatchResponse{MatchID: matches[0].MatchId})
	}

	params := map[string]interface{}{"owner": userID, "resume": resume}
	matchID, err := nk.MatchCreate(ctx, MatchNameCardDuel, params)
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("failed to create match", errCodeInternal)
	}
	logger.Info("RpcQuickMatch [User:%s]: Created new match %s (resume=%v)", userID, matchID, resume)
	return marshalResponse(QuickMatchResponse{MatchID: matchID, IsNew: true, Resumed: resume})
}

func marshalResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("failed to encode response", errCodeInternal)
	}
	return string(b), nil
}
