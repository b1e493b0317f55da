package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/app"
	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

// runtimeCode extracts the code of a runtime.NewError.
func runtimeCode(t *testing.T, err error) int {
	t.Helper()
	var rerr *runtime.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("error %v is not a runtime error", err)
	}
	return rerr.Code
}

func TestRpcRequiresUser(t *testing.T) {
	h := &rpcHandler{deps: newTestEnv(t, testConfig()).deps}
	_, err := h.getProfile(context.Background(), noopLogger{}, nil, nil, "")
	if code := runtimeCode(t, err); code != errCodeUnauthenticated {
		t.Errorf("code = %d", code)
	}
}

func TestRpcProfileFlow(t *testing.T) {
	env := newTestEnv(t, testConfig())
	h := &rpcHandler{deps: env.deps}
	ctx := userCtx(ownerID)

	_, err := h.getProfile(ctx, noopLogger{}, nil, nil, "")
	if code := runtimeCode(t, err); code != errCodeNotFound {
		t.Fatalf("missing profile code = %d", code)
	}

	_, err = h.setupProfile(ctx, noopLogger{}, nil, nil, `{"name":"Ada","strategy":"sneaky","key_stat":"charisma"}`)
	if code := runtimeCode(t, err); code != errCodeInvalidArgument {
		t.Fatalf("invalid strategy code = %d", code)
	}

	raw, err := h.setupProfile(ctx, noopLogger{}, nil, nil, `{"name":"Ada","strategy":"defensive","key_stat":"strength"}`)
	if err != nil {
		t.Fatalf("setupProfile: %v", err)
	}
	var profile domain.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	stats := domain.CalculatePlayerStats(domain.StrategyDefensive, domain.KeyStatStrength)
	if profile.HP != stats.HP || profile.MP != stats.MP {
		t.Errorf("profile stats = %d/%d, want %d/%d", profile.HP, profile.MP, stats.HP, stats.MP)
	}

	raw, err = h.getProfile(ctx, noopLogger{}, nil, nil, "")
	if err != nil || !strings.Contains(raw, `"Ada"`) {
		t.Errorf("getProfile = %s, %v", raw, err)
	}
}

func TestRpcUnlockCard(t *testing.T) {
	env := newTestEnv(t, testConfig())
	h := &rpcHandler{deps: env.deps}
	ctx := userCtx(ownerID)
	if _, err := h.setupProfile(ctx, noopLogger{}, nil, nil, `{"name":"Ada","strategy":"balanced","key_stat":"charisma"}`); err != nil {
		t.Fatalf("setupProfile: %v", err)
	}

	_, err := h.unlockCard(ctx, noopLogger{}, nil, nil, `{"card_id":"relic"}`)
	if code := runtimeCode(t, err); code != errCodeFailedPrecondition {
		t.Fatalf("unlock without tokens code = %d", code)
	}

	if err := env.wallet.UpdateBalances(ctx, []ports.WalletUpdate{{UserID: ownerID, Amount: 25}}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	raw, err := h.unlockCard(ctx, noopLogger{}, nil, nil, `{"card_id":"relic"}`)
	if err != nil {
		t.Fatalf("unlockCard: %v", err)
	}
	var profile domain.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !profile.HasUnlocked("relic") || profile.Tokens != 5 {
		t.Errorf("profile after unlock = %+v", profile)
	}

	_, err = h.unlockCard(ctx, noopLogger{}, nil, nil, `{"card_id":"strike"}`)
	if code := runtimeCode(t, err); code != errCodeInvalidArgument {
		t.Errorf("free card unlock code = %d", code)
	}
}

func TestRpcDecks(t *testing.T) {
	env := newTestEnv(t, testConfig())
	h := &rpcHandler{deps: env.deps}
	ctx := userCtx(ownerID)

	raw, err := h.listDecks(ctx, noopLogger{}, nil, nil, "")
	if err != nil || raw != `{"decks":[]}` {
		t.Fatalf("empty listDecks = %s, %v", raw, err)
	}

	deck, err := env.deps.Decks.StarterDeck("")
	if err != nil {
		t.Fatalf("StarterDeck: %v", err)
	}
	body, _ := json.Marshal(SaveDeckRequest{Deck: deck})
	raw, err = h.saveDeck(ctx, noopLogger{}, nil, nil, string(body))
	if err != nil {
		t.Fatalf("saveDeck: %v", err)
	}
	var saved ports.SavedDeck
	if err := json.Unmarshal([]byte(raw), &saved); err != nil || saved.ID == "" {
		t.Fatalf("saved deck = %s, %v", raw, err)
	}

	raw, err = h.exportDeck(ctx, noopLogger{}, nil, nil, fmt.Sprintf(`{"id":%q}`, saved.ID))
	if err != nil {
		t.Fatalf("exportDeck: %v", err)
	}
	var exported map[string]string
	if err := json.Unmarshal([]byte(raw), &exported); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}

	body, _ = json.Marshal(ImportDeckRequest{File: exported["file"]})
	raw, err = h.importDeck(ctx, noopLogger{}, nil, nil, string(body))
	if err != nil {
		t.Fatalf("importDeck: %v", err)
	}
	var imported ImportDeckResponse
	if err := json.Unmarshal([]byte(raw), &imported); err != nil {
		t.Fatalf("unmarshal import: %v", err)
	}
	if len(imported.Deck.Cards) != len(deck.Cards) || len(imported.Report.Skipped) != 0 {
		t.Errorf("import = %d cards, skipped %v", len(imported.Deck.Cards), imported.Report.Skipped)
	}

	_, err = h.exportDeck(ctx, noopLogger{}, nil, nil, `{}`)
	if code := runtimeCode(t, err); code != errCodeInvalidArgument {
		t.Errorf("empty export code = %d", code)
	}
	_, err = h.importDeck(ctx, noopLogger{}, nil, nil, `{"file":"not json"}`)
	if code := runtimeCode(t, err); code != errCodeInvalidArgument {
		t.Errorf("bad import code = %d", code)
	}
}

type llmTokenResponse struct {
	Token string `json:"token"`
}

func TestRpcLLMToken_GeneratesValidClaims(t *testing.T) {
	env := newTestEnv(t, testConfig())
	h := &rpcHandler{deps: env.deps}
	ctx := userCtx("user123")

	raw1, err := h.llmToken(ctx, noopLogger{}, nil, nil, `{"match_id":"m-42"}`)
	if err != nil {
		t.Fatalf("llmToken error: %v", err)
	}
	raw2, err := h.llmToken(ctx, noopLogger{}, nil, nil, "")
	if err != nil {
		t.Fatalf("llmToken error: %v", err)
	}

	claims1 := parseGatewayClaims(t, parseToken(t, raw1), "test-secret")
	claims2 := parseGatewayClaims(t, parseToken(t, raw2), "test-secret")

	assertClaim(t, claims1, "iss", env.deps.Config.LLM.GatewayIssuer)
	assertClaim(t, claims1, "sub", "user123")
	assertClaim(t, claims1, "aud", app.GatewayAudience)
	assertClaim(t, claims1, "mid", "m-42")
	if _, ok := claims2["mid"]; ok {
		t.Error("unscoped token carries a match id")
	}
	if claims1["jti"] == claims2["jti"] {
		t.Errorf("jti claim must be unique per token, got %v twice", claims1["jti"])
	}
}

func TestRpcLLMToken_Unconfigured(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.GatewaySecret = ""
	h := &rpcHandler{deps: newTestEnv(t, cfg).deps}

	_, err := h.llmToken(userCtx(ownerID), noopLogger{}, nil, nil, "")
	if code := runtimeCode(t, err); code != errCodeFailedPrecondition {
		t.Errorf("code = %d", code)
	}
}

func parseToken(t *testing.T, jsonRaw string) string {
	t.Helper()
	var resp llmTokenResponse
	if err := json.Unmarshal([]byte(jsonRaw), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token in response")
	}
	return resp.Token
}

func parseGatewayClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func assertClaim(t *testing.T, claims jwt.MapClaims, key, expected string) {
	t.Helper()
	val, ok := claims[key]
	if !ok {
		t.Errorf("missing claim: %s", key)
		return
	}
	str, ok := val.(string)
	if !ok {
		t.Errorf("claim %s is not a string: %v", key, val)
		return
	}
	if str != expected {
		t.Errorf("claim %s = %s, want %s", key, str, expected)
	}
}

// fakeMatchAPI records match listing and creation.
type fakeMatchAPI struct {
	open    []*api.Match
	queries []string
	created []map[string]interface{}
}

func (f *fakeMatchAPI) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.queries = append(f.queries, query)
	return f.open, nil
}

func (f *fakeMatchAPI) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.created = append(f.created, params)
	return fmt.Sprintf("match-%d.node", len(f.created)), nil
}

func TestFindOrCreate(t *testing.T) {
	env := newTestEnv(t, testConfig())
	h := &rpcHandler{deps: env.deps}
	ctx := userCtx(ownerID)

	nk := &fakeMatchAPI{}
	raw, err := h.findOrCreate(ctx, noopLogger{}, nk, false)
	if err != nil {
		t.Fatalf("findOrCreate: %v", err)
	}
	var resp QuickMatchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.IsNew || resp.MatchID != "match-1.node" {
		t.Errorf("response = %+v", resp)
	}
	if nk.created[0]["owner"] != ownerID || nk.created[0]["resume"] != false {
		t.Errorf("create params = %v", nk.created[0])
	}
	if !strings.Contains(nk.queries[0], "+label.game:cardduel") || !strings.Contains(nk.queries[0], ownerID) {
		t.Errorf("query = %s", nk.queries[0])
	}

	nk.open = []*api.Match{{MatchId: "existing.node"}}
	raw, err = h.findOrCreate(ctx, noopLogger{}, nk, false)
	if err != nil {
		t.Fatalf("findOrCreate: %v", err)
	}
	resp = QuickMatchResponse{}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.IsNew || resp.MatchID != "existing.node" {
		t.Errorf("response = %+v", resp)
	}
}

func TestResumeMatchWithoutSnapshot(t *testing.T) {
	h := &rpcHandler{deps: newTestEnv(t, testConfig()).deps}
	_, err := h.resumeMatch(userCtx(ownerID), noopLogger{}, nil, nil, "")
	if code := runtimeCode(t, err); code != errCodeNotFound {
		t.Errorf("code = %d", code)
	}
}
