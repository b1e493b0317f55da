package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"cardduel/internal/config"
	"cardduel/internal/domain"
)

const systemPrompt = `You are the opponent in a two-player card duel. You receive the match state as JSON.
Choose which cards from "self.hand" to play this turn, in order. Never plan more plays than "self.extraPlaysRemaining"
and never play a card whose cost would take hp or mp below zero.
Reply with JSON only: {"plays":[{"cardId":"<id>","reason":"<short reason>"}],"endTurn":true}`

const maxResponseBytes = 1 << 20

var (
	fencePattern  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	objectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// LLMBrain asks an OpenAI-compatible chat completion endpoint for the
// opponent's plays. Any failure yields the default decision.
type LLMBrain struct {
	endpoint string
	model    string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// NewLLMBrain creates an LLM brain from cfg. A nil logger disables logging.
func NewLLMBrain(cfg config.LLMConfig, logger *zap.Logger) *LLMBrain {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &LLMBrain{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		timeout:  timeout,
		client:   &http.Client{},
		logger:   logger.Named("llm_brain"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Decide implements Brain. It never returns an error.
func (b *LLMBrain) Decide(ctx context.Context, view MatchView) (Decision, error) {
	if b.endpoint == "" {
		b.logger.Warn("no endpoint configured, ending turn")
		return domain.DefaultDecision(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	content, err := b.complete(ctx, view)
	if err != nil {
		b.logger.Warn("completion failed, ending turn",
			zap.Error(err),
			zap.Int("turn", view.Turn),
			zap.Duration("elapsed", time.Since(start)))
		return domain.DefaultDecision(), nil
	}

	d, ok := ParseDecision(content)
	if !ok {
		b.logger.Warn("unparseable completion, ending turn",
			zap.Int("turn", view.Turn),
			zap.Int("length", len(content)))
	}
	b.logger.Debug("decision",
		zap.Int("turn", view.Turn),
		zap.Int("plays", len(d.Plays)),
		zap.Duration("elapsed", time.Since(start)))
	return d, nil
}

func (b *LLMBrain) complete(ctx context.Context, view MatchView) (string, error) {
	state, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("failed to marshal view: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(state)},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// ParseDecision reads a decision out of free-form model output. It tries
// a fenced block, then the whole text, then the first {...} span. ok is
// false when it fell back to the default decision.
func ParseDecision(content string) (Decision, bool) {
	text := strings.TrimSpace(content)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if d, ok := decodeDecision(text); ok {
		return d, true
	}
	if span := objectPattern.FindString(text); span != "" {
		if d, ok := decodeDecision(span); ok {
			return d, true
		}
	}
	return domain.DefaultDecision(), false
}

func decodeDecision(text string) (Decision, bool) {
	var raw struct {
		Plays   []PlannedPlay `json:"plays"`
		EndTurn *bool         `json:"endTurn"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Decision{}, false
	}
	d := Decision{Plays: make([]PlannedPlay, 0, len(raw.Plays)), EndTurn: true}
	for _, p := range raw.Plays {
		if p.CardID != "" {
			d.Plays = append(d.Plays, p)
		}
	}
	if raw.EndTurn != nil {
		d.EndTurn = *raw.EndTurn
	}
	return d, true
}
