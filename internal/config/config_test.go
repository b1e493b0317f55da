package config

import (
	"errors"
	"testing"
)

func TestParseKeepsDefaultsForMissingFields(t *testing.T) {
	c, err := Parse([]byte(`{"regen_mode":"strategy","rules":{"hand_limit":6,"play_limit_per_turn":1}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.RegenMode != RegenStrategy {
		t.Fatalf("regen mode = %s", c.RegenMode)
	}
	if c.Rules.HandLimit != 6 {
		t.Fatalf("hand limit = %d, want 6", c.Rules.HandLimit)
	}
	if c.DeckSize != 30 || c.LLM.TimeoutSeconds != 8 {
		t.Fatalf("defaults lost: deck=%d timeout=%d", c.DeckSize, c.LLM.TimeoutSeconds)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{`},
		{"regen mode", `{"regen_mode":"double"}`},
		{"deck size", `{"deck_size":0}`},
		{"delay range", `{"bot_min_delay_seconds":5,"bot_max_delay_seconds":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := Parse([]byte(`{"deck_size":-1}`)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	c.ApplyEnv(map[string]string{
		"cardduel_llm_endpoint":      "http://llm.local/v1/chat/completions",
		"cardduel_llm_timeout_sec":   "3",
		"cardduel_bot_max_delay_sec": "nope",
		"cardduel_regen_mode":        "strategy",
	})
	if c.LLM.Endpoint != "http://llm.local/v1/chat/completions" || c.LLM.TimeoutSeconds != 3 {
		t.Fatalf("llm = %+v", c.LLM)
	}
	if c.BotMaxDelaySeconds != 3 {
		t.Fatalf("unparseable override should be ignored, got %d", c.BotMaxDelaySeconds)
	}
	if c.RegenMode != RegenStrategy {
		t.Fatalf("regen = %s", c.RegenMode)
	}
}

func TestGetGameConfigDefaultsBeforeLoad(t *testing.T) {
	if cfg != nil {
		t.Skip("config already loaded by another test")
	}
	if got := GetGameConfig(); got.Rules.HandLimit != 7 {
		t.Fatalf("hand limit = %d", got.Rules.HandLimit)
	}
}
