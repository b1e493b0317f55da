package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
)

// RegenMode selects how much MP a side recovers at upkeep.
type RegenMode string

const (
	// RegenFlat restores a fixed +3 MP every turn.
	RegenFlat RegenMode = "flat"
	// RegenStrategy restores the per-strategy amount (4/3/2).
	RegenStrategy RegenMode = "strategy"
)

// RulesConfig mirrors the match rule set.
type RulesConfig struct {
	HandLimit        int `json:"hand_limit"`
	ChampionSlots    int `json:"champion_slots"`
	PlayLimitPerTurn int `json:"play_limit_per_turn"`
	StartingHand     int `json:"starting_hand"`
	MPCeiling        int `json:"mp_ceiling"`
}

// LLMConfig holds the settings of the remote opponent.
type LLMConfig struct {
	Endpoint       string `json:"endpoint"`
	Model          string `json:"model"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// GatewaySecret signs the short-lived tokens handed to clients that
	// talk to the LLM gateway directly.
	GatewaySecret string `json:"gateway_secret"`
	GatewayIssuer string `json:"gateway_issuer"`
	TokenTTLSecs  int    `json:"token_ttl_seconds"`
}

// GameConfig is the server-side tuning of the card game.
type GameConfig struct {
	Rules               RulesConfig `json:"rules"`
	DeckSize            int         `json:"deck_size"`
	RegenMode           RegenMode   `json:"regen_mode"`
	WelcomeTokens       int64       `json:"welcome_tokens"`
	TurnDurationSeconds int         `json:"turn_duration_seconds"`
	// BotMinDelaySeconds and BotMaxDelaySeconds bound how long the local
	// opponent waits before acting.
	BotMinDelaySeconds int       `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int       `json:"bot_max_delay_seconds"`
	DefaultDifficulty  string    `json:"default_difficulty"`
	CollectionsDir     string    `json:"collections_dir"`
	IdentitiesPath     string    `json:"identities_path"`
	LLM                LLMConfig `json:"llm"`
}

// ErrInvalidConfig is returned by Validate for out-of-range values.
var ErrInvalidConfig = errors.New("invalid game config")

// Default returns the standard configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		Rules: RulesConfig{
			HandLimit:        7,
			ChampionSlots:    3,
			PlayLimitPerTurn: 1,
			StartingHand:     5,
			MPCeiling:        10,
		},
		DeckSize:            30,
		RegenMode:           RegenFlat,
		WelcomeTokens:       100,
		TurnDurationSeconds: 60,
		BotMinDelaySeconds:  1,
		BotMaxDelaySeconds:  3,
		DefaultDifficulty:   "normal",
		CollectionsDir:      "data/collections",
		IdentitiesPath:      "data/opponent_identities.json",
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 8,
			GatewayIssuer:  "cardduel",
			TokenTTLSecs:   900,
		},
	}
}

// Parse decodes a JSON config on top of Default and validates it.
// Fields absent from data keep their default values.
func Parse(data []byte) (GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

// Validate reports the first out-of-range field.
func (c GameConfig) Validate() error {
	switch {
	case c.Rules.HandLimit <= 0:
		return fmt.Errorf("%w: hand_limit must be positive", ErrInvalidConfig)
	case c.Rules.PlayLimitPerTurn <= 0:
		return fmt.Errorf("%w: play_limit_per_turn must be positive", ErrInvalidConfig)
	case c.Rules.StartingHand < 0:
		return fmt.Errorf("%w: starting_hand must not be negative", ErrInvalidConfig)
	case c.DeckSize <= 0:
		return fmt.Errorf("%w: deck_size must be positive", ErrInvalidConfig)
	case c.RegenMode != RegenFlat && c.RegenMode != RegenStrategy:
		return fmt.Errorf("%w: unknown regen_mode %q", ErrInvalidConfig, c.RegenMode)
	case c.BotMinDelaySeconds < 0 || c.BotMaxDelaySeconds < c.BotMinDelaySeconds:
		return fmt.Errorf("%w: bot delay range %d..%d", ErrInvalidConfig, c.BotMinDelaySeconds, c.BotMaxDelaySeconds)
	}
	return nil
}

// ApplyEnv overrides bot and LLM settings from runtime environment
// variables. Unparseable numbers are ignored.
func (c *GameConfig) ApplyEnv(env map[string]string) {
	if val, ok := env["cardduel_llm_endpoint"]; ok {
		c.LLM.Endpoint = val
	}
	if val, ok := env["cardduel_llm_model"]; ok {
		c.LLM.Model = val
	}
	if val, ok := env["cardduel_llm_api_key"]; ok {
		c.LLM.APIKey = val
	}
	if val, ok := env["cardduel_llm_gateway_secret"]; ok {
		c.LLM.GatewaySecret = val
	}
	setInt(env, "cardduel_llm_timeout_sec", &c.LLM.TimeoutSeconds)
	setInt(env, "cardduel_bot_min_delay_sec", &c.BotMinDelaySeconds)
	setInt(env, "cardduel_bot_max_delay_sec", &c.BotMaxDelaySeconds)
	setInt(env, "cardduel_turn_duration_sec", &c.TurnDurationSeconds)
	if val, ok := env["cardduel_regen_mode"]; ok {
		if mode := RegenMode(val); mode == RegenFlat || mode == RegenStrategy {
			c.RegenMode = mode
		}
	}
	if val, ok := env["cardduel_default_difficulty"]; ok && val != "" {
		c.DefaultDifficulty = val
	}
}

func setInt(env map[string]string, key string, dst *int) {
	val, ok := env[key]
	if !ok {
		return
	}
	if i, err := strconv.Atoi(val); err == nil {
		*dst = i
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path once.
// A missing file falls back to Default.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			c := Default()
			cfg = &c
			return
		}
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration, or Default when
// LoadGameConfig has not succeeded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}
