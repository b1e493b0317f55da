package bot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cardduel/internal/config"
	"cardduel/internal/domain"
)

// BotLevel is the difficulty of a local opponent.
type BotLevel string

const (
	BotLevelEasy   BotLevel = "easy"
	BotLevelNormal BotLevel = "normal"
	BotLevelHard   BotLevel = "hard"
)

// ParseLevel normalizes a difficulty name.
func ParseLevel(s string) (BotLevel, error) {
	level := BotLevel(strings.ToLower(strings.TrimSpace(s)))
	switch level {
	case BotLevelEasy, BotLevelNormal, BotLevelHard:
		return level, nil
	}
	return "", fmt.Errorf("unknown bot level: %q", s)
}

// NewBrain creates a new local brain for the specified level.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &EasyBot{}, nil
	case BotLevelNormal:
		return &NormalBot{Tuning: DefaultTuning}, nil
	case BotLevelHard:
		return &HardBot{Tuning: DefaultTuning, Rules: DefaultRules()}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}

// Factory picks the brain that drives the opponent of a match.
type Factory func(opponent domain.OpponentType, difficulty string) (Brain, error)

// NewFactory returns local brains by difficulty and the LLM brain for LLM
// matches. An empty difficulty uses the configured default.
func NewFactory(cfg config.GameConfig, logger *zap.Logger) Factory {
	return func(opponent domain.OpponentType, difficulty string) (Brain, error) {
		if opponent == domain.OpponentLLM {
			return NewLLMBrain(cfg.LLM, logger), nil
		}
		if difficulty == "" {
			difficulty = cfg.DefaultDifficulty
		}
		level, err := ParseLevel(difficulty)
		if err != nil {
			return nil, fmt.Errorf("failed to pick brain: %w", err)
		}
		return NewBrain(level)
	}
}
