package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"

	"cardduel/internal/domain"
)

// Persona is one named opponent. Opponent selects the local AI or the LLM
// brain; Difficulty applies to the local AI.
type Persona struct {
	DeviceID    string              `json:"device_id"`
	UserID      string              `json:"user_id"`
	Username    string              `json:"username"`
	DisplayName string              `json:"display_name"`
	Difficulty  string              `json:"difficulty"`
	Opponent    domain.OpponentType `json:"opponent"`
	Strategy    domain.Strategy     `json:"strategy"`
	AvatarIndex int                 `json:"avatar_index"`
}

// Name is what the player sees across the table.
func (p Persona) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Username
}

// AccountProvisioner is the slice of the Nakama module Provision needs.
type AccountProvisioner interface {
	AuthenticateDevice(ctx context.Context, id, username string, create bool) (string, string, bool, error)
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// Roster holds the opponent personas. A nil Roster behaves as an empty one.
type Roster struct {
	mu       sync.RWMutex
	personas []Persona
	byUser   map[string]int
}

// NewRoster builds a roster from personas, indexing those that already
// carry a user ID.
func NewRoster(personas []Persona) *Roster {
	r := &Roster{personas: append([]Persona(nil), personas...), byUser: make(map[string]int)}
	for i, p := range r.personas {
		if p.UserID != "" {
			r.byUser[p.UserID] = i
		}
	}
	return r
}

// LoadRoster reads personas from a JSON file. Every difficulty must parse.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read opponent personas: %w", err)
	}
	var personas []Persona
	if err := json.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opponent personas: %w", err)
	}
	for _, p := range personas {
		if p.Opponent == domain.OpponentLLM {
			continue
		}
		if _, err := ParseLevel(p.Difficulty); err != nil {
			return nil, fmt.Errorf("persona %q: %w", p.Username, err)
		}
	}
	return NewRoster(personas), nil
}

// Len reports the number of personas.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.personas)
}

// Pick returns the persona for an opponent type, preferring one whose
// difficulty matches. Without a match it returns a generated persona.
func (r *Roster) Pick(opponent domain.OpponentType, difficulty string) Persona {
	if r != nil {
		r.mu.RLock()
		defer r.mu.RUnlock()

		fallback := -1
		for i, p := range r.personas {
			if p.Opponent != opponent {
				continue
			}
			if difficulty == "" || strings.EqualFold(p.Difficulty, difficulty) {
				return p
			}
			if fallback < 0 {
				fallback = i
			}
		}
		if fallback >= 0 {
			return r.personas[fallback]
		}
	}

	name := "Rival"
	if opponent == domain.OpponentLLM {
		name = "Oracle"
	}
	return Persona{
		UserID:      "bot-" + string(opponent),
		DisplayName: name,
		Difficulty:  difficulty,
		Opponent:    opponent,
	}
}

// Lookup returns the persona provisioned under userID.
func (r *Roster) Lookup(userID string) (Persona, bool) {
	if r == nil {
		return Persona{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byUser[userID]
	if !ok {
		return Persona{}, false
	}
	return r.personas[i], true
}

// IsBot reports whether userID belongs to a provisioned persona.
func (r *Roster) IsBot(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Provision makes sure every persona with a device ID has a Nakama account
// tagged with is_bot metadata, and records the resulting user IDs. It
// returns how many personas are ready; failures are logged and skipped.
func (r *Roster) Provision(ctx context.Context, nk AccountProvisioner, logger runtime.Logger) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ready := 0
	for i := range r.personas {
		p := &r.personas[i]
		if p.DeviceID == "" {
			continue
		}

		userID, username, _, err := nk.AuthenticateDevice(ctx, p.DeviceID, p.Username, true)
		if err != nil {
			logger.Error("Provision: failed to authenticate persona %s: %v", p.Username, err)
			continue
		}
		p.UserID = userID
		p.Username = username

		metadata := map[string]interface{}{
			"is_bot":       true,
			"difficulty":   p.Difficulty,
			"opponent":     string(p.Opponent),
			"strategy":     string(p.Strategy),
			"avatar_index": p.AvatarIndex,
		}
		if err := nk.AccountUpdateId(ctx, userID, p.Username, metadata, p.DisplayName, "", "", "", ""); err != nil {
			logger.Warn("Provision: failed to update persona account %s: %v", userID, err)
		}

		r.byUser[userID] = i
		ready++
		logger.Info("Provision: persona %s (%s) is ready, opponent %s", p.Name(), userID, p.Opponent)
	}
	return ready
}
