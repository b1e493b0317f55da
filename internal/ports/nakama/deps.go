package nakama

import (
	"cardduel/internal/app"
	"cardduel/internal/app/onboarding"
	"cardduel/internal/bot"
	"cardduel/internal/config"
	"cardduel/internal/domain"
	"cardduel/internal/ports"
)

// Deps are the services shared by every match and RPC of the module.
type Deps struct {
	Config     config.GameConfig
	Catalog    domain.Catalog
	Matches    *app.Service
	Decks      *app.DeckService
	Profiles   ports.ProfileStore
	Onboarding *onboarding.Service
	Tokens     *app.TokenService
	// NewBrain picks the opponent brain for a match.
	NewBrain bot.Factory
	Roster   *bot.Roster
}

func (d *Deps) newAgent(m domain.MatchState) (*bot.Agent, error) {
	persona := d.Roster.Pick(m.OpponentType, m.AIDifficulty)
	brain, err := d.NewBrain(m.OpponentType, m.AIDifficulty)
	if err != nil {
		return nil, err
	}
	return &bot.Agent{ID: persona.UserID, Name: persona.Name(), Brain: brain}, nil
}
