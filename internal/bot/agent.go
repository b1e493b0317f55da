package bot

import (
	"context"

	"cardduel/internal/domain"
)

// Agent represents an autonomous opponent.
type Agent struct {
	ID    string
	Name  string
	Brain Brain
}

// Play asks the agent to decide its turn on the given snapshot. Brain
// errors degrade to the default decision and are returned for logging.
func (a *Agent) Play(ctx context.Context, snap domain.Snapshot, catalog domain.Catalog) (Decision, error) {
	if a.Brain == nil {
		return domain.DefaultDecision(), nil
	}
	view := NewMatchView(snap, domain.SideOpponent, catalog)
	d, err := a.Brain.Decide(ctx, view)
	if err != nil {
		return domain.DefaultDecision(), err
	}
	if d.Plays == nil {
		d.Plays = []PlannedPlay{}
	}
	return d, nil
}
