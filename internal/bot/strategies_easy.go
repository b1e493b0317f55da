package bot

import "context"

// EasyBot plays the first affordable card in hand, if any.
type EasyBot struct{}

func (b *EasyBot) Decide(_ context.Context, view MatchView) (Decision, error) {
	d := Decision{Plays: []PlannedPlay{}, EndTurn: true}
	options := newScratch(view).playable(view)
	if len(options) == 0 {
		return d, nil
	}
	d.Plays = append(d.Plays, planned(options[0], "first affordable card"))
	return d, nil
}
