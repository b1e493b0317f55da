package bot

import botinternal "cardduel/internal/bot/internal"

// DefaultTuning spends freely early and guards HP once the match is close.
var DefaultTuning = botinternal.BotTuning{
	Opening: botinternal.PhaseWeights{
		HPWeight:        1.0,
		MPWeight:        0.3,
		FatigueWeight:   0.5,
		ExtraPlayBonus:  2.0,
		MPRestoreWeight: 0.6,
		ChampionBonus:   1.5,
		LowHPPenalty:    3.0,
	},
	Mid: botinternal.PhaseWeights{
		HPWeight:        1.2,
		MPWeight:        0.4,
		FatigueWeight:   0.8,
		ExtraPlayBonus:  1.5,
		MPRestoreWeight: 0.8,
		ChampionBonus:   1.0,
		LowHPPenalty:    4.0,
	},
	End: botinternal.PhaseWeights{
		HPWeight:        2.0,
		MPWeight:        0.2,
		FatigueWeight:   1.0,
		ExtraPlayBonus:  1.0,
		MPRestoreWeight: 0.4,
		ChampionBonus:   0.5,
		LowHPPenalty:    8.0,
	},
	MinPlayScore:   -6.0,
	LowHPThreshold: 4,
}
