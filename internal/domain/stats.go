package domain

const (
	baseHP = 24
	baseMP = 6
)

// Stats holds starting resources derived from a profile.
type Stats struct {
	HP int `json:"hp"`
	MP int `json:"mp"`
}

// CalculatePlayerStats maps a strategy/key-stat pair to starting HP and MP.
// Both contributions are added to the base independently.
func CalculatePlayerStats(strategy Strategy, keyStat KeyStat) Stats {
	s := Stats{HP: baseHP, MP: baseMP}

	switch keyStat {
	case KeyStatStrength:
		s.HP += 8
		s.MP += 2
	case KeyStatIntelligence:
		s.HP += 2
		s.MP += 6
	case KeyStatCharisma:
		s.HP += 2
		s.MP += 2
	}

	switch strategy {
	case StrategyDefensive:
		s.HP += 4
	case StrategyBalanced:
		s.HP += 2
		s.MP += 2
	case StrategyAggressive:
		s.MP += 4
	}

	return s
}

// MPRegenPerTurn is the per-strategy MP regeneration used by upkeep when
// strategy-based regen is configured.
func MPRegenPerTurn(strategy Strategy) int {
	switch strategy {
	case StrategyAggressive:
		return 4
	case StrategyDefensive:
		return 2
	default:
		return 3
	}
}

// FlatMPRegen is the strategy-independent upkeep regeneration.
const FlatMPRegen = 3
