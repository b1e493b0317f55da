package internal

// GamePhase describes the current strategic stage of a match.
type GamePhase int

const (
	// PhaseOpening covers the first two turns of a match.
	PhaseOpening GamePhase = iota
	// PhaseMid is everything between the opening and the endgame.
	PhaseMid
	// PhaseEnd indicates either side has dropped to 30% HP or less.
	PhaseEnd
)

const openingTurns = 2

func (p GamePhase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseEnd:
		return "end"
	default:
		return "mid"
	}
}

// Vitals is the part of a side's state phase detection looks at.
type Vitals struct {
	HP    int
	MaxHP int
}

func (v Vitals) critical() bool {
	if v.MaxHP <= 0 {
		return false
	}
	return v.HP*10 <= v.MaxHP*3
}

// DetectPhase infers the phase from the turn counter and both sides' HP.
// A critical side overrides the opening.
func DetectPhase(turn int, self, opponent Vitals) GamePhase {
	if self.critical() || opponent.critical() {
		return PhaseEnd
	}
	if turn <= openingTurns {
		return PhaseOpening
	}
	return PhaseMid
}
