package domain

// Phase represents the stage of the active player's turn.
type Phase string

const (
	// PhaseStart is the turn boundary before the active player has drawn.
	PhaseStart Phase = "start"
	// PhaseMain is the phase in which cards may be played.
	PhaseMain Phase = "main"
	// PhaseEnd is forced by the overplay penalty; the turn must be ended.
	PhaseEnd Phase = "end"
)

// Side identifies one of the two participants of a match.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Label is the capitalized side name used in log entries.
func (s Side) Label() string {
	if s == SideOpponent {
		return "Opponent"
	}
	return "Player"
}

// OpponentType selects who drives the opponent side.
type OpponentType string

const (
	OpponentLocalAI OpponentType = "ai"
	OpponentLLM     OpponentType = "llm"
)

// Rules is the rule set in force for a match.
type Rules struct {
	HandLimit        int `json:"handLimit"`
	ChampionSlots    int `json:"championSlots"`
	PlayLimitPerTurn int `json:"playLimitPerTurn"`
	StartingHand     int `json:"startingHand"`
	MPCeiling        int `json:"mpCeiling"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		HandLimit:        7,
		ChampionSlots:    3,
		PlayLimitPerTurn: 1,
		StartingHand:     5,
		MPCeiling:        10,
	}
}

// PlayerState is the mutable per-match state of one side.
// Deck is drawn from its end.
type PlayerState struct {
	Side                Side            `json:"side"`
	HP                  int             `json:"hp"`
	MP                  int             `json:"mp"`
	MaxHP               int             `json:"maxHp"`
	MaxMP               int             `json:"maxMp"`
	Fatigue             int             `json:"fatigue"`
	Hand                []string        `json:"hand"`
	Deck                []string        `json:"deck"`
	Discard             []string        `json:"discard"`
	Champions           []string        `json:"champions"`
	ExtraPlaysRemaining int             `json:"extraPlaysRemaining"`
	Flags               map[string]bool `json:"flags"`
	MulliganUsed        bool            `json:"mulliganUsed"`
}

// Clone returns a deep copy of the player state.
func (p PlayerState) Clone() PlayerState {
	out := p
	out.Hand = cloneIDs(p.Hand)
	out.Deck = cloneIDs(p.Deck)
	out.Discard = cloneIDs(p.Discard)
	out.Champions = cloneIDs(p.Champions)
	if p.Flags != nil {
		out.Flags = make(map[string]bool, len(p.Flags))
		for k, v := range p.Flags {
			out.Flags[k] = v
		}
	}
	return out
}

// InHand reports whether the card id is currently held.
func (p PlayerState) InHand(cardID string) bool {
	return indexOf(p.Hand, cardID) >= 0
}

// MatchState is the match-wide progress shared by both sides.
type MatchState struct {
	ID              string       `json:"id"`
	Turn            int          `json:"turn"`
	Phase           Phase        `json:"phase"`
	ActivePlayer    Side         `json:"activePlayer"`
	Log             []string     `json:"log"`
	Rules           Rules        `json:"rules"`
	Seed            string       `json:"seed"`
	Strategy        Strategy     `json:"strategy,omitempty"`
	OpponentType    OpponentType `json:"opponentType"`
	AIDifficulty    string       `json:"aiDifficulty,omitempty"`
	TimedMatch      bool         `json:"timedMatch"`
	MulliganEnabled bool         `json:"mulliganEnabled"`
	TurnBegun       bool         `json:"turnBegun"`
	Winner          Side         `json:"winner,omitempty"`
}

// Clone returns a deep copy of the match state.
func (m MatchState) Clone() MatchState {
	out := m
	out.Log = cloneIDs(m.Log)
	return out
}

// Over reports whether a winner has been decided.
func (m MatchState) Over() bool {
	return m.Winner != ""
}

func (m *MatchState) appendLog(entry string) {
	m.Log = append(m.Log, entry)
}

// Snapshot is the persisted unit of a match: shared state plus both sides.
type Snapshot struct {
	Match    MatchState  `json:"match"`
	Player   PlayerState `json:"player"`
	Opponent PlayerState `json:"opponent"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Match:    s.Match.Clone(),
		Player:   s.Player.Clone(),
		Opponent: s.Opponent.Clone(),
	}
}

// Side returns the state of the given side.
func (s Snapshot) Side(side Side) PlayerState {
	if side == SideOpponent {
		return s.Opponent
	}
	return s.Player
}

// WithSide returns a copy of the snapshot with the given side replaced.
func (s Snapshot) WithSide(state PlayerState) Snapshot {
	if state.Side == SideOpponent {
		s.Opponent = state
	} else {
		s.Player = state
	}
	return s
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
