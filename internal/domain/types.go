package domain

// CardType classifies a card's role in play.
type CardType string

const (
	CardTypeEvent    CardType = "event"
	CardTypeChampion CardType = "champion"
	CardTypeTactic   CardType = "tactic"
	CardTypeSkill    CardType = "skill"
)

// Valid reports whether t is one of the known card types.
func (t CardType) Valid() bool {
	switch t {
	case CardTypeEvent, CardTypeChampion, CardTypeTactic, CardTypeSkill:
		return true
	}
	return false
}

// Rarity is the scarcity tier of a card and governs per-deck copy limits.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityUnique Rarity = "unique"
)

// Valid reports whether r is one of the known rarities.
func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityUnique:
		return true
	}
	return false
}

// Strategy is the play style chosen at profile setup.
type Strategy string

const (
	StrategyAggressive Strategy = "aggressive"
	StrategyBalanced   Strategy = "balanced"
	StrategyDefensive  Strategy = "defensive"
)

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyAggressive, StrategyBalanced, StrategyDefensive:
		return true
	}
	return false
}

// KeyStat is the attribute a profile is built around.
type KeyStat string

const (
	KeyStatStrength     KeyStat = "strength"
	KeyStatIntelligence KeyStat = "intelligence"
	KeyStatCharisma     KeyStat = "charisma"
)

// Valid reports whether k is one of the known key stats.
func (k KeyStat) Valid() bool {
	switch k {
	case KeyStatStrength, KeyStatIntelligence, KeyStatCharisma:
		return true
	}
	return false
}

// Cost is a signed resource delta applied when a card is played.
// Negative values are costs paid, positive values are bonuses.
type Cost struct {
	HP      int `json:"HP" yaml:"hp"`
	MP      int `json:"MP" yaml:"mp"`
	Fatigue int `json:"fatigue" yaml:"fatigue"`
}

// Card is immutable reference data loaded from a content bundle.
type Card struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Type        CardType `json:"type" yaml:"type"`
	Rarity      Rarity   `json:"rarity" yaml:"rarity"`
	Effect      string   `json:"effect" yaml:"effect"`
	Cost        Cost     `json:"cost" yaml:"cost"`
	Tags        []string `json:"tags,omitempty" yaml:"tags"`
	Collection  string   `json:"collection" yaml:"collection"`
	Flavor      string   `json:"flavor,omitempty" yaml:"flavor"`
	TokenCost   int      `json:"tokenCost,omitempty" yaml:"token_cost"`
}

// HasTag reports whether the card carries the given tag.
func (c Card) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Collection is a named, themed set of cards.
type Collection struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Cards []Card `json:"cards" yaml:"cards"`
}

// Catalog is the ordered set of loaded collections.
type Catalog []Collection

// Lookup resolves a card id by linear search across all collections.
// The first match wins.
func (c Catalog) Lookup(cardID string) (Card, bool) {
	for _, col := range c {
		for _, card := range col.Cards {
			if card.ID == cardID {
				return card, true
			}
		}
	}
	return Card{}, false
}

// Collection returns the collection with the given id.
func (c Catalog) Collection(id string) (Collection, bool) {
	for _, col := range c {
		if col.ID == id {
			return col, true
		}
	}
	return Collection{}, false
}

// Deck is a named ordered list of card ids drawn from one collection.
// It is also the human-editable export format.
type Deck struct {
	Name       string   `json:"name"`
	Collection string   `json:"collection"`
	Cards      []string `json:"cards"`
}

// Profile is a player's persistent identity.
type Profile struct {
	Name     string   `json:"name"`
	Strategy Strategy `json:"strategy"`
	KeyStat  KeyStat  `json:"keyStat"`
	HP       int      `json:"hp"`
	MP       int      `json:"mp"`
	Tokens   int64    `json:"tokens"`
	Unlocked []string `json:"unlocked,omitempty"`
}

// HasUnlocked reports whether the profile has unlocked the card.
func (p Profile) HasUnlocked(cardID string) bool {
	for _, id := range p.Unlocked {
		if id == cardID {
			return true
		}
	}
	return false
}
