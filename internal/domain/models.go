package domain

import "strings"

// Option is one selectable answer within a scenario.
// Emoji and Description are display hints only; scoring reads ID and Correct.
type Option struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Label       string `json:"label" yaml:"label" validate:"required"`
	Correct     bool   `json:"correct" yaml:"correct"`
	Emoji       string `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Scenario is one question, story step or puzzle item.
type Scenario struct {
	Prompt      string   `json:"prompt" yaml:"prompt" validate:"required"`
	Options     []Option `json:"options" yaml:"options" validate:"required,min=1,dive"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// CorrectOptions returns how many options are marked correct.
func (s Scenario) CorrectOptions() int {
	n := 0
	for _, opt := range s.Options {
		if opt.Correct {
			n++
		}
	}
	return n
}

// Option looks up an option by id.
func (s Scenario) Option(id string) (Option, bool) {
	for _, opt := range s.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Unique reports whether exactly one option carries id.
func (s Scenario) Unique(id string) bool {
	n := 0
	for _, opt := range s.Options {
		if opt.ID == id {
			n++
		}
	}
	return n == 1
}

// QuestionSet is the ordered scenario sequence of one screen.
type QuestionSet []Scenario

// PassRule gates the terminal "passed" outcome. The zero value always passes.
type PassRule struct {
	MinCorrect         int  `json:"minCorrect,omitempty" yaml:"min_correct,omitempty" validate:"gte=0"`
	MinPercent         int  `json:"minPercent,omitempty" yaml:"min_percent,omitempty" validate:"gte=0,lte=100"`
	RequireLastCorrect bool `json:"requireLastCorrect,omitempty" yaml:"require_last_correct,omitempty"`
}

// RewardOverrides carries optional per-screen reward values. Nil fields fall back.
type RewardOverrides struct {
	CoinsPerCorrect *int `json:"coinsPerCorrect,omitempty" yaml:"coins_per_correct,omitempty"`
	TotalCoins      *int `json:"totalCoins,omitempty" yaml:"total_coins,omitempty"`
	TotalXP         *int `json:"totalXp,omitempty" yaml:"total_xp,omitempty"`
}

// Screen is a self-contained mini-game: its question set plus navigation metadata.
type Screen struct {
	ID        string           `json:"id" yaml:"id" validate:"required"`
	Title     string           `json:"title" yaml:"title"`
	Subtitle  string           `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Pillar    string           `json:"pillar,omitempty" yaml:"pillar,omitempty"`
	Scenarios QuestionSet      `json:"scenarios" yaml:"scenarios" validate:"required,min=1,dive"`
	Pass      PassRule         `json:"pass" yaml:"pass"`
	Next      string           `json:"next,omitempty" yaml:"next,omitempty"`
	BackPath  string           `json:"backPath,omitempty" yaml:"back_path,omitempty"`
	Rewards   *RewardOverrides `json:"rewards,omitempty" yaml:"rewards,omitempty"`
}

// Reward defaults used when neither the screen nor the catalog provides a value.
const (
	DefaultCoinsPerCorrect = 5
	DefaultTotalCoins      = 5
	DefaultTotalXP         = 10
)

// RewardConfig is the resolved per-session reward configuration.
type RewardConfig struct {
	CoinsPerCorrect int `json:"coinsPerCorrect"`
	TotalCoins      int `json:"totalCoins"`
	TotalXP         int `json:"totalXp"`
}

// DefaultRewards returns the literal fallback reward configuration.
func DefaultRewards() RewardConfig {
	return RewardConfig{
		CoinsPerCorrect: DefaultCoinsPerCorrect,
		TotalCoins:      DefaultTotalCoins,
		TotalXP:         DefaultTotalXP,
	}
}

// Apply returns cfg with every non-nil, positive override applied.
func (o *RewardOverrides) Apply(cfg RewardConfig) RewardConfig {
	if o == nil {
		return cfg
	}
	if o.CoinsPerCorrect != nil && *o.CoinsPerCorrect > 0 {
		cfg.CoinsPerCorrect = *o.CoinsPerCorrect
	}
	if o.TotalCoins != nil && *o.TotalCoins > 0 {
		cfg.TotalCoins = *o.TotalCoins
	}
	if o.TotalXP != nil && *o.TotalXP > 0 {
		cfg.TotalXP = *o.TotalXP
	}
	return cfg
}

// CatalogEntry is the external game-card record for a screen.
type CatalogEntry struct {
	ScreenID string          `json:"screenId" yaml:"screen_id" validate:"required"`
	Title    string          `json:"title" yaml:"title"`
	Pillar   string          `json:"pillar,omitempty" yaml:"pillar,omitempty"`
	AgeGroup string          `json:"ageGroup,omitempty" yaml:"age_group,omitempty"`
	Rewards  RewardOverrides `json:"rewards" yaml:"rewards"`
}

// ScreenSummary is a listing-friendly view of a screen.
type ScreenSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Pillar    string `json:"pillar"`
	Questions int    `json:"questions"`
	Next      string `json:"next,omitempty"`
}

// Summary builds the listing view of the screen.
func (s Screen) Summary() ScreenSummary {
	pillar := s.Pillar
	if pillar == "" {
		pillar = PillarOf(s.ID)
	}
	return ScreenSummary{
		ID:        s.ID,
		Title:     s.Title,
		Pillar:    pillar,
		Questions: len(s.Scenarios),
		Next:      s.Next,
	}
}

var pillarPrefixes = []struct {
	prefix string
	pillar string
}{
	{"financial-", "finance"},
	{"finance-", "finance"},
	{"brain-", "brain"},
	{"uvls-", "uvls"},
	{"digital-", "dcos"},
	{"dcos-", "dcos"},
	{"moral-", "moral"},
	{"ai-for-all-", "ai"},
	{"ai-", "ai"},
	{"health-male-", "health-male"},
	{"health-female-", "health-female"},
	{"ehe-", "ehe"},
	{"civic-responsibility-", "crgc"},
	{"crgc-", "crgc"},
	{"sustainability-", "sustainability"},
}

// PillarOf derives the learning pillar from a screen id prefix, or "" if unknown.
func PillarOf(screenID string) string {
	id := strings.ToLower(screenID)
	for _, p := range pillarPrefixes {
		if strings.HasPrefix(id, p.prefix) {
			return p.pillar
		}
	}
	return ""
}
