package gifts

// Collectible pool for idle gifts. The order is fixed so an injected
// random source yields reproducible draws.
var giftPool = []string{
	"smooth-pebble",
	"tiny-starfish",
	"purple-urchin",
	"driftwood-charm",
	"abalone-shell",
}

// RewardType distinguishes daily bonus payouts.
type RewardType string

const (
	RewardSeaGlass RewardType = "sea_glass"
	RewardItem     RewardType = "item"
)

// DailyBonus is one day's payout on the 7-day schedule.
type DailyBonus struct {
	Type  RewardType `json:"type"`
	Value int        `json:"value,omitempty"`
	Item  string     `json:"item,omitempty"`
}

// Rules decides idle gifting and the daily bonus schedule. Rand is the
// only source of nondeterminism; tests inject a fixed sequence.
type Rules struct {
	ThresholdHours float64        // minimum idle time before a gift is possible
	MissChance     float64        // probability an eligible idle period yields nothing
	Rand           func() float64 // uniform in [0,1)
}

// Default tuning: 4 idle hours before a gift is possible, 60% miss.
const (
	DefaultThresholdHours = 4.0
	DefaultMissChance     = 0.6
)

// New returns Rules with the given random source and default tuning.
func New(rand func() float64) *Rules {
	return &Rules{
		ThresholdHours: DefaultThresholdHours,
		MissChance:     DefaultMissChance,
		Rand:           rand,
	}
}

// TryGrant draws for an idle gift. It returns ("", false) when
// hoursAway is under the threshold or the draw misses.
func (r *Rules) TryGrant(hoursAway float64) (string, bool) {
	if hoursAway < r.ThresholdHours {
		return "", false
	}
	roll := r.Rand()
	if roll < r.MissChance {
		return "", false
	}
	// Rescale the remaining probability mass over the pool so a single
	// draw decides both miss and item.
	idx := int((roll - r.MissChance) / (1 - r.MissChance) * float64(len(giftPool)))
	if idx >= len(giftPool) {
		idx = len(giftPool) - 1
	}
	return giftPool[idx], true
}

// DailyReward maps a 1-based day-played number onto the repeating 7-day
// schedule. Deterministic: no randomness.
func DailyReward(day int) DailyBonus {
	if day < 1 {
		day = 1
	}
	switch ((day - 1) % 7) + 1 {
	case 1:
		return DailyBonus{Type: RewardSeaGlass, Value: 50}
	case 2:
		return DailyBonus{Type: RewardSeaGlass, Value: 100}
	case 3:
		return DailyBonus{Type: RewardSeaGlass, Value: 150}
	case 4:
		return DailyBonus{Type: RewardItem, Item: "pearl-comb"}
	case 5:
		return DailyBonus{Type: RewardSeaGlass, Value: 200}
	case 6:
		return DailyBonus{Type: RewardSeaGlass, Value: 300}
	default:
		return DailyBonus{Type: RewardItem, Item: "golden-clam"}
	}
}

// Pool returns a copy of the collectible pool.
func Pool() []string {
	out := make([]string, len(giftPool))
	copy(out, giftPool)
	return out
}
