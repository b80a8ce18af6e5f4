package actions

import (
	"context"

	"github.com/ottercare/pebble/analytics"
	"github.com/ottercare/pebble/pet/stats"
	"github.com/ottercare/pebble/pet/store"
	"go.uber.org/zap"
)

// Care action tuning. All amounts re-clamp through the stat model, so
// an action near a bound partially applies rather than overflowing.
const (
	FeedHunger    = 20
	FeedHappiness = 6
	FeedCost      = 5

	BatheClean     = 25
	BatheHappiness = 5
	BatheCost      = 5

	PlayHappiness = 8

	WakeEnergyPerHour = 10
)

// Shop catalog: cosmetic item → sea-glass price.
var catalog = map[string]float64{
	"hat":        50,
	"scarf":      75,
	"sunglasses": 100,
}

// Metric names recorded on the pet snapshot.
const (
	MetricGamesPlayed = "gamesPlayed"
	MetricFishCaught  = "fishCaught"
	MetricItemsBought = "itemsBought"
)

// Service translates discrete user intents into bounded mutations on
// the pet store, and counts each action for analytics.
type Service struct {
	store     *store.Store
	analytics *analytics.Service
	logger    *zap.Logger
}

// New creates an action Service.
func New(st *store.Store, an *analytics.Service, logger *zap.Logger) *Service {
	return &Service{store: st, analytics: an, logger: logger}
}

// Feed raises hunger and happiness and costs a little sea-glass. A pet
// that is already full ignores the meal. The attempt is counted either
// way: analytics tracks what the user did, not what stuck.
func (svc *Service) Feed(ctx context.Context) (stats.CoreStats, bool) {
	svc.analytics.Increment(ctx, "feed")
	cur := svc.store.Stats()
	if cur.Hunger >= 100 {
		return cur, false
	}
	out := svc.store.SetStats(ctx, stats.Patch{
		Hunger:    stats.Float(cur.Hunger + FeedHunger),
		Happiness: stats.Float(cur.Happiness + FeedHappiness),
		SeaGlass:  stats.Float(cur.SeaGlass - FeedCost),
	})
	return out, true
}

// Bathe raises cleanliness and happiness and costs a little sea-glass.
func (svc *Service) Bathe(ctx context.Context) (stats.CoreStats, bool) {
	svc.analytics.Increment(ctx, "bathe")
	cur := svc.store.Stats()
	if cur.Clean >= 100 {
		return cur, false
	}
	out := svc.store.SetStats(ctx, stats.Patch{
		Clean:     stats.Float(cur.Clean + BatheClean),
		Happiness: stats.Float(cur.Happiness + BatheHappiness),
		SeaGlass:  stats.Float(cur.SeaGlass - BatheCost),
	})
	return out, true
}

// ToggleSleep puts the pet to sleep or wakes it. Waking restores energy
// in proportion to the time slept.
func (svc *Service) ToggleSleep(ctx context.Context) bool {
	sleeping := svc.store.Snapshot().IsSleeping
	slept, changed := svc.store.SetSleeping(ctx, !sleeping)
	if !changed {
		return sleeping
	}
	if sleeping && slept > 0 {
		cur := svc.store.Stats()
		gained := WakeEnergyPerHour * slept.Hours()
		svc.store.SetStats(ctx, stats.Patch{
			Energy: stats.Float(cur.Energy + gained),
		})
	}
	svc.analytics.Increment(ctx, "sleep")
	return !sleeping
}

// Play rewards a finished mini-game: happiness bump, sea-glass equal to
// the score, and metric bookkeeping. Fishing games also count the
// catch. Negative scores are treated as zero.
func (svc *Service) Play(ctx context.Context, game string, score int) stats.CoreStats {
	if score < 0 {
		score = 0
	}
	cur := svc.store.Stats()
	out := svc.store.SetStats(ctx, stats.Patch{
		Happiness: stats.Float(cur.Happiness + PlayHappiness),
		SeaGlass:  stats.Float(cur.SeaGlass + float64(score)),
	})
	svc.store.IncrementMetric(ctx, MetricGamesPlayed)
	if game == "fishing" {
		svc.store.AddMetric(ctx, MetricFishCaught, int64(score))
	}
	svc.analytics.Increment(ctx, "play_"+game)
	return out
}

// SpendCoins is a guarded decrement: nothing changes unless the full
// amount is covered.
func (svc *Service) SpendCoins(ctx context.Context, amount float64) bool {
	if amount <= 0 {
		return false
	}
	cur := svc.store.Stats()
	if cur.SeaGlass < amount {
		return false
	}
	svc.store.SetStats(ctx, stats.Patch{
		SeaGlass: stats.Float(cur.SeaGlass - amount),
	})
	return true
}

// BuyItem purchases a cosmetic from the catalog, equips it, adds it to
// the inventory and counts the sale. Unknown items and insufficient
// balance both fail without side effects.
func (svc *Service) BuyItem(ctx context.Context, item string) bool {
	price, ok := catalog[item]
	if !ok {
		return false
	}
	if !svc.SpendCoins(ctx, price) {
		return false
	}

	eq := svc.store.Snapshot().Equipped
	switch item {
	case "hat":
		eq.Hat = true
	case "scarf":
		eq.Scarf = true
	case "sunglasses":
		eq.Sunglasses = true
	}
	svc.store.SetEquipped(ctx, eq)
	svc.store.AddInventoryItem(ctx, item)
	svc.store.IncrementMetric(ctx, MetricItemsBought)
	svc.analytics.Increment(ctx, "buy_"+item)
	return true
}

// ClaimDailyBonus claims today's scheduled reward.
func (svc *Service) ClaimDailyBonus(ctx context.Context) store.DailyClaim {
	claim := svc.store.ClaimDailyBonus(ctx)
	if claim.CanClaim {
		svc.analytics.Increment(ctx, "daily_bonus")
	}
	return claim
}

// Catalog returns a copy of the shop price list.
func Catalog() map[string]float64 {
	out := make(map[string]float64, len(catalog))
	for k, v := range catalog {
		out[k] = v
	}
	return out
}
