package actions_test

import (
	"context"
	"testing"
	"time"

	"github.com/ottercare/pebble/analytics"
	"github.com/ottercare/pebble/cache"
	"github.com/ottercare/pebble/pet/actions"
	"github.com/ottercare/pebble/pet/gifts"
	"github.com/ottercare/pebble/pet/stats"
	"github.com/ottercare/pebble/pet/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   *actions.Service
	store *store.Store
	an    *analytics.Service
	now   time.Time
}

func newFixture(t *testing.T, analyticsOn bool) *fixture {
	t.Helper()
	c, err := cache.NewCache(cache.Config{})
	require.NoError(t, err)
	ps, err := cache.NewPubSub(cache.Config{})
	require.NoError(t, err)

	f := &fixture{now: time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)}
	st := store.New(c, ps, nil, gifts.New(func() float64 { return 0 }), zap.NewNop(), store.Options{
		Rates: stats.Rates{Hunger: 5, Happiness: 4, Energy: 3, Clean: 2.5},
		Now:   func() time.Time { return f.now },
	})
	require.NoError(t, st.Boot(context.Background()))
	t.Cleanup(st.Close)

	f.store = st
	f.an = analytics.New(c, analyticsOn, zap.NewNop())
	f.svc = actions.New(st, f.an, zap.NewNop())
	return f
}

func (f *fixture) setStats(t *testing.T, s stats.CoreStats) {
	t.Helper()
	f.store.SetStats(context.Background(), stats.Patch{
		Hunger:    stats.Float(s.Hunger),
		Happiness: stats.Float(s.Happiness),
		Energy:    stats.Float(s.Energy),
		Clean:     stats.Float(s.Clean),
		SeaGlass:  stats.Float(s.SeaGlass),
	})
}

func TestFeedFromDefaults(t *testing.T) {
	f := newFixture(t, false)

	// Fresh boot: hunger 80, happiness 85, sea-glass 0.
	out, fed := f.svc.Feed(context.Background())
	require.True(t, fed)
	assert.Equal(t, 100.0, out.Hunger, "80+20 clamps at the ceiling")
	assert.Equal(t, 91.0, out.Happiness)
	assert.Equal(t, 0.0, out.SeaGlass, "cost clamps at the floor, never negative")
}

func TestFeedNoOpWhenFull(t *testing.T) {
	f := newFixture(t, false)
	f.setStats(t, stats.CoreStats{Hunger: 100, Happiness: 50, Energy: 50, Clean: 50, SeaGlass: 30})

	out, fed := f.svc.Feed(context.Background())
	assert.False(t, fed)
	assert.Equal(t, 30.0, out.SeaGlass, "a full pet costs nothing")
}

func TestBathe(t *testing.T) {
	f := newFixture(t, false)
	f.setStats(t, stats.CoreStats{Hunger: 50, Happiness: 50, Energy: 50, Clean: 60, SeaGlass: 20})

	out, bathed := f.svc.Bathe(context.Background())
	require.True(t, bathed)
	assert.Equal(t, 85.0, out.Clean)
	assert.Equal(t, 55.0, out.Happiness)
	assert.Equal(t, 15.0, out.SeaGlass)

	f.setStats(t, stats.CoreStats{Hunger: 50, Happiness: 50, Energy: 50, Clean: 100, SeaGlass: 15})
	_, bathed = f.svc.Bathe(context.Background())
	assert.False(t, bathed)
}

func TestToggleSleepRestoresEnergy(t *testing.T) {
	f := newFixture(t, false)
	f.setStats(t, stats.CoreStats{Hunger: 50, Happiness: 50, Energy: 40, Clean: 50})
	ctx := context.Background()

	assert.True(t, f.svc.ToggleSleep(ctx), "now sleeping")
	f.now = f.now.Add(3 * time.Hour)
	assert.False(t, f.svc.ToggleSleep(ctx), "awake again")

	// 3h asleep at 10 energy/hour.
	assert.Equal(t, 70.0, f.store.Stats().Energy)
}

func TestPlayRewardsAndCounts(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	out := f.svc.Play(ctx, "fishing", 7)
	assert.Equal(t, 7.0, out.SeaGlass)
	assert.Equal(t, 93.0, out.Happiness)

	snap := f.store.Snapshot()
	assert.Equal(t, int64(1), snap.Metrics[actions.MetricGamesPlayed])
	assert.Equal(t, int64(7), snap.Metrics[actions.MetricFishCaught])
}

func TestPlayNegativeScoreTreatedAsZero(t *testing.T) {
	f := newFixture(t, false)
	out := f.svc.Play(context.Background(), "pearl-dive", -10)
	assert.Equal(t, 0.0, out.SeaGlass)
}

func TestSpendCoinsGuard(t *testing.T) {
	f := newFixture(t, false)
	f.setStats(t, stats.CoreStats{Hunger: 50, Happiness: 50, Energy: 50, Clean: 50, SeaGlass: 30})
	ctx := context.Background()

	assert.False(t, f.svc.SpendCoins(ctx, 31), "insufficient balance")
	assert.Equal(t, 30.0, f.store.Stats().SeaGlass, "nothing deducted on failure")

	assert.True(t, f.svc.SpendCoins(ctx, 30))
	assert.Equal(t, 0.0, f.store.Stats().SeaGlass)

	assert.False(t, f.svc.SpendCoins(ctx, 0), "non-positive spends rejected")
}

func TestBuyItem(t *testing.T) {
	f := newFixture(t, false)
	f.setStats(t, stats.CoreStats{Hunger: 50, Happiness: 50, Energy: 50, Clean: 50, SeaGlass: 60})
	ctx := context.Background()

	assert.False(t, f.svc.BuyItem(ctx, "submarine"), "unknown item")
	assert.False(t, f.svc.BuyItem(ctx, "scarf"), "75 > 60")
	assert.True(t, f.svc.BuyItem(ctx, "hat"))

	snap := f.store.Snapshot()
	assert.True(t, snap.Equipped.Hat)
	assert.Contains(t, snap.Inventory, "hat")
	assert.Equal(t, 10.0, snap.Stats.SeaGlass)
	assert.Equal(t, int64(1), snap.Metrics[actions.MetricItemsBought])
}

func TestClaimDailyBonusThroughActions(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	claim := f.svc.ClaimDailyBonus(ctx)
	require.True(t, claim.CanClaim)
	assert.Equal(t, 1, claim.Streak)

	again := f.svc.ClaimDailyBonus(ctx)
	assert.False(t, again.CanClaim)
}

func TestActionsCountedWhenOptedIn(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// The first feed fills the pet; the second is a no-op but still a
	// user action and still counted.
	f.svc.Feed(ctx)
	_, fed := f.svc.Feed(ctx)
	assert.False(t, fed)
	f.svc.Play(ctx, "fishing", 1)

	counts := f.an.Counts(ctx)
	assert.Equal(t, int64(2), counts["feed"])
	assert.Equal(t, int64(1), counts["play_fishing"])
}

func TestActionsNotCountedByDefault(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	f.svc.Feed(ctx)
	assert.Empty(t, f.an.Counts(ctx))
}
