package store

import (
	"context"
	"testing"
	"time"

	"github.com/ottercare/pebble/pet/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineProgressNoPreviousLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.boot(t)

	result := env.store.OfflineProgress(context.Background())
	assert.Nil(t, result)
	assert.Equal(t, env.now.UnixMilli(), env.store.Snapshot().LastLoginDate)
}

func TestOfflineProgressBelowThreshold(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedState(t, Snapshot{
		Stats:         stats.Defaults(),
		LastLoginDate: env.now.Add(-30 * time.Second).UnixMilli(),
	})
	env.boot(t)

	result := env.store.OfflineProgress(context.Background())
	assert.Nil(t, result, "30s gap is under the 60s minimum")

	snap := env.store.Snapshot()
	assert.Equal(t, stats.Defaults(), snap.Stats, "stats unchanged")
	assert.Equal(t, env.now.UnixMilli(), snap.LastLoginDate, "login timestamp still advances")
}

func TestOfflineProgressAppliesDecay(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedState(t, Snapshot{
		Stats:         stats.Defaults(),
		LastLoginDate: env.now.Add(-5 * time.Hour).UnixMilli(),
	})
	env.boot(t)

	result := env.store.OfflineProgress(context.Background())
	require.NotNil(t, result)
	assert.InDelta(t, 5.0, result.HoursAway, 0.001)
	assert.Equal(t, stats.Defaults(), result.StatsBefore)

	// 5h at the test rates: hunger 80-25, happiness 85-20, energy 75-15, clean 80-12.5.
	assert.Equal(t, 55.0, result.StatsAfter.Hunger)
	assert.Equal(t, 65.0, result.StatsAfter.Happiness)
	assert.Equal(t, 60.0, result.StatsAfter.Energy)
	assert.Equal(t, 67.5, result.StatsAfter.Clean)
	assert.Equal(t, result.StatsAfter, env.store.Snapshot().Stats)
	assert.Equal(t, env.now.UnixMilli(), env.store.Snapshot().LastLoginDate)
}

func TestOfflineProgressGrantsGift(t *testing.T) {
	env := newTestEnv(t, nil)
	env.roll = 0.95 // eligible draw always grants
	env.seedState(t, Snapshot{
		Stats:         stats.Defaults(),
		LastLoginDate: env.now.Add(-6 * time.Hour).UnixMilli(),
	})
	env.boot(t)
	giftCh := env.subscribe(t, ChannelGiftFound)

	result := env.store.OfflineProgress(context.Background())
	require.NotNil(t, result)
	require.NotEmpty(t, result.Gift)
	assert.Contains(t, env.store.Snapshot().Inventory, result.Gift)
	assert.Contains(t, expectEvent(t, giftCh), result.Gift)
}

func TestOfflineProgressGiftMiss(t *testing.T) {
	env := newTestEnv(t, nil)
	env.roll = 0.1 // under the miss chance
	env.seedState(t, Snapshot{
		Stats:         stats.Defaults(),
		LastLoginDate: env.now.Add(-6 * time.Hour).UnixMilli(),
	})
	env.boot(t)

	result := env.store.OfflineProgress(context.Background())
	require.NotNil(t, result)
	assert.Empty(t, result.Gift)
	assert.Empty(t, env.store.Snapshot().Inventory)
}

func TestOfflineProgressShortGapNoGift(t *testing.T) {
	env := newTestEnv(t, nil)
	env.roll = 0.95
	env.seedState(t, Snapshot{
		Stats:         stats.Defaults(),
		LastLoginDate: env.now.Add(-2 * time.Hour).UnixMilli(),
	})
	env.boot(t)

	result := env.store.OfflineProgress(context.Background())
	require.NotNil(t, result)
	assert.Empty(t, result.Gift, "2h is under the 4h gift threshold")
}

func TestOfflineProgressGiftNotDuplicated(t *testing.T) {
	env := newTestEnv(t, nil)
	env.roll = 0.6 // deterministically the first pool item
	env.seedState(t, Snapshot{
		Stats:         stats.Defaults(),
		LastLoginDate: env.now.Add(-6 * time.Hour).UnixMilli(),
		Inventory:     []string{"smooth-pebble"},
	})
	env.boot(t)

	result := env.store.OfflineProgress(context.Background())
	require.NotNil(t, result)
	assert.Equal(t, "smooth-pebble", result.Gift)
	assert.Equal(t, []string{"smooth-pebble"}, env.store.Snapshot().Inventory, "no duplicate entry")
}

func TestOfflineProgressFutureLastLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.seedState(t, Snapshot{
		Stats:         stats.Defaults(),
		LastLoginDate: env.now.Add(time.Hour).UnixMilli(), // clock went backwards
	})
	env.boot(t)

	result := env.store.OfflineProgress(context.Background())
	assert.Nil(t, result)
	assert.Equal(t, env.now.UnixMilli(), env.store.Snapshot().LastLoginDate)
}
