package store

import (
	"context"
	"testing"
	"time"

	"github.com/ottercare/pebble/pet/gifts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyBonusFirstClaim(t *testing.T) {
	env := newTestEnv(t, nil)
	env.boot(t)

	claim := env.store.ClaimDailyBonus(context.Background())
	require.True(t, claim.CanClaim)
	assert.Equal(t, 1, claim.Streak)
	assert.Equal(t, gifts.DailyBonus{Type: gifts.RewardSeaGlass, Value: 50}, claim.Reward)
	assert.Equal(t, 50.0, env.store.Stats().SeaGlass)
}

func TestDailyBonusSameDayRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	env.boot(t)
	ctx := context.Background()

	require.True(t, env.store.ClaimDailyBonus(ctx).CanClaim)

	env.now = env.now.Add(3 * time.Hour) // later the same calendar day
	claim := env.store.ClaimDailyBonus(ctx)
	assert.False(t, claim.CanClaim)
	assert.Equal(t, 50.0, env.store.Stats().SeaGlass, "no double payout")
	assert.False(t, env.store.CanClaimDailyBonus())
}

func TestDailyBonusConsecutiveDaysAdvanceStreak(t *testing.T) {
	env := newTestEnv(t, nil)
	env.boot(t)
	ctx := context.Background()

	require.Equal(t, 1, env.store.ClaimDailyBonus(ctx).Streak)

	env.now = env.now.Add(24 * time.Hour)
	assert.True(t, env.store.CanClaimDailyBonus())
	require.Equal(t, 2, env.store.ClaimDailyBonus(ctx).Streak)

	env.now = env.now.Add(24 * time.Hour)
	require.Equal(t, 3, env.store.ClaimDailyBonus(ctx).Streak)
}

func TestDailyBonusGapResetsStreak(t *testing.T) {
	env := newTestEnv(t, nil)
	env.boot(t)
	ctx := context.Background()

	env.store.ClaimDailyBonus(ctx)
	env.now = env.now.Add(24 * time.Hour)
	require.Equal(t, 2, env.store.ClaimDailyBonus(ctx).Streak)

	env.now = env.now.Add(48 * time.Hour) // skipped a day
	claim := env.store.ClaimDailyBonus(ctx)
	assert.Equal(t, 1, claim.Streak)
}

func TestDailyBonusItemDayAddsInventory(t *testing.T) {
	env := newTestEnv(t, nil)
	env.boot(t)
	ctx := context.Background()
	invCh := env.subscribe(t, ChannelInventoryChanged)

	// Walk the streak to day 4, the first item day.
	for day := 1; day <= 4; day++ {
		claim := env.store.ClaimDailyBonus(ctx)
		require.True(t, claim.CanClaim)
		if day == 4 {
			assert.Equal(t, gifts.RewardItem, claim.Reward.Type)
			assert.Equal(t, "pearl-comb", claim.Reward.Item)
		}
		env.now = env.now.Add(24 * time.Hour)
	}
	assert.Contains(t, env.store.Snapshot().Inventory, "pearl-comb")
	assert.Contains(t, expectEvent(t, invCh), "pearl-comb")
}

func TestDailyBonusCrossingMidnightCounts(t *testing.T) {
	env := newTestEnv(t, nil)
	env.now = time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)
	env.boot(t)
	ctx := context.Background()

	env.store.ClaimDailyBonus(ctx)

	// One hour later it is the next calendar day.
	env.now = env.now.Add(time.Hour)
	claim := env.store.ClaimDailyBonus(ctx)
	require.True(t, claim.CanClaim)
	assert.Equal(t, 2, claim.Streak)
}

func TestDaysPlayed(t *testing.T) {
	env := newTestEnv(t, nil)
	env.boot(t)

	assert.Equal(t, 1, env.store.DaysPlayed())
	env.now = env.now.Add(72 * time.Hour)
	assert.Equal(t, 4, env.store.DaysPlayed())
}
