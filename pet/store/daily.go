package store

import (
	"context"
	"time"

	"github.com/ottercare/pebble/pet/gifts"
	"github.com/ottercare/pebble/pet/stats"
)

// DailyClaim is the outcome of a daily bonus claim attempt.
type DailyClaim struct {
	CanClaim bool             `json:"canClaim"`
	Streak   int              `json:"streak,omitempty"`
	Reward   gifts.DailyBonus `json:"reward,omitempty"`
}

// CanClaimDailyBonus reports whether a claim would succeed right now.
func (s *Store) CanClaimDailyBonus() bool {
	now := s.opts.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.LastDailyBonusClaim == 0 ||
		!sameCalendarDay(millisIn(s.snap.LastDailyBonusClaim, now), now)
}

// ClaimDailyBonus grants the scheduled reward for today. Claiming twice
// in the same calendar day is rejected. A one-day gap advances the
// streak; skipping two or more calendar days resets it to 1.
func (s *Store) ClaimDailyBonus(ctx context.Context) DailyClaim {
	now := s.opts.Now()

	s.mu.Lock()
	last := s.snap.LastDailyBonusClaim
	if last > 0 && sameCalendarDay(millisIn(last, now), now) {
		streak := s.snap.DailyStreak
		s.mu.Unlock()
		return DailyClaim{CanClaim: false, Streak: streak}
	}

	streak := 1
	if last > 0 && calendarDaysBetween(millisIn(last, now), now) == 1 {
		streak = s.snap.DailyStreak + 1
	}
	s.snap.DailyStreak = streak
	s.snap.LastDailyBonusClaim = now.UnixMilli()

	reward := gifts.DailyReward(streak)
	var inv []string
	switch reward.Type {
	case gifts.RewardSeaGlass:
		s.snap.Stats.SeaGlass = stats.ClampCurrency(s.snap.Stats.SeaGlass + float64(reward.Value))
	case gifts.RewardItem:
		owned := false
		for _, have := range s.snap.Inventory {
			if have == reward.Item {
				owned = true
				break
			}
		}
		if !owned {
			s.snap.Inventory = append(s.snap.Inventory, reward.Item)
			inv = append([]string(nil), s.snap.Inventory...)
		}
	}

	s.persistLocked(ctx)
	s.mu.Unlock()

	if inv != nil {
		s.publishInventory(ctx, inv)
	}
	s.scheduleSync()
	return DailyClaim{CanClaim: true, Streak: streak, Reward: reward}
}

// DaysPlayed counts calendar days since first login, starting at 1.
func (s *Store) DaysPlayed() int {
	now := s.opts.Now()
	s.mu.Lock()
	first := s.snap.FirstLoginDate
	s.mu.Unlock()
	if first <= 0 {
		return 1
	}
	return calendarDaysBetween(millisIn(first, now), now) + 1
}

// millisIn converts a stored unix-millis timestamp into ref's time zone
// so date comparisons use a single zone.
func millisIn(ms int64, ref time.Time) time.Time {
	return time.UnixMilli(ms).In(ref.Location())
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// calendarDaysBetween counts date-line crossings from a to b, ignoring
// time of day. Negative when b precedes a.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}
