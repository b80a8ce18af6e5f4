package store

import (
	"context"

	"github.com/ottercare/pebble/pet/stats"
	"go.uber.org/zap"
)

// OfflineResult describes what happened while the app was closed. It
// drives the "welcome back" presentation.
type OfflineResult struct {
	HoursAway   float64         `json:"hoursAway"`
	StatsBefore stats.CoreStats `json:"statsBefore"`
	StatsAfter  stats.CoreStats `json:"statsAfter"`
	Gift        string          `json:"gift,omitempty"`
}

// OfflineProgress applies retroactive decay and a possible idle gift
// for the time elapsed since the last login. Called once per boot and
// on app resume.
//
// Gaps under MinOfflineGap (rapid reloads) and missing previous logins
// only advance the login timestamp; no decay, nil result.
func (s *Store) OfflineProgress(ctx context.Context) *OfflineResult {
	now := s.opts.Now()
	nowMS := now.UnixMilli()

	s.mu.Lock()
	last := s.snap.LastLoginDate
	if last <= 0 || last > nowMS || nowMS-last < s.opts.MinOfflineGap.Milliseconds() {
		s.snap.LastLoginDate = nowMS
		s.persistLocked(ctx)
		s.mu.Unlock()
		return nil
	}

	hoursAway := float64(nowMS-last) / 3.6e6
	before := s.snap.Stats
	after := stats.ApplyDecay(before, hoursAway, s.opts.Rates)
	s.snap.Stats = after
	s.snap.LastLoginDate = nowMS

	result := &OfflineResult{
		HoursAway:   hoursAway,
		StatsBefore: before,
		StatsAfter:  after,
	}

	var inv []string
	if item, ok := s.rules.TryGrant(hoursAway); ok {
		owned := false
		for _, have := range s.snap.Inventory {
			if have == item {
				owned = true
				break
			}
		}
		if !owned {
			s.snap.Inventory = append(s.snap.Inventory, item)
			inv = append([]string(nil), s.snap.Inventory...)
		}
		result.Gift = item
	}

	s.persistLocked(ctx)
	s.mu.Unlock()

	if result.Gift != "" {
		s.publishGift(ctx, result.Gift)
	}
	if inv != nil {
		s.publishInventory(ctx, inv)
	}
	s.scheduleSync()

	s.logger.Info("offline progress applied",
		zap.Float64("hours_away", result.HoursAway),
		zap.String("gift", result.Gift),
	)
	return result
}
