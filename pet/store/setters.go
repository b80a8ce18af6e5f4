package store

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/ottercare/pebble/pet/stats"
)

const maxNameLen = 24

// SetStats merges a partial update into the current stats, re-clamping
// every field. A no-op patch (sanitized result identical to current
// state) skips the write and the sync entirely.
func (s *Store) SetStats(ctx context.Context, patch stats.Patch) stats.CoreStats {
	s.mu.Lock()
	merged := stats.Merge(s.snap.Stats, patch)
	if merged == s.snap.Stats {
		s.mu.Unlock()
		return merged
	}
	s.snap.Stats = merged
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.scheduleSync()
	return merged
}

// SetInventory replaces the inventory with a sanitized copy of items:
// trimmed, empties dropped, duplicates removed in first-seen order.
// An order-sensitive equality check avoids redundant writes.
func (s *Store) SetInventory(ctx context.Context, items []string) []string {
	clean := SanitizeInventory(items)

	s.mu.Lock()
	if equalOrdered(clean, s.snap.Inventory) {
		s.mu.Unlock()
		return clean
	}
	s.snap.Inventory = clean
	s.persistLocked(ctx)
	inv := append([]string(nil), clean...)
	s.mu.Unlock()

	s.publishInventory(ctx, inv)
	s.scheduleSync()
	return clean
}

// AddInventoryItem appends one item if not already owned.
func (s *Store) AddInventoryItem(ctx context.Context, item string) bool {
	item = strings.TrimSpace(item)
	if item == "" {
		return false
	}

	s.mu.Lock()
	for _, have := range s.snap.Inventory {
		if have == item {
			s.mu.Unlock()
			return false
		}
	}
	s.snap.Inventory = append(s.snap.Inventory, item)
	s.persistLocked(ctx)
	inv := append([]string(nil), s.snap.Inventory...)
	s.mu.Unlock()

	s.publishInventory(ctx, inv)
	s.scheduleSync()
	return true
}

// SetEquipped replaces the cosmetic flags.
func (s *Store) SetEquipped(ctx context.Context, eq Equipped) {
	s.mu.Lock()
	if eq == s.snap.Equipped {
		s.mu.Unlock()
		return
	}
	s.snap.Equipped = eq
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.scheduleSync()
}

// SetPetName renames the pet. The name is trimmed, stripped of control
// characters, capped at 24 runes, and falls back to the default name
// when nothing is left.
func (s *Store) SetPetName(ctx context.Context, name string) string {
	clean := SanitizeName(name)
	if clean == "" {
		clean = DefaultPetName
	}

	s.mu.Lock()
	if clean == s.snap.PetName {
		s.mu.Unlock()
		return clean
	}
	s.snap.PetName = clean
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.scheduleSync()
	return clean
}

// SetPlayerName records the owner's display name (may be empty).
func (s *Store) SetPlayerName(ctx context.Context, name string) string {
	clean := SanitizeName(name)

	s.mu.Lock()
	if clean == s.snap.PlayerName {
		s.mu.Unlock()
		return clean
	}
	s.snap.PlayerName = clean
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.scheduleSync()
	return clean
}

// IncrementMetric bumps a monotonic counter and returns the new value.
func (s *Store) IncrementMetric(ctx context.Context, name string) int64 {
	return s.AddMetric(ctx, name, 1)
}

// AddMetric adds delta to a monotonic counter. Non-positive deltas are
// ignored; counters never decrease.
func (s *Store) AddMetric(ctx context.Context, name string, delta int64) int64 {
	s.mu.Lock()
	if delta > 0 {
		s.snap.Metrics[name] += delta
		s.persistLocked(ctx)
	}
	v := s.snap.Metrics[name]
	s.mu.Unlock()

	if delta > 0 {
		s.scheduleSync()
	}
	return v
}

// SetSleeping toggles sleep state. When waking, it returns how long the
// pet slept so the caller can apply energy recovery; toggling to the
// current state returns (0, false) without writing.
func (s *Store) SetSleeping(ctx context.Context, sleeping bool) (time.Duration, bool) {
	now := s.opts.Now()

	s.mu.Lock()
	if sleeping == s.snap.IsSleeping {
		s.mu.Unlock()
		return 0, false
	}
	var slept time.Duration
	if sleeping {
		s.snap.SleepStart = now.UnixMilli()
	} else if s.snap.SleepStart > 0 {
		slept = time.Duration(now.UnixMilli()-s.snap.SleepStart) * time.Millisecond
		s.snap.SleepStart = 0
	}
	s.snap.IsSleeping = sleeping
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.scheduleSync()
	return slept, true
}

// SanitizeInventory trims entries, drops empties and removes duplicates
// preserving first-seen order.
func SanitizeInventory(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SanitizeName trims, strips control characters and caps length.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	return name
}

func equalOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
