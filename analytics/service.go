package analytics

import (
	"context"
	"strconv"
	"sync"

	"github.com/ottercare/pebble/cache"
	"go.uber.org/zap"
)

const hashKey = "pebble:analytics"

// Service counts user actions in a cache hash, keyed by action name.
// Counting is opt-in; a disabled service is a no-op. Failures are
// logged and swallowed: analytics never affects gameplay.
type Service struct {
	mu      sync.Mutex
	cache   cache.Cache
	enabled bool
	logger  *zap.Logger
}

// New creates an analytics Service.
func New(c cache.Cache, enabled bool, logger *zap.Logger) *Service {
	return &Service{cache: c, enabled: enabled, logger: logger}
}

// Enabled reports whether counting is active.
func (s *Service) Enabled() bool { return s.enabled }

// Increment bumps the counter for action by one.
func (s *Service) Increment(ctx context.Context, action string) {
	if !s.enabled || action == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(0)
	if raw, err := s.cache.HGet(ctx, hashKey, action); err == nil {
		n, _ = strconv.ParseInt(raw, 10, 64)
	}
	if err := s.cache.HSet(ctx, hashKey, action, strconv.FormatInt(n+1, 10)); err != nil {
		s.logger.Warn("analytics write failed", zap.String("action", action), zap.Error(err))
	}
}

// Counts returns all counters. Empty when disabled.
func (s *Service) Counts(ctx context.Context) map[string]int64 {
	out := map[string]int64{}
	if !s.enabled {
		return out
	}
	raw, err := s.cache.HGetAll(ctx, hashKey)
	if err != nil {
		s.logger.Warn("analytics read failed", zap.Error(err))
		return out
	}
	for k, v := range raw {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			out[k] = n
		}
	}
	return out
}
