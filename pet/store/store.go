package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ottercare/pebble/cache"
	"github.com/ottercare/pebble/cloud"
	"github.com/ottercare/pebble/pet/gifts"
	"github.com/ottercare/pebble/pet/stats"
	"go.uber.org/zap"
)

// Local storage keys. The state blob is versioned so a future schema
// change can migrate instead of tripping the corrupt-data fallback.
const (
	StateKey  = "pebble:state:v1"
	PlayerKey = "pebble:player_id"
)

// Pub/sub channels for change events consumed by the presentation layer.
const (
	ChannelIdentityChanged  = "pet.identity_changed"
	ChannelInventoryChanged = "pet.inventory_changed"
	ChannelGiftFound        = "pet.gift_found"
)

// DefaultPetName is used when a rename sanitizes down to nothing.
const DefaultPetName = "Pebble"

// Equipped holds the cosmetic flags. Presentational, but persisted and
// synced like everything else.
type Equipped struct {
	Hat        bool `json:"hat"`
	Scarf      bool `json:"scarf"`
	Sunglasses bool `json:"sunglasses"`
}

// Snapshot is the full persisted pet state. It round-trips as JSON
// through the local KV store.
type Snapshot struct {
	Stats               stats.CoreStats  `json:"stats"`
	LastLoginDate       int64            `json:"lastLoginDate"` // ms epoch
	FirstLoginDate      int64            `json:"firstLoginDate"`
	Inventory           []string         `json:"inventory"`
	PetName             string           `json:"petName"`
	PlayerName          string           `json:"playerName"`
	Equipped            Equipped         `json:"equipped"`
	Metrics             map[string]int64 `json:"metrics"`
	IsSleeping          bool             `json:"isSleeping"`
	SleepStart          int64            `json:"sleepStart,omitempty"`
	LastDailyBonusClaim int64            `json:"lastDailyBonusClaim"`
	DailyStreak         int              `json:"dailyStreak"`
}

// Options tunes the store. Zero values fall back to sensible defaults.
type Options struct {
	Rates         stats.Rates
	SyncDebounce  time.Duration
	MinOfflineGap time.Duration
	Now           func() time.Time
}

// Store owns the authoritative in-memory pet state. All mutation goes
// through its methods: write-through to the local cache, debounced push
// to the cloud gateway, change events on pub/sub.
type Store struct {
	mu      sync.Mutex
	cache   cache.Cache
	pubsub  cache.PubSub
	gateway cloud.Gateway // nil = cloud sync disabled
	rules   *gifts.Rules
	logger  *zap.Logger
	opts    Options

	playerID  string
	snap      Snapshot
	freshBoot bool

	cloudDown    bool // latched for the session on schema-missing
	downLogged   bool
	syncTimer    *time.Timer
	syncInFlight bool
}

// New creates a Store. gateway may be nil to run fully local.
func New(c cache.Cache, ps cache.PubSub, gateway cloud.Gateway, rules *gifts.Rules, logger *zap.Logger, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SyncDebounce <= 0 {
		opts.SyncDebounce = 5 * time.Second
	}
	if opts.MinOfflineGap <= 0 {
		opts.MinOfflineGap = time.Minute
	}
	return &Store{
		cache:   c,
		pubsub:  ps,
		gateway: gateway,
		rules:   rules,
		logger:  logger,
		opts:    opts,
	}
}

// Boot loads persisted state, falling back to defaults on missing or
// corrupt data, and resolves the player id (generating one if absent).
// It emits an identity-changed event when the id is freshly generated.
func (s *Store) Boot(ctx context.Context) error {
	s.mu.Lock()

	identityFresh := false
	id, err := s.cache.Get(ctx, PlayerKey)
	if err != nil || id == "" {
		id = uuid.NewString()
		identityFresh = true
		if err := s.cache.Set(ctx, PlayerKey, id, 0); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.playerID = id

	blob, err := s.cache.Get(ctx, StateKey)
	if err != nil || blob == "" {
		s.snap = defaultSnapshot(s.opts.Now())
		s.freshBoot = true
	} else if jsonErr := json.Unmarshal([]byte(blob), &s.snap); jsonErr != nil {
		s.logger.Warn("corrupt local state, resetting to defaults", zap.Error(jsonErr))
		s.snap = defaultSnapshot(s.opts.Now())
		s.freshBoot = true
	} else {
		normalizeSnapshot(&s.snap)
	}

	s.persistLocked(ctx)
	s.mu.Unlock()

	if identityFresh {
		s.publishIdentity(ctx, id)
	}
	return nil
}

// FreshBoot reports whether Boot found no usable prior state.
func (s *Store) FreshBoot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freshBoot
}

// PlayerID returns the stable per-device id, which doubles as the
// cloud recovery code.
func (s *Store) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerID
}

// Snapshot returns a deep copy of the current state. Callers can never
// mutate the store through the returned value.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSnapshot(s.snap)
}

// Stats returns a copy of the current core stats.
func (s *Store) Stats() stats.CoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Stats
}

// ResetToDefaults atomically replaces the whole snapshot with a fresh
// default state. The player id is kept.
func (s *Store) ResetToDefaults(ctx context.Context) {
	s.mu.Lock()
	s.snap = defaultSnapshot(s.opts.Now())
	s.persistLocked(ctx)
	inv := append([]string(nil), s.snap.Inventory...)
	s.mu.Unlock()

	s.publishInventory(ctx, inv)
	s.scheduleSync()
}

// Close stops any pending debounce timer. It does not flush; call
// Flush first if the last writes should reach the cloud.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncTimer != nil {
		s.syncTimer.Stop()
		s.syncTimer = nil
	}
}

// persistLocked writes the snapshot through to local storage. The
// caller holds s.mu. Storage failures are logged, never propagated:
// in-memory state stays authoritative for the session.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := json.Marshal(s.snap)
	if err != nil {
		s.logger.Error("marshal state", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, StateKey, string(data), 0); err != nil {
		s.logger.Warn("persist state", zap.Error(err))
	}
}

func defaultSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Stats:          stats.Defaults(),
		LastLoginDate:  0,
		FirstLoginDate: now.UnixMilli(),
		Inventory:      []string{},
		PetName:        DefaultPetName,
		Metrics:        map[string]int64{},
	}
}

// normalizeSnapshot repairs a loaded snapshot so later code can assume
// non-nil maps/slices and in-range stats.
func normalizeSnapshot(snap *Snapshot) {
	snap.Stats = stats.Sanitize(snap.Stats)
	if snap.Inventory == nil {
		snap.Inventory = []string{}
	}
	if snap.Metrics == nil {
		snap.Metrics = map[string]int64{}
	}
	if snap.PetName == "" {
		snap.PetName = DefaultPetName
	}
}

func cloneSnapshot(snap Snapshot) Snapshot {
	out := snap
	out.Inventory = append([]string(nil), snap.Inventory...)
	out.Metrics = make(map[string]int64, len(snap.Metrics))
	for k, v := range snap.Metrics {
		out.Metrics[k] = v
	}
	return out
}

// ---- change events ----

func (s *Store) publish(ctx context.Context, channel string, payload interface{}) {
	if s.pubsub == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.pubsub.Publish(ctx, channel, string(data)); err != nil {
		s.logger.Warn("publish event", zap.String("channel", channel), zap.Error(err))
	}
}

func (s *Store) publishIdentity(ctx context.Context, id string) {
	s.publish(ctx, ChannelIdentityChanged, map[string]string{"playerId": id})
}

func (s *Store) publishInventory(ctx context.Context, inv []string) {
	s.publish(ctx, ChannelInventoryChanged, map[string][]string{"inventory": inv})
}

func (s *Store) publishGift(ctx context.Context, item string) {
	s.publish(ctx, ChannelGiftFound, map[string]string{"item": item})
}
