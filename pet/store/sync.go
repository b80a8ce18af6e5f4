package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ottercare/pebble/cloud"
	"go.uber.org/zap"
)

// skewTolerance absorbs clock drift between devices when comparing
// last-login timestamps. Within the window, local wins.
const skewTolerance = time.Second

// syncTimeout bounds a debounced background sync round-trip.
const syncTimeout = 15 * time.Second

// scheduleSync restarts the trailing-edge debounce timer. Bursts of
// local writes collapse into a single cloud round-trip.
func (s *Store) scheduleSync() {
	if s.gateway == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cloudDown {
		return
	}
	if s.syncTimer != nil {
		s.syncTimer.Stop()
	}
	s.syncTimer = time.AfterFunc(s.opts.SyncDebounce, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		s.SyncCloud(ctx)
	})
}

// Flush cancels any pending debounce and syncs immediately. Called on
// shutdown so the last writes reach the cloud.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.syncTimer != nil {
		s.syncTimer.Stop()
		s.syncTimer = nil
	}
	s.mu.Unlock()
	s.SyncCloud(ctx)
}

// CloudAvailable reports whether cloud sync is configured and has not
// been latched off for the session.
func (s *Store) CloudAvailable() bool {
	if s.gateway == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cloudDown
}

// SyncCloud reconciles local state with the cloud row.
//
// Conflict rule: if the remote last-login is newer than local by more
// than skewTolerance, the remote snapshot wins outright and nothing is
// pushed. Otherwise local is fresher and overwrites the remote row.
// Inventories are always unioned regardless of the winner, so gifts
// earned offline on another device are never dropped; stats are
// whole-row last-writer-wins (the asymmetry is deliberate: stats
// converge on the next decay cycle, collectibles would be lost).
//
// Expected failures degrade to "no sync this cycle". A schema-missing
// error latches sync off for the rest of the session.
//
// The returned row is the pre-push remote read (nil when none existed).
func (s *Store) SyncCloud(ctx context.Context) *cloud.Row {
	if s.gateway == nil {
		return nil
	}

	s.mu.Lock()
	if s.cloudDown || s.syncInFlight {
		s.mu.Unlock()
		return nil
	}
	s.syncInFlight = true
	playerID := s.playerID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncInFlight = false
		s.mu.Unlock()
	}()

	remote, err := s.gateway.FetchByPlayerID(ctx, playerID)
	if err != nil {
		if errors.Is(err, cloud.ErrNotFound) {
			remote = nil
		} else if errors.Is(err, cloud.ErrSchemaMissing) {
			s.latchCloudDown(err)
			return nil
		} else {
			s.logger.Warn("cloud fetch failed", zap.Error(err))
			return nil
		}
	}

	s.mu.Lock()
	localLast := time.UnixMilli(s.snap.LastLoginDate)

	if remote != nil && remote.LastLogin.Sub(localLast) > skewTolerance {
		// Remote wins: adopt its snapshot, push nothing.
		s.snap.Stats = remote.Stats
		s.snap.LastLoginDate = remote.LastLogin.UnixMilli()
		if remote.PetName != "" {
			s.snap.PetName = remote.PetName
		}
		if remote.PlayerName != "" {
			s.snap.PlayerName = remote.PlayerName
		}
		merged := UnionInventory(remote.Inventory, s.snap.Inventory)
		invChanged := !equalOrdered(merged, s.snap.Inventory)
		s.snap.Inventory = merged
		s.persistLocked(ctx)
		inv := append([]string(nil), merged...)
		s.mu.Unlock()

		if invChanged {
			s.publishInventory(ctx, inv)
		}
		s.logger.Info("cloud state adopted", zap.Time("remote_last_login", remote.LastLogin))
		return remote
	}

	// Local is fresher or equal: fold in any remote-only inventory,
	// then overwrite the remote row.
	var invChanged bool
	var inv []string
	if remote != nil {
		merged := UnionInventory(s.snap.Inventory, remote.Inventory)
		invChanged = !equalOrdered(merged, s.snap.Inventory)
		if invChanged {
			s.snap.Inventory = merged
			s.persistLocked(ctx)
		}
		inv = append([]string(nil), merged...)
	}
	row := &cloud.Row{
		ID:         playerID,
		Stats:      s.snap.Stats,
		LastLogin:  time.UnixMilli(s.snap.LastLoginDate),
		Inventory:  append([]string(nil), s.snap.Inventory...),
		PetName:    s.snap.PetName,
		PlayerName: s.snap.PlayerName,
	}
	s.mu.Unlock()

	if invChanged {
		s.publishInventory(ctx, inv)
	}

	if err := s.gateway.Upsert(ctx, row); err != nil {
		if errors.Is(err, cloud.ErrSchemaMissing) {
			s.latchCloudDown(err)
		} else {
			s.logger.Warn("cloud upsert failed", zap.Error(err))
		}
	}
	return remote
}

// latchCloudDown permanently disables sync for the session and logs the
// diagnostic once, not per call.
func (s *Store) latchCloudDown(err error) {
	s.mu.Lock()
	s.cloudDown = true
	logIt := !s.downLogged
	s.downLogged = true
	if s.syncTimer != nil {
		s.syncTimer.Stop()
		s.syncTimer = nil
	}
	s.mu.Unlock()

	if logIt {
		s.logger.Warn("cloud backend missing its table; sync disabled for this session", zap.Error(err))
	}
}

// ---- recovery by code ----

// RecoveryStatus classifies the outcome of a recovery attempt. These
// are the only sync failures surfaced to the user.
type RecoveryStatus string

const (
	RecoveryOK            RecoveryStatus = "ok"
	RecoveryAlreadyLinked RecoveryStatus = "already_linked"
	RecoveryDisabled      RecoveryStatus = "disabled"
	RecoveryInvalid       RecoveryStatus = "invalid"
	RecoveryNotFound      RecoveryStatus = "not_found"
	RecoveryError         RecoveryStatus = "error"
)

// RecoveryResult is returned to the caller for user display.
type RecoveryResult struct {
	Status   RecoveryStatus `json:"status"`
	PlayerID string         `json:"playerId,omitempty"`
}

// RecoverFromCode switches this device to the pet behind the given
// recovery code (a player id from another device) and pulls its cloud
// snapshot. Identity-changed fires on success.
func (s *Store) RecoverFromCode(ctx context.Context, code string) RecoveryResult {
	code = strings.TrimSpace(code)
	if code == "" || uuid.Validate(code) != nil {
		return RecoveryResult{Status: RecoveryInvalid}
	}

	s.mu.Lock()
	current := s.playerID
	down := s.cloudDown
	s.mu.Unlock()

	if code == current {
		return RecoveryResult{Status: RecoveryAlreadyLinked, PlayerID: current}
	}
	if s.gateway == nil || down {
		return RecoveryResult{Status: RecoveryDisabled}
	}

	remote, err := s.gateway.FetchByPlayerID(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, cloud.ErrNotFound):
			return RecoveryResult{Status: RecoveryNotFound}
		case errors.Is(err, cloud.ErrSchemaMissing):
			s.latchCloudDown(err)
			return RecoveryResult{Status: RecoveryDisabled}
		default:
			s.logger.Warn("recovery fetch failed", zap.Error(err))
			return RecoveryResult{Status: RecoveryError}
		}
	}

	// Adopt the recovered snapshot outright. The timestamp arbitration
	// of SyncCloud does not apply here: this device's state belongs to
	// the identity being abandoned, and its login timestamp was just
	// refreshed, so "local is fresher" would clobber the recovered pet.
	s.mu.Lock()
	s.playerID = code
	if err := s.cache.Set(ctx, PlayerKey, code, 0); err != nil {
		s.logger.Warn("persist player id", zap.Error(err))
	}
	s.snap.Stats = remote.Stats
	s.snap.LastLoginDate = remote.LastLogin.UnixMilli()
	if remote.PetName != "" {
		s.snap.PetName = remote.PetName
	}
	if remote.PlayerName != "" {
		s.snap.PlayerName = remote.PlayerName
	}
	merged := UnionInventory(remote.Inventory, s.snap.Inventory)
	invChanged := !equalOrdered(merged, s.snap.Inventory)
	s.snap.Inventory = merged
	s.persistLocked(ctx)
	inv := append([]string(nil), merged...)
	s.mu.Unlock()

	s.publishIdentity(ctx, code)
	if invChanged {
		s.publishInventory(ctx, inv)
	}

	// Push the merged state back so the remote row gains any inventory
	// this device held. Timestamps are equal now, so local pushes.
	s.SyncCloud(ctx)
	return RecoveryResult{Status: RecoveryOK, PlayerID: code}
}

// UnionInventory merges two inventories with set semantics, keeping
// primary's order then appending items only secondary has.
func UnionInventory(primary, secondary []string) []string {
	out := make([]string, 0, len(primary)+len(secondary))
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	for _, list := range [][]string{primary, secondary} {
		for _, it := range list {
			if _, dup := seen[it]; dup {
				continue
			}
			seen[it] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}
