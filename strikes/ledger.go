// Package strikes keeps the per-guild strike ledger and enforces the strike
// limit.
package strikes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ASHU16DEV/StaffManager/directory"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is the state the ledger reads and writes.
type Store interface {
	ServerLink() (*models.ServerLink, error)
	GuildSettings(guildID string) (*models.GuildSettings, error)
	UpsertStrikeLimit(guildID string, limit int) error
	UpsertStrikeChannel(guildID, channelID string) error
	StaffRoles(guildID string) ([]string, error)

	CreateStrike(strike *models.Strike) error
	DeleteStrike(guildID, strikeID string) (*models.Strike, error)
	DeleteUserStrikes(guildID, userID string) (int, error)
	UserStrikes(guildID, userID string) ([]models.Strike, error)
	GuildStrikes(guildID string) ([]models.Strike, error)
	DeleteExpiredStrikes(guildID string, now int64) (int, error)
	StrikeGuildIDs() ([]string, error)
}

// Ledger records strikes and enforces each guild's strike policy.
type Ledger struct {
	store  Store
	dir    directory.Directory
	notify directory.Notifier
	log    *zap.Logger
	now    func() time.Time
	newID  func() string

	members keyedMutex
	sweeps  singleflight.Group
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New returns a ledger. A nil logger discards logs.
func New(
	store Store,
	dir directory.Directory,
	notify directory.Notifier,
	log *zap.Logger,
	opts ...Option,
) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{
		store:  store,
		dir:    dir,
		notify: notify,
		log:    log.Named("strikes"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result describes a recorded strike.
type Result struct {
	Strike      *models.Strike
	Active      int
	Limit       int
	Enforcement *Enforcement // nil unless the limit was reached
}

// Enforcement is what happened when a member reached the strike limit.
type Enforcement struct {
	Kicked       bool
	RolesRemoved []string
}

// Add records a strike lasting d, then enforces the guild's policy if the
// member's active strikes have reached its limit.
func (l *Ledger) Add(
	ctx context.Context,
	guildID string,
	userID string,
	reason string,
	d time.Duration,
	addedBy string,
) (*Result, error) {
	unlock := l.members.Lock(guildID + "/" + userID)
	defer unlock()

	now := l.now()
	strike := &models.Strike{
		ID:       l.newID(),
		GuildID:  guildID,
		UserID:   userID,
		Reason:   reason,
		AddedAt:  models.Millis(now),
		Duration: d.Milliseconds(),
		EndTime:  models.Millis(now.Add(d)),
		AddedBy:  addedBy,
	}
	if err := l.store.CreateStrike(strike); err != nil {
		return nil, fmt.Errorf("save strike: %w", err)
	}

	active, err := l.ListActive(guildID, userID)
	if err != nil {
		return nil, err
	}
	policy, err := l.Policy(guildID)
	if err != nil {
		return nil, err
	}

	l.log.Info("Added strike.",
		zap.String("guild", guildID),
		zap.String("user", userID),
		zap.String("strike", strike.ID),
		zap.Int("active", len(active)),
		zap.Int("limit", policy.Limit),
	)
	l.announce(ctx, guildID, strike, len(active), policy)

	result := &Result{Strike: strike, Active: len(active), Limit: policy.Limit}
	if len(active) >= policy.Limit {
		result.Enforcement = l.enforce(ctx, guildID, userID, len(active), policy)
	}
	return result, nil
}

// Remove deletes and returns the strike with the given ID, or returns
// models.ErrNotFound.
func (l *Ledger) Remove(guildID, strikeID string) (*models.Strike, error) {
	strike, err := l.store.DeleteStrike(guildID, strikeID)
	if err != nil {
		return nil, fmt.Errorf("strike %s: %w", strikeID, err)
	}
	l.log.Info("Removed strike.", zap.String("guild", guildID), zap.String("strike", strikeID))
	return strike, nil
}

// RemoveAll deletes every strike of the member, expired or not, and
// returns how many were deleted.
func (l *Ledger) RemoveAll(guildID, userID string) (int, error) {
	unlock := l.members.Lock(guildID + "/" + userID)
	defer unlock()

	n, err := l.store.DeleteUserStrikes(guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete strikes of %s: %w", userID, err)
	}
	l.log.Info("Cleared strikes.",
		zap.String("guild", guildID),
		zap.String("user", userID),
		zap.Int("count", n),
	)
	return n, nil
}

// ListActive returns the member's strikes that have not yet ended.
func (l *Ledger) ListActive(guildID, userID string) ([]models.Strike, error) {
	all, err := l.ListAll(guildID, userID)
	if err != nil {
		return nil, err
	}
	return activeAt(all, l.now()), nil
}

// ListAll returns every stored strike of the member, oldest first.
func (l *Ledger) ListAll(guildID, userID string) ([]models.Strike, error) {
	strikes, err := l.store.UserStrikes(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("load strikes of %s: %w", userID, err)
	}
	return strikes, nil
}

// ListGuildActive returns the guild's strikes that have not yet ended,
// oldest first.
func (l *Ledger) ListGuildActive(guildID string) ([]models.Strike, error) {
	all, err := l.store.GuildStrikes(guildID)
	if err != nil {
		return nil, fmt.Errorf("load strikes in %s: %w", guildID, err)
	}
	return activeAt(all, l.now()), nil
}

func activeAt(strikes []models.Strike, now time.Time) []models.Strike {
	active := strikes[:0]
	for _, strike := range strikes {
		if strike.Active(now) {
			active = append(active, strike)
		}
	}
	return active
}

// SweepExpired deletes the guild's ended strikes and returns how many it
// deleted.
func (l *Ledger) SweepExpired(guildID string) (int, error) {
	n, err := l.store.DeleteExpiredStrikes(guildID, models.Millis(l.now()))
	if err != nil {
		return 0, fmt.Errorf("sweep strikes in %s: %w", guildID, err)
	}
	return n, nil
}

// SweepAllGroups deletes ended strikes in every guild and returns the
// total deleted. A failing guild does not stop the others. Concurrent
// calls share one pass.
func (l *Ledger) SweepAllGroups() (int, error) {
	v, err, _ := l.sweeps.Do("sweep", func() (interface{}, error) {
		return l.sweepAll()
	})
	n, _ := v.(int)
	return n, err
}

func (l *Ledger) sweepAll() (int, error) {
	guildIDs, err := l.store.StrikeGuildIDs()
	if err != nil {
		return 0, fmt.Errorf("load strike guilds: %w", err)
	}

	total := 0
	var errs []error
	for _, guildID := range guildIDs {
		n, err := l.SweepExpired(guildID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += n
	}

	if total > 0 {
		l.log.Info("Cleared expired strikes.", zap.Int("count", total))
	}
	return total, errors.Join(errs...)
}

// Policy returns the guild's strike policy.
func (l *Ledger) Policy(guildID string) (models.StrikePolicy, error) {
	settings, err := l.store.GuildSettings(guildID)
	if err != nil {
		return models.StrikePolicy{}, fmt.Errorf("load guild settings: %w", err)
	}
	return settings.Policy(), nil
}

// SetLimit sets the number of active strikes that triggers enforcement.
func (l *Ledger) SetLimit(guildID string, limit int) error {
	if limit < 1 {
		return fmt.Errorf("strike limit %d: %w", limit, models.ErrInvalidInput)
	}
	if err := l.store.UpsertStrikeLimit(guildID, limit); err != nil {
		return fmt.Errorf("save strike limit: %w", err)
	}
	return nil
}

// SetChannel sets the channel strike activity is logged to.
func (l *Ledger) SetChannel(guildID, channelID string) error {
	if err := l.store.UpsertStrikeChannel(guildID, channelID); err != nil {
		return fmt.Errorf("save strike channel: %w", err)
	}
	return nil
}
