// Package inactive manages leave requests and the time-boxed inactive
// status they grant.
//
// A request moves from pending to approved (inactive role applied, expiry
// recorded) or denied. Approved grants are finalized by Sweep once their
// end time passes: the inactive role is removed and the member told. Sweep
// is safe to run at startup and from a ticker at the same time; each
// expired grant is claimed by exactly one run.
package inactive

import (
	"context"
	"fmt"
	"time"

	"github.com/ASHU16DEV/StaffManager/directory"
	"github.com/ASHU16DEV/StaffManager/duration"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is the state the engine reads and writes.
type Store interface {
	GuildSettings(guildID string) (*models.GuildSettings, error)

	CreateInactiveRequest(request *models.InactiveRequest) error
	InactiveRequest(messageID string) (*models.InactiveRequest, error)
	DeleteInactiveRequest(messageID string) (bool, error)

	UpsertInactiveGrant(grant *models.InactiveGrant) error
	InactiveGrant(guildID, userID string) (*models.InactiveGrant, error)
	ExpiredInactiveGrants(now int64) ([]models.InactiveGrant, error)
	ClaimInactiveGrant(id uint, now int64) (bool, error)
	DeleteInactiveGrant(guildID, userID string) (bool, error)
}

// Engine runs the inactive status workflow.
type Engine struct {
	store  Store
	dir    directory.Directory
	notify directory.Notifier
	log    *zap.Logger
	now    func() time.Time
	sweeps singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New returns an engine. A nil logger discards logs.
func New(
	store Store,
	dir directory.Directory,
	notify directory.Notifier,
	log *zap.Logger,
	opts ...Option,
) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		store:  store,
		dir:    dir,
		notify: notify,
		log:    log.Named("inactive"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LeaveRequest asks for an inactive period. Key correlates the request
// with the message it was posted as.
type LeaveRequest struct {
	Key      string
	GuildID  string
	UserID   string
	Reason   string
	Duration time.Duration
}

// RequestLeave stores a pending request.
func (e *Engine) RequestLeave(req LeaveRequest) (*models.InactiveRequest, error) {
	if req.Key == "" || req.GuildID == "" || req.UserID == "" {
		return nil, fmt.Errorf("leave request: missing key, guild or user: %w", models.ErrInvalidInput)
	}
	if req.Duration <= 0 || req.Duration > duration.Max {
		return nil, fmt.Errorf("leave request for %v: %w", req.Duration, models.ErrInvalidInput)
	}

	request := &models.InactiveRequest{
		MessageID:   req.Key,
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		Reason:      req.Reason,
		Duration:    req.Duration.Milliseconds(),
		RequestedAt: models.Millis(e.now()),
	}
	if err := e.store.CreateInactiveRequest(request); err != nil {
		return nil, fmt.Errorf("save leave request: %w", err)
	}

	e.log.Info("Leave requested.",
		zap.String("guild", req.GuildID),
		zap.String("user", req.UserID),
		zap.Duration("duration", req.Duration),
	)
	return request, nil
}

// Approve grants the request posted as key. An existing grant for the
// member is replaced. It returns models.ErrNotFound if the request is
// unknown, already decided, or the member has left the guild. If the grant
// cannot be saved the request stays pending so the approval can be retried.
func (e *Engine) Approve(ctx context.Context, key, approverID string) (*models.InactiveGrant, error) {
	pending, err := e.store.InactiveRequest(key)
	if err != nil {
		return nil, fmt.Errorf("leave request %s: %w", key, err)
	}
	settings, err := e.store.GuildSettings(pending.GuildID)
	if err != nil {
		return nil, fmt.Errorf("load guild settings: %w", err)
	}

	request, err := e.claimRequest(key)
	if err != nil {
		return nil, err
	}
	log := e.log.With(zap.String("guild", request.GuildID), zap.String("user", request.UserID))

	member, ok := e.dir.Member(ctx, request.GuildID, request.UserID)
	if !ok {
		log.Info("Dropped leave request for departed member.")
		return nil, fmt.Errorf("member %s: %w", request.UserID, models.ErrNotFound)
	}
	if roleID := settings.InactiveRoleID; roleID != "" {
		if _, ok := e.dir.Role(ctx, request.GuildID, roleID); !ok {
			log.Warn("Inactive role not found.", zap.String("role", roleID))
		} else if !directory.HasRole(member, roleID) {
			if err := e.dir.AddRole(ctx, request.GuildID, request.UserID, roleID); err != nil {
				log.Warn("Failed to add inactive role.", zap.String("role", roleID), zap.Error(err))
			}
		}
	}

	now := e.now()
	length := time.Duration(request.Duration) * time.Millisecond
	grant := &models.InactiveGrant{
		UserID:     request.UserID,
		GuildID:    request.GuildID,
		StartedAt:  models.Millis(now),
		EndTime:    models.Millis(now.Add(length)),
		Reason:     request.Reason,
		ApprovedBy: approverID,
	}
	if err := e.store.UpsertInactiveGrant(grant); err != nil {
		if restoreErr := e.store.CreateInactiveRequest(request); restoreErr != nil {
			log.Error("Failed to restore leave request.", zap.String("request", key), zap.Error(restoreErr))
		}
		return nil, fmt.Errorf("save inactive grant: %w", err)
	}
	log.Info("Leave approved.", zap.String("approver", approverID), zap.Time("ends", grant.Ends()))

	e.notify.DirectMessage(ctx, request.UserID, fmt.Sprintf(
		"Your inactive request in **%v** has been approved by <@%v>.\n"+
			"**Duration:** %v\n**Expires:** %v\n"+
			"Your inactive role will be removed automatically when the time expires.",
		e.guildName(ctx, request.GuildID),
		approverID,
		duration.Format(length),
		humanize.RelTime(grant.Ends(), now, "ago", "from now"),
	))
	return grant, nil
}

// Deny rejects the request posted as key. It returns models.ErrNotFound if
// the request is unknown or already decided.
func (e *Engine) Deny(ctx context.Context, key, approverID, reason string) (*models.InactiveRequest, error) {
	request, err := e.claimRequest(key)
	if err != nil {
		return nil, err
	}
	e.log.Info("Leave denied.",
		zap.String("guild", request.GuildID),
		zap.String("user", request.UserID),
		zap.String("approver", approverID),
	)

	e.notify.DirectMessage(ctx, request.UserID, fmt.Sprintf(
		"Your inactive request in **%v** has been denied by <@%v>.\n**Reason:** %v",
		e.guildName(ctx, request.GuildID),
		approverID,
		reason,
	))
	return request, nil
}

// claimRequest deletes the pending request so only one decision wins.
func (e *Engine) claimRequest(key string) (*models.InactiveRequest, error) {
	request, err := e.store.InactiveRequest(key)
	if err != nil {
		return nil, fmt.Errorf("leave request %s: %w", key, err)
	}
	ok, err := e.store.DeleteInactiveRequest(key)
	if err != nil {
		return nil, fmt.Errorf("delete leave request %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("leave request %s: %w", key, models.ErrNotFound)
	}
	return request, nil
}

// Grant returns the member's current grant.
func (e *Engine) Grant(guildID, userID string) (*models.InactiveGrant, error) {
	return e.store.InactiveGrant(guildID, userID)
}

// Clear ends the member's grant early and removes the inactive role. It
// returns models.ErrNotFound if the member has no grant.
func (e *Engine) Clear(ctx context.Context, guildID, userID string) error {
	ok, err := e.store.DeleteInactiveGrant(guildID, userID)
	if err != nil {
		return fmt.Errorf("delete inactive grant: %w", err)
	}
	if !ok {
		return fmt.Errorf("inactive grant for %s: %w", userID, models.ErrNotFound)
	}

	if member, ok := e.dir.Member(ctx, guildID, userID); ok {
		e.removeInactiveRole(ctx, guildID, member)
	}
	e.log.Info("Cleared inactive grant.", zap.String("guild", guildID), zap.String("user", userID))
	return nil
}

// Sweep finalizes every grant that ended at or before now and returns how
// many it finalized. Concurrent calls share one pass.
func (e *Engine) Sweep(ctx context.Context, now time.Time) (int, error) {
	v, err, _ := e.sweeps.Do("sweep", func() (interface{}, error) {
		return e.sweep(ctx, now)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (e *Engine) sweep(ctx context.Context, now time.Time) (int, error) {
	at := models.Millis(now)
	grants, err := e.store.ExpiredInactiveGrants(at)
	if err != nil {
		return 0, fmt.Errorf("load expired grants: %w", err)
	}

	processed := 0
	for i := range grants {
		grant := &grants[i]

		claimed, err := e.store.ClaimInactiveGrant(grant.ID, at)
		if err != nil {
			e.log.Error("Failed to claim expired grant.",
				zap.Uint("grant", grant.ID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			continue
		}

		e.expire(ctx, grant)
		processed++
	}

	if processed > 0 {
		e.log.Info("Processed expired inactive grants.", zap.Int("count", processed))
	}
	return processed, nil
}

// expire removes the inactive role of a claimed grant and tells the
// member. A vanished guild or member needs nothing further.
func (e *Engine) expire(ctx context.Context, grant *models.InactiveGrant) {
	guild, ok := e.dir.Guild(ctx, grant.GuildID)
	if !ok {
		return
	}
	member, ok := e.dir.Member(ctx, grant.GuildID, grant.UserID)
	if !ok {
		return
	}

	e.removeInactiveRole(ctx, grant.GuildID, member)

	length := time.Duration(grant.EndTime-grant.StartedAt) * time.Millisecond
	e.notify.DirectMessage(ctx, grant.UserID, fmt.Sprintf(
		"Your inactive period in **%v** has ended and your inactive role has been removed.\n"+
			"**Duration:** %v\nWelcome back!",
		directory.GuildName(guild),
		duration.Format(length),
	))
}

func (e *Engine) removeInactiveRole(ctx context.Context, guildID string, member *discordgo.Member) {
	settings, err := e.store.GuildSettings(guildID)
	if err != nil {
		e.log.Error("Failed to load guild settings.", zap.String("guild", guildID), zap.Error(err))
		return
	}

	roleID := settings.InactiveRoleID
	if roleID == "" || !directory.HasRole(member, roleID) {
		return
	}
	if err := e.dir.RemoveRole(ctx, guildID, member.User.ID, roleID); err != nil {
		e.log.Warn("Failed to remove inactive role.",
			zap.String("guild", guildID),
			zap.String("user", member.User.ID),
			zap.Error(err),
		)
		return
	}
	e.log.Info("Removed inactive role.", zap.String("guild", guildID), zap.String("user", member.User.ID))
}

func (e *Engine) guildName(ctx context.Context, guildID string) string {
	if guild, ok := e.dir.Guild(ctx, guildID); ok {
		return directory.GuildName(guild)
	}
	return guildID
}
