// Package staff runs staff lifecycle actions and keeps the per-guild
// staff-role registry. Every action appends an audit record.
package staff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ASHU16DEV/StaffManager/directory"
	"github.com/ASHU16DEV/StaffManager/models"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// DefaultReason is recorded when an action is given no reason.
const DefaultReason = "No reason provided"

// History limits.
const (
	DefaultHistory = 10
	MaxHistory     = 25
)

// Store is the state the service reads and writes.
type Store interface {
	AddStaffRole(guildID, roleID string) (bool, error)
	RemoveStaffRole(guildID, roleID string) (bool, error)
	StaffRoles(guildID string) ([]string, error)
	Channel(guildID string, kind models.ChannelKind) (string, error)

	CreateStaffRecord(record *models.StaffRecord) error
	RecentStaffRecords(userID string, limit int) ([]models.StaffRecord, error)
}

// Service performs staff actions.
type Service struct {
	store  Store
	dir    directory.Directory
	notify directory.Notifier
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New returns a service. A nil logger discards logs.
func New(
	store Store,
	dir directory.Directory,
	notify directory.Notifier,
	log *zap.Logger,
	opts ...Option,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:  store,
		dir:    dir,
		notify: notify,
		log:    log.Named("staff"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Action identifies who is acted on, by whom and why. RoleID is only used
// by Promote and Demote.
type Action struct {
	GuildID    string
	UserID     string
	RoleID     string
	Reason     string
	ExecutorID string
}

// AddRole registers roleID as a staff role. It returns
// models.ErrAlreadyExists if it already is one.
func (s *Service) AddRole(guildID, roleID string) error {
	added, err := s.store.AddStaffRole(guildID, roleID)
	if err != nil {
		return fmt.Errorf("save staff role: %w", err)
	}
	if !added {
		return fmt.Errorf("staff role %s: %w", roleID, models.ErrAlreadyExists)
	}
	return nil
}

// RemoveRole unregisters roleID. It returns models.ErrNotFound if it was
// not a staff role.
func (s *Service) RemoveRole(guildID, roleID string) error {
	removed, err := s.store.RemoveStaffRole(guildID, roleID)
	if err != nil {
		return fmt.Errorf("delete staff role: %w", err)
	}
	if !removed {
		return fmt.Errorf("staff role %s: %w", roleID, models.ErrNotFound)
	}
	return nil
}

// Roles lists the guild's staff roles.
func (s *Service) Roles(guildID string) ([]string, error) {
	roles, err := s.store.StaffRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("load staff roles: %w", err)
	}
	return roles, nil
}

// Promote grants a.RoleID to the member.
func (s *Service) Promote(ctx context.Context, a Action) (*models.StaffRecord, error) {
	if _, ok := s.dir.Role(ctx, a.GuildID, a.RoleID); !ok {
		return nil, fmt.Errorf("role %s: %w", a.RoleID, models.ErrNotFound)
	}
	if _, ok := s.dir.Member(ctx, a.GuildID, a.UserID); !ok {
		return nil, fmt.Errorf("member %s: %w", a.UserID, models.ErrNotFound)
	}
	if err := s.dir.AddRole(ctx, a.GuildID, a.UserID, a.RoleID); err != nil {
		return nil, fmt.Errorf("grant role %s: %w", a.RoleID, err)
	}

	record, err := s.record(a, models.ActionPromote, []string{a.RoleID})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, record,
		fmt.Sprintf("<@%v> has been promoted to <@&%v> by <@%v>.", a.UserID, a.RoleID, record.ExecutorID),
		fmt.Sprintf("You have been promoted to **%v** in **%v**.", s.roleName(ctx, a.GuildID, a.RoleID), s.guildName(ctx, a.GuildID)),
	)
	return record, nil
}

// Demote revokes a.RoleID from the member. It returns models.ErrNotFound
// if the member does not hold the role.
func (s *Service) Demote(ctx context.Context, a Action) (*models.StaffRecord, error) {
	if _, ok := s.dir.Role(ctx, a.GuildID, a.RoleID); !ok {
		return nil, fmt.Errorf("role %s: %w", a.RoleID, models.ErrNotFound)
	}
	member, ok := s.dir.Member(ctx, a.GuildID, a.UserID)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", a.UserID, models.ErrNotFound)
	}
	if !directory.HasRole(member, a.RoleID) {
		return nil, fmt.Errorf("member %s does not hold %s: %w", a.UserID, a.RoleID, models.ErrNotFound)
	}
	if err := s.dir.RemoveRole(ctx, a.GuildID, a.UserID, a.RoleID); err != nil {
		return nil, fmt.Errorf("revoke role %s: %w", a.RoleID, err)
	}

	record, err := s.record(a, models.ActionDemote, []string{a.RoleID})
	if err != nil {
		return nil, err
	}
	s.announce(ctx, record,
		fmt.Sprintf("<@%v> has been demoted from <@&%v> by <@%v>.", a.UserID, a.RoleID, record.ExecutorID),
		fmt.Sprintf("You have been demoted from **%v** in **%v**.", s.roleName(ctx, a.GuildID, a.RoleID), s.guildName(ctx, a.GuildID)),
	)
	return record, nil
}

// Fire strips every staff role the member holds.
func (s *Service) Fire(ctx context.Context, a Action) (*models.StaffRecord, error) {
	removed, err := s.stripStaffRoles(ctx, a)
	if err != nil {
		return nil, err
	}

	record, err := s.record(a, models.ActionFire, removed)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, record,
		fmt.Sprintf("<@%v> has been fired from the staff team by <@%v>.", a.UserID, record.ExecutorID),
		fmt.Sprintf("You have been fired from the staff team in **%v**.", s.guildName(ctx, a.GuildID)),
	)
	return record, nil
}

// Resign strips every staff role the member holds at their own request.
func (s *Service) Resign(ctx context.Context, guildID, userID, reason string) (*models.StaffRecord, error) {
	a := Action{GuildID: guildID, UserID: userID, Reason: reason, ExecutorID: userID}
	removed, err := s.stripStaffRoles(ctx, a)
	if err != nil {
		return nil, err
	}

	record, err := s.record(a, models.ActionResign, removed)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, record,
		fmt.Sprintf("<@%v> has resigned from the staff team.", userID),
		fmt.Sprintf("Your resignation from the staff team in **%v** has been processed.", s.guildName(ctx, guildID)),
	)
	return record, nil
}

// RosterEntry is a staff role and the members holding it.
type RosterEntry struct {
	RoleID  string
	Members []*discordgo.Member
}

// Roster lists the holders of each staff role. Roles whose holders cannot
// be listed are left out.
func (s *Service) Roster(ctx context.Context, guildID string) ([]RosterEntry, error) {
	roles, err := s.Roles(guildID)
	if err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(roles))
	for _, roleID := range roles {
		members, err := s.dir.RoleHolders(ctx, guildID, roleID)
		if err != nil {
			s.log.Warn("Failed to list role holders.",
				zap.String("guild", guildID),
				zap.String("role", roleID),
				zap.Error(err),
			)
			continue
		}
		roster = append(roster, RosterEntry{RoleID: roleID, Members: members})
	}
	return roster, nil
}

// History returns up to limit audit records for userID, or for everyone
// when userID is empty, newest first.
func (s *Service) History(userID string, limit int) ([]models.StaffRecord, error) {
	if limit < 1 {
		limit = DefaultHistory
	}
	if limit > MaxHistory {
		limit = MaxHistory
	}
	records, err := s.store.RecentStaffRecords(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load staff records: %w", err)
	}
	return records, nil
}

// stripStaffRoles removes the member's staff roles, skipping any that fail.
// It returns models.ErrInvalidInput if the member holds none.
func (s *Service) stripStaffRoles(ctx context.Context, a Action) ([]string, error) {
	member, ok := s.dir.Member(ctx, a.GuildID, a.UserID)
	if !ok {
		return nil, fmt.Errorf("member %s: %w", a.UserID, models.ErrNotFound)
	}
	staffRoles, err := s.Roles(a.GuildID)
	if err != nil {
		return nil, err
	}

	var held []string
	for _, roleID := range staffRoles {
		if directory.HasRole(member, roleID) {
			held = append(held, roleID)
		}
	}
	if len(held) == 0 {
		return nil, fmt.Errorf("member %s is not staff: %w", a.UserID, models.ErrInvalidInput)
	}

	var removed []string
	for _, roleID := range held {
		if err := s.dir.RemoveRole(ctx, a.GuildID, a.UserID, roleID); err != nil {
			s.log.Warn("Failed to remove staff role.",
				zap.String("guild", a.GuildID),
				zap.String("user", a.UserID),
				zap.String("role", roleID),
				zap.Error(err),
			)
			continue
		}
		removed = append(removed, roleID)
	}
	return removed, nil
}

func (s *Service) record(a Action, action models.StaffAction, roleIDs []string) (*models.StaffRecord, error) {
	reason := strings.TrimSpace(a.Reason)
	if reason == "" {
		reason = DefaultReason
	}
	record := &models.StaffRecord{
		GuildID:    a.GuildID,
		UserID:     a.UserID,
		Action:     action,
		RoleIDs:    roleIDs,
		Reason:     reason,
		ExecutorID: a.ExecutorID,
		Timestamp:  models.Millis(s.now()),
	}
	if err := s.store.CreateStaffRecord(record); err != nil {
		return nil, fmt.Errorf("save staff record: %w", err)
	}

	s.log.Info("Recorded staff action.",
		zap.String("guild", a.GuildID),
		zap.String("user", a.UserID),
		zap.String("action", string(action)),
		zap.Strings("roles", roleIDs),
		zap.String("executor", a.ExecutorID),
	)
	return record, nil
}

// announce posts to the action's log channel and tells the member.
func (s *Service) announce(ctx context.Context, record *models.StaffRecord, logLine, dm string) {
	suffix := fmt.Sprintf("\n**Reason:** %v", record.Reason)

	channelID, err := s.store.Channel(record.GuildID, models.ChannelKind(record.Action))
	if err != nil {
		s.log.Error("Failed to load log channel.", zap.String("guild", record.GuildID), zap.Error(err))
	}
	if channelID != "" {
		s.notify.ChannelMessage(ctx, channelID, logLine+suffix)
	}
	s.notify.DirectMessage(ctx, record.UserID, dm+suffix)
}

func (s *Service) roleName(ctx context.Context, guildID, roleID string) string {
	if role, ok := s.dir.Role(ctx, guildID, roleID); ok {
		return role.Name
	}
	return roleID
}

func (s *Service) guildName(ctx context.Context, guildID string) string {
	if guild, ok := s.dir.Guild(ctx, guildID); ok {
		return directory.GuildName(guild)
	}
	return guildID
}
