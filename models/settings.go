package models

import "gorm.io/gorm"

// DefaultStrikeLimit applies to guilds that never set a strike limit.
const DefaultStrikeLimit = 3

// GuildSettings holds per-guild configuration.
type GuildSettings struct {
	gorm.Model
	GuildID         string `gorm:"uniqueIndex"`
	InactiveRoleID  string
	StrikeLimit     int
	StrikeChannelID string
}

// StrikePolicy is the strike threshold for a guild and where strike
// activity is logged.
type StrikePolicy struct {
	Limit     int
	ChannelID string
}

// Policy returns the guild's strike policy with defaults applied.
func (s *GuildSettings) Policy() StrikePolicy {
	limit := s.StrikeLimit
	if limit < 1 {
		limit = DefaultStrikeLimit
	}
	return StrikePolicy{Limit: limit, ChannelID: s.StrikeChannelID}
}

// ChannelKind names a per-guild log channel.
type ChannelKind string

// Log channel kinds.
const (
	ChannelInactiveRequest ChannelKind = "inactiveRequest"
	ChannelPromote         ChannelKind = "promote"
	ChannelDemote          ChannelKind = "demote"
	ChannelResign          ChannelKind = "resign"
	ChannelFire            ChannelKind = "fire"
	ChannelRoleSyncLog     ChannelKind = "roleSyncLog"
	ChannelErrorLog        ChannelKind = "errorLog"
)

// ChannelKinds lists every valid channel kind.
var ChannelKinds = []ChannelKind{
	ChannelInactiveRequest,
	ChannelPromote,
	ChannelDemote,
	ChannelResign,
	ChannelFire,
	ChannelRoleSyncLog,
	ChannelErrorLog,
}

// Valid reports whether k is a known channel kind.
func (k ChannelKind) Valid() bool {
	for _, kind := range ChannelKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// GuildChannel assigns a channel to a log kind in a guild.
type GuildChannel struct {
	ID        uint        `gorm:"primaryKey"`
	GuildID   string      `gorm:"uniqueIndex:idx_guild_channel_kind"`
	Kind      ChannelKind `gorm:"uniqueIndex:idx_guild_channel_kind"`
	ChannelID string
}

// ManagerRole lets members holding the role use manager commands.
type ManagerRole struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"uniqueIndex:idx_manager_role"`
	RoleID  string `gorm:"uniqueIndex:idx_manager_role"`
}

// StaffRole marks a role as a staff role in a guild.
type StaffRole struct {
	ID      uint   `gorm:"primaryKey"`
	GuildID string `gorm:"uniqueIndex:idx_staff_role"`
	RoleID  string `gorm:"uniqueIndex:idx_staff_role"`
}
