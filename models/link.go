package models

import "time"

// ServerLink pairs the main community with its staff-only counterpart.
// At most one link exists; role sync and strike enforcement are inert
// without it.
type ServerLink struct {
	ID               uint `gorm:"primaryKey"`
	PrimaryGuildID   string
	SecondaryGuildID string
	CreatedAt        time.Time
}

// Counterpart returns the linked guild opposite guildID, or false if
// guildID is not part of the link.
func (link *ServerLink) Counterpart(guildID string) (string, bool) {
	switch guildID {
	case link.PrimaryGuildID:
		return link.SecondaryGuildID, true
	case link.SecondaryGuildID:
		return link.PrimaryGuildID, true
	}
	return "", false
}

// RoleMapping declares a main-server role equivalent to a staff-server role.
// Each role ID appears on each side of at most one mapping.
type RoleMapping struct {
	ID              uint   `gorm:"primaryKey"`
	PrimaryRoleID   string `gorm:"uniqueIndex"`
	SecondaryRoleID string `gorm:"uniqueIndex"`
	CreatedAt       time.Time
}
