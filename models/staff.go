package models

import "gorm.io/gorm"

// StaffAction is a staff lifecycle event.
type StaffAction string

// Staff lifecycle events.
const (
	ActionPromote StaffAction = "promote"
	ActionDemote  StaffAction = "demote"
	ActionFire    StaffAction = "fire"
	ActionResign  StaffAction = "resign"
)

// StaffRecord is an append-only audit entry for a staff lifecycle event.
type StaffRecord struct {
	gorm.Model
	GuildID    string
	UserID     string `gorm:"index"`
	Action     StaffAction
	RoleIDs    []string `gorm:"serializer:json"`
	Reason     string
	ExecutorID string
	Timestamp  int64 // unix milliseconds
}
