package models

import "time"

// InactiveRequest is a leave request awaiting a manager's decision. It is
// keyed by the ID of the message the request was posted as.
type InactiveRequest struct {
	MessageID   string `gorm:"primaryKey"`
	GuildID     string
	UserID      string
	Reason      string
	Duration    int64 // milliseconds
	RequestedAt int64 // unix milliseconds
}

// InactiveGrant is an approved, time-boxed inactive period.
type InactiveGrant struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     string `gorm:"uniqueIndex:idx_inactive_member"`
	GuildID    string `gorm:"uniqueIndex:idx_inactive_member"`
	StartedAt  int64  // unix milliseconds
	EndTime    int64  // unix milliseconds
	Reason     string
	ApprovedBy string
}

// Expired reports whether the grant has ended at now.
func (g *InactiveGrant) Expired(now time.Time) bool {
	return g.EndTime <= Millis(now)
}

// Ends returns the grant's end time.
func (g *InactiveGrant) Ends() time.Time {
	return time.UnixMilli(g.EndTime)
}

// Millis converts t to unix milliseconds, the resolution used for every
// stored timestamp.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
