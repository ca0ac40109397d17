package models

import "time"

// Strike is a time-boxed disciplinary record. Its end time is fixed at
// creation.
type Strike struct {
	ID       string `gorm:"primaryKey"`
	GuildID  string `gorm:"index:idx_strike_member"`
	UserID   string `gorm:"index:idx_strike_member"`
	Reason   string
	AddedAt  int64 // unix milliseconds
	Duration int64 // milliseconds
	EndTime  int64 // unix milliseconds
	AddedBy  string
}

// Active reports whether the strike still counts at now.
func (s *Strike) Active(now time.Time) bool {
	return s.EndTime > Millis(now)
}

// Ends returns the strike's end time.
func (s *Strike) Ends() time.Time {
	return time.UnixMilli(s.EndTime)
}
