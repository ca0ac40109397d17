package dal

import (
	"github.com/ASHU16DEV/StaffManager/models"
	"gorm.io/gorm"
)

// CreateStrike inserts the given strike.
func (s *Store) CreateStrike(strike *models.Strike) error {
	return s.db.Create(strike).Error
}

// DeleteStrike deletes and returns the strike with the given ID in the
// guild.
func (s *Store) DeleteStrike(guildID, strikeID string) (*models.Strike, error) {
	var strike models.Strike
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("guild_id = ? AND id = ?", guildID, strikeID).Take(&strike).Error
		if err != nil {
			return notFound(err)
		}
		return tx.Delete(&strike).Error
	})
	if err != nil {
		return nil, err
	}
	return &strike, nil
}

// DeleteUserStrikes deletes every strike of the member and returns how
// many were deleted.
func (s *Store) DeleteUserStrikes(guildID, userID string) (int, error) {
	result := s.db.Where("guild_id = ? AND user_id = ?", guildID, userID).
		Delete(&models.Strike{})
	return int(result.RowsAffected), result.Error
}

// UserStrikes returns every strike of the member, oldest first.
func (s *Store) UserStrikes(guildID, userID string) ([]models.Strike, error) {
	var strikes []models.Strike
	err := s.db.Where("guild_id = ? AND user_id = ?", guildID, userID).
		Order("added_at, id").
		Find(&strikes).Error
	return strikes, err
}

// GuildStrikes returns every strike in the guild, oldest first.
func (s *Store) GuildStrikes(guildID string) ([]models.Strike, error) {
	var strikes []models.Strike
	err := s.db.Where("guild_id = ?", guildID).
		Order("added_at, id").
		Find(&strikes).Error
	return strikes, err
}

// DeleteExpiredStrikes deletes the guild's strikes that ended at or before
// now (unix milliseconds) and returns how many were deleted.
func (s *Store) DeleteExpiredStrikes(guildID string, now int64) (int, error) {
	result := s.db.Where("guild_id = ? AND end_time <= ?", guildID, now).
		Delete(&models.Strike{})
	return int(result.RowsAffected), result.Error
}

// StrikeGuildIDs returns the IDs of guilds holding at least one strike.
func (s *Store) StrikeGuildIDs() ([]string, error) {
	var guildIDs []string
	err := s.db.Model(&models.Strike{}).
		Distinct().
		Order("guild_id").
		Pluck("guild_id", &guildIDs).Error
	return guildIDs, err
}
