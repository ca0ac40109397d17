package dal

import (
	"github.com/ASHU16DEV/StaffManager/models"
	"gorm.io/gorm/clause"
)

// GuildSettings returns the settings for the given guild. A guild without
// stored settings gets the defaults.
func (s *Store) GuildSettings(guildID string) (*models.GuildSettings, error) {
	var settings models.GuildSettings
	err := s.db.Where(&models.GuildSettings{GuildID: guildID}).Take(&settings).Error
	if err != nil {
		if err = notFound(err); err == models.ErrNotFound {
			return &models.GuildSettings{
				GuildID:     guildID,
				StrikeLimit: models.DefaultStrikeLimit,
			}, nil
		}
		return nil, err
	}
	return &settings, nil
}

// UpsertInactiveRole inserts or updates the guild's inactive role.
func (s *Store) UpsertInactiveRole(guildID, roleID string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"inactive_role_id", "updated_at"}),
	}).Create(&models.GuildSettings{
		GuildID:        guildID,
		InactiveRoleID: roleID,
		StrikeLimit:    models.DefaultStrikeLimit,
	}).Error
}

// UpsertStrikeLimit inserts or updates the guild's strike limit.
func (s *Store) UpsertStrikeLimit(guildID string, limit int) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"strike_limit", "updated_at"}),
	}).Create(&models.GuildSettings{
		GuildID:     guildID,
		StrikeLimit: limit,
	}).Error
}

// UpsertStrikeChannel inserts or updates the guild's strike log channel.
func (s *Store) UpsertStrikeChannel(guildID, channelID string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"strike_channel_id", "updated_at"}),
	}).Create(&models.GuildSettings{
		GuildID:         guildID,
		StrikeLimit:     models.DefaultStrikeLimit,
		StrikeChannelID: channelID,
	}).Error
}

// UpsertChannel inserts or updates the channel used for kind in the guild.
func (s *Store) UpsertChannel(guildID string, kind models.ChannelKind, channelID string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"channel_id"}),
	}).Create(&models.GuildChannel{
		GuildID:   guildID,
		Kind:      kind,
		ChannelID: channelID,
	}).Error
}

// Channel returns the channel used for kind in the guild, or "" if none
// is set.
func (s *Store) Channel(guildID string, kind models.ChannelKind) (string, error) {
	var channel models.GuildChannel
	err := s.db.Where(&models.GuildChannel{GuildID: guildID, Kind: kind}).Take(&channel).Error
	if err != nil {
		if err = notFound(err); err == models.ErrNotFound {
			return "", nil
		}
		return "", err
	}
	return channel.ChannelID, nil
}

// AddStaffRole marks roleID as a staff role, reporting whether it was new.
func (s *Store) AddStaffRole(guildID, roleID string) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.StaffRole{
		GuildID: guildID,
		RoleID:  roleID,
	})
	return result.RowsAffected > 0, result.Error
}

// RemoveStaffRole unmarks roleID, reporting whether it was a staff role.
func (s *Store) RemoveStaffRole(guildID, roleID string) (bool, error) {
	result := s.db.Where(&models.StaffRole{GuildID: guildID, RoleID: roleID}).
		Delete(&models.StaffRole{})
	return result.RowsAffected > 0, result.Error
}

// StaffRoles returns the IDs of the guild's staff roles.
func (s *Store) StaffRoles(guildID string) ([]string, error) {
	var roleIDs []string
	err := s.db.Model(&models.StaffRole{}).
		Where(&models.StaffRole{GuildID: guildID}).
		Order("id").
		Pluck("role_id", &roleIDs).Error
	return roleIDs, err
}

// AddManagerRole marks roleID as a manager role, reporting whether it was new.
func (s *Store) AddManagerRole(guildID, roleID string) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ManagerRole{
		GuildID: guildID,
		RoleID:  roleID,
	})
	return result.RowsAffected > 0, result.Error
}

// RemoveManagerRole unmarks roleID, reporting whether it was a manager role.
func (s *Store) RemoveManagerRole(guildID, roleID string) (bool, error) {
	result := s.db.Where(&models.ManagerRole{GuildID: guildID, RoleID: roleID}).
		Delete(&models.ManagerRole{})
	return result.RowsAffected > 0, result.Error
}

func (s *Store) ManagerRoles(guildID string) ([]string, error) {
	var roleIDs []string
	err := s.db.Model(&models.ManagerRole{}).
		Where(&models.ManagerRole{GuildID: guildID}).
		Order("id").
		Pluck("role_id", &roleIDs).Error
	return roleIDs, err
}
