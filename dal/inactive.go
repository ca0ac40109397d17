package dal

import (
	"github.com/ASHU16DEV/StaffManager/models"
	"gorm.io/gorm/clause"
)

// CreateInactiveRequest inserts a pending leave request.
func (s *Store) CreateInactiveRequest(request *models.InactiveRequest) error {
	return s.db.Create(request).Error
}

// InactiveRequest returns the pending request posted as messageID.
func (s *Store) InactiveRequest(messageID string) (*models.InactiveRequest, error) {
	var request models.InactiveRequest
	err := s.db.Where(&models.InactiveRequest{MessageID: messageID}).Take(&request).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &request, nil
}

// DeleteInactiveRequest deletes the pending request posted as messageID,
// reporting whether it existed.
func (s *Store) DeleteInactiveRequest(messageID string) (bool, error) {
	result := s.db.Where("message_id = ?", messageID).Delete(&models.InactiveRequest{})
	return result.RowsAffected > 0, result.Error
}

// UpsertInactiveGrant inserts the grant or replaces the member's existing
// one.
func (s *Store) UpsertInactiveGrant(grant *models.InactiveGrant) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"started_at",
			"end_time",
			"reason",
			"approved_by",
		}),
	}).Create(grant).Error
}

// InactiveGrant returns the member's grant.
func (s *Store) InactiveGrant(guildID, userID string) (*models.InactiveGrant, error) {
	var grant models.InactiveGrant
	err := s.db.Where(&models.InactiveGrant{GuildID: guildID, UserID: userID}).Take(&grant).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &grant, nil
}

// ExpiredInactiveGrants returns the grants that ended at or before now
// (unix milliseconds).
func (s *Store) ExpiredInactiveGrants(now int64) ([]models.InactiveGrant, error) {
	var grants []models.InactiveGrant
	err := s.db.Where("end_time <= ?", now).Order("end_time").Find(&grants).Error
	return grants, err
}

// ClaimInactiveGrant deletes the grant with the given ID if it has still
// ended at now, reporting whether this call removed it. A grant replaced by
// a newer approval in the meantime is left alone.
func (s *Store) ClaimInactiveGrant(id uint, now int64) (bool, error) {
	result := s.db.Where("id = ? AND end_time <= ?", id, now).Delete(&models.InactiveGrant{})
	return result.RowsAffected > 0, result.Error
}

// DeleteInactiveGrant deletes the member's grant, reporting whether it
// existed.
func (s *Store) DeleteInactiveGrant(guildID, userID string) (bool, error) {
	result := s.db.Where("guild_id = ? AND user_id = ?", guildID, userID).
		Delete(&models.InactiveGrant{})
	return result.RowsAffected > 0, result.Error
}
