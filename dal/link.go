package dal

import (
	"github.com/ASHU16DEV/StaffManager/models"
	"gorm.io/gorm"
)

// ServerLink returns the server link, or models.ErrNotFound if the servers
// have not been linked.
func (s *Store) ServerLink() (*models.ServerLink, error) {
	var link models.ServerLink
	if err := s.db.Order("id").Take(&link).Error; err != nil {
		return nil, notFound(err)
	}
	return &link, nil
}

// SetServerLink replaces the server link.
func (s *Store) SetServerLink(primaryGuildID, secondaryGuildID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.ServerLink{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&models.ServerLink{
			PrimaryGuildID:   primaryGuildID,
			SecondaryGuildID: secondaryGuildID,
		}).Error
	})
}

// RoleMappings returns every role mapping in insertion order.
func (s *Store) RoleMappings() ([]models.RoleMapping, error) {
	var mappings []models.RoleMapping
	err := s.db.Order("id").Find(&mappings).Error
	return mappings, err
}

// CreateRoleMapping inserts the given role mapping.
func (s *Store) CreateRoleMapping(mapping *models.RoleMapping) error {
	return s.db.Create(mapping).Error
}

// DeleteRoleMapping deletes the exact primary/secondary pair, reporting
// whether it existed.
func (s *Store) DeleteRoleMapping(primaryRoleID, secondaryRoleID string) (bool, error) {
	result := s.db.Where(
		"primary_role_id = ? AND secondary_role_id = ?",
		primaryRoleID,
		secondaryRoleID,
	).Delete(&models.RoleMapping{})
	return result.RowsAffected > 0, result.Error
}
