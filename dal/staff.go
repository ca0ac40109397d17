package dal

import "github.com/ASHU16DEV/StaffManager/models"

// CreateStaffRecord appends the given audit record.
func (s *Store) CreateStaffRecord(record *models.StaffRecord) error {
	return s.db.Create(record).Error
}

// StaffRecords returns the user's audit records, oldest first.
func (s *Store) StaffRecords(userID string) ([]models.StaffRecord, error) {
	var records []models.StaffRecord
	err := s.db.Where(&models.StaffRecord{UserID: userID}).Order("id").Find(&records).Error
	return records, err
}

// RecentStaffRecords returns up to limit audit records, newest first. An
// empty userID selects every user.
func (s *Store) RecentStaffRecords(userID string, limit int) ([]models.StaffRecord, error) {
	var records []models.StaffRecord
	err := s.db.Where(&models.StaffRecord{UserID: userID}).
		Order("timestamp desc, id desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}
