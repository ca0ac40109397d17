// Package dal persists the staff manager's entities with gorm on sqlite.
package dal

import (
	"errors"
	"fmt"
	"time"

	"github.com/ASHU16DEV/StaffManager/models"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the durable store shared by every engine. Each write is
// committed before the call returns.
type Store struct {
	db *gorm.DB
}

// New wraps an open database connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InitDB creates a database connection and migrates every model.
func InitDB(dbPath string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(
		sqlite.Open(dbPath),
		&gorm.Config{
			Logger: logger.New(
				zap.NewStdLog(log.Named("gorm")),
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  logger.Warn,
					IgnoreRecordNotFoundError: true,
				},
			),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", dbPath, err)
	}

	// sqlite allows one writer; a single connection also keeps
	// in-memory databases alive for the life of the pool.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	log.Info("Connected to database.", zap.String("path", dbPath))

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("Migrated database.")

	return db, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Reset permanently deletes every stored entity, audit records included.
func (s *Store) Reset() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range models.All() {
			err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
				Unscoped().
				Delete(model).Error
			if err != nil {
				return fmt.Errorf("reset %T: %w", model, err)
			}
		}
		return nil
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
