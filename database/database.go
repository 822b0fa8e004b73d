// File: /database/database.go
package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"afisha-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Event{},
		&models.ParticipationRequest{},
		&models.Compilation{},
	)

	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Composite indexes for the hot query paths. Errors are warnings only:
	// the index may already exist.

	// Confirmed-count lookups during request submission and review
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_requests_event_status ON participation_requests(event_id, status)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for participation_requests: %v\n", err)
	}

	// Duplicate-request checks
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_requests_requester_event ON participation_requests(requester_id, event_id)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for participation_requests requester: %v\n", err)
	}

	// Admin event search by initiator and state
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_initiator_state ON events(initiator_id, state)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for events: %v\n", err)
	}

	return nil
}
