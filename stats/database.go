// File: /stats/database.go
package stats

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitializeDatabase opens the stats database connection.
func InitializeDatabase(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the hits table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&EndpointHit{})
}
