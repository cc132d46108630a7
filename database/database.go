package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gembot/models"
)

// Connect opens the sqlite database and runs migrations. The returned
// handle is passed to whoever needs it; there is no package-level DB.
func Connect(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.PromoCode{},
		&models.PromoRedemption{},
		&models.Conversation{},
		&models.Admin{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}
