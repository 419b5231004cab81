package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rideboard/internal/models"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ContactEntry{},
		&models.Vehicle{},
		&models.Offering{},
		&models.OfferingMember{},
		&models.Request{},
		&models.Favorite{},
	)
	if err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// One membership row per user per offering, one bookmark per item.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_offering_member_user
		ON offering_members (offering_id, user_id)
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_favorite_item
		ON favorites (user_id, item_type, item_id)
	`)

	return db
}
