package database

import (
	"github.com/stayhub/stayhub-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Booking{},
		&models.Review{},
		&models.WishlistItem{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}

	// Enforce the closed role and status sets at the database level too.
	// Postgres-specific; skipped silently on other dialects.
	if db.Dialector.Name() == "postgres" {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('guest', 'host', 'admin'))`)

		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
		db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed'))`)
	}

	return nil
}
