package database

import (
	"github.com/chachabrian/carrental-backend/internal/models"
	"gorm.io/gorm"
)

// Constraints AutoMigrate cannot express. Each is idempotent.
var constraintStatements = []string{
	`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`,
	`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'owner'))`,

	`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`,
	`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled'))`,

	`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_dates_check`,
	`ALTER TABLE bookings ADD CONSTRAINT bookings_dates_check CHECK (pickup_date <= return_date)`,

	// Serves the overlap count, which only looks at active bookings.
	`CREATE INDEX IF NOT EXISTS idx_bookings_active_car_dates
		ON bookings (car_id, pickup_date, return_date)
		WHERE status <> 'cancelled' AND deleted_at IS NULL`,
}

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Car{},
		&models.Booking{},
		&models.NotificationPreference{},
	)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range constraintStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
