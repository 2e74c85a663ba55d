package database

import (
	"context"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"gorm.io/gorm"
)

type BookingRepository struct {
	base
}

func NewBookingRepository(db *gorm.DB, timeout time.Duration) *BookingRepository {
	return &BookingRepository{base{db: db, timeout: timeout}}
}

func activeStatusValues() []string {
	values := make([]string, len(models.ActiveStatuses))
	for i, s := range models.ActiveStatuses {
		values[i] = string(s)
	}
	return values
}

// overlapping selects active bookings of carID intersecting [pickup, ret],
// both bounds inclusive.
func overlapping(carID uint, pickup, ret time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"car_id = ? AND status IN ? AND pickup_date <= ? AND return_date >= ?",
			carID, activeStatusValues(), ret, pickup,
		)
	}
}

func (r *BookingRepository) CountOverlapping(ctx context.Context, carID uint, pickup, ret time.Time) (int64, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var n int64
	err := db.Model(&models.Booking{}).Scopes(overlapping(carID, pickup, ret)).Count(&n).Error
	return n, storeError("count overlapping bookings", err)
}

// CreateIfAvailable holds a transaction-scoped advisory lock on the car while
// it re-checks the interval and inserts, so concurrent writers on any replica
// cannot both pass the check.
func (r *BookingRepository) CreateIfAvailable(ctx context.Context, booking *models.Booking) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(booking.CarID)).Error; err != nil {
			return err
		}

		var n int64
		err := tx.Model(&models.Booking{}).
			Scopes(overlapping(booking.CarID, booking.PickupDate, booking.ReturnDate)).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			return models.ErrCarUnavailable
		}

		return tx.Omit("Car", "User").Create(booking).Error
	})
	return storeError("create booking", err)
}

func (r *BookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var booking models.Booking
	if err := db.Preload("Car").First(&booking, id).Error; err != nil {
		return nil, storeError("find booking", err)
	}
	return &booking, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uint, from, to models.BookingStatus) error {
	db, cancel := r.conn(ctx)
	defer cancel()

	res := db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return storeError("update booking status", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var bookings []models.Booking
	err := db.Preload("Car").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, storeError("list user bookings", err)
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error) {
	db, cancel := r.conn(ctx)
	defer cancel()

	var bookings []models.Booking
	err := db.Preload("Car").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Omit("password_hash", "fcm_token")
		}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, storeError("list owner bookings", err)
}
