package services

import (
	"context"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
)

// Identity is the authenticated caller of an operation.
type Identity struct {
	ID   uint
	Role models.Role
}

// BookingStore persists bookings. Implementations report store failures
// wrapped with models.ErrStorageUnavailable.
type BookingStore interface {
	// CountOverlapping counts non-cancelled bookings of carID intersecting
	// [pickup, ret] with both bounds inclusive.
	CountOverlapping(ctx context.Context, carID uint, pickup, ret time.Time) (int64, error)
	// CreateIfAvailable re-checks the overlap and inserts atomically,
	// returning models.ErrCarUnavailable on conflict.
	CreateIfAvailable(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	// UpdateStatus moves a booking from one status to another and returns
	// models.ErrStatusConflict when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uint, from, to models.BookingStatus) error
	ListByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Booking, error)
}

type CarStore interface {
	FindByID(ctx context.Context, id uint) (*models.Car, error)
	// ListAvailableAt returns the cars at location flagged available.
	ListAvailableAt(ctx context.Context, location string) ([]models.Car, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id uint, token string) error
}

type PreferenceStore interface {
	// Get returns the stored preferences or the defaults when none exist.
	Get(ctx context.Context, userID uint) (*models.NotificationPreference, error)
	Save(ctx context.Context, pref *models.NotificationPreference) error
}

// BookingNotifier fans booking events out to the notification channels.
// Methods return immediately and never report delivery failures.
type BookingNotifier interface {
	NotifyOwnerNewBooking(ctx context.Context, booking models.Booking)
	NotifyUserBookingReceived(ctx context.Context, booking models.Booking)
	NotifyOwnerBookingCancelled(ctx context.Context, booking models.Booking)
	NotifyUserStatusChanged(ctx context.Context, booking models.Booking)
}
