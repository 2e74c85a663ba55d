package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"go.uber.org/zap"
)

type CreateBookingInput struct {
	CarID         uint
	PickupDate    time.Time
	ReturnDate    time.Time
	ContactNumber string
}

// BookingManager owns the booking lifecycle: admission, status changes,
// cancellation and listings.
type BookingManager struct {
	bookings BookingStore
	cars     CarStore
	checker  *AvailabilityChecker
	locker   CarLocker
	notifier BookingNotifier
	log      *zap.Logger
}

// NewBookingManager wires the manager. locker and notifier may be nil.
func NewBookingManager(bookings BookingStore, cars CarStore, checker *AvailabilityChecker, locker CarLocker, notifier BookingNotifier, log *zap.Logger) *BookingManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingManager{
		bookings: bookings,
		cars:     cars,
		checker:  checker,
		locker:   locker,
		notifier: notifier,
		log:      log,
	}
}

func requireIdentity(who Identity) error {
	if who.ID == 0 {
		return fmt.Errorf("%w: missing identity", models.ErrUnauthorized)
	}
	return nil
}

func (m *BookingManager) CreateBooking(ctx context.Context, who Identity, in CreateBookingInput) (*models.Booking, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	if in.ContactNumber == "" {
		return nil, fmt.Errorf("%w: Mobile number is required", models.ErrValidation)
	}
	if in.CarID == 0 {
		return nil, fmt.Errorf("%w: car is required", models.ErrValidation)
	}
	if err := validateRange(in.PickupDate, in.ReturnDate); err != nil {
		return nil, err
	}

	car, err := m.cars.FindByID(ctx, in.CarID)
	if err != nil {
		return nil, fmt.Errorf("load car %d: %w", in.CarID, err)
	}
	if !car.IsAvailable {
		return nil, models.ErrCarUnavailable
	}

	unlock := func() {}
	if m.locker != nil {
		unlock, err = m.locker.Lock(ctx, car.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
		}
	}
	defer unlock()

	free, err := m.checker.IsAvailable(ctx, car.ID, in.PickupDate, in.ReturnDate)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, models.ErrCarUnavailable
	}

	booking := &models.Booking{
		CarID:         car.ID,
		OwnerID:       car.OwnerID,
		UserID:        who.ID,
		PickupDate:    in.PickupDate,
		ReturnDate:    in.ReturnDate,
		Price:         utils.RentalPrice(car.PricePerDay, in.PickupDate, in.ReturnDate),
		ContactNumber: in.ContactNumber,
		Status:        models.BookingStatusPending,
	}
	if err := m.bookings.CreateIfAvailable(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	unlock()

	booking.Car = car
	m.log.Info("Booking created",
		zap.Uint("bookingId", booking.ID),
		zap.Uint("carId", car.ID),
		zap.Uint("userId", who.ID),
		zap.Float64("price", booking.Price),
	)

	if m.notifier != nil {
		m.notifier.NotifyOwnerNewBooking(ctx, *booking)
		m.notifier.NotifyUserBookingReceived(ctx, *booking)
	}
	return booking, nil
}

// SetStatus lets the car owner move a booking along the status graph.
func (m *BookingManager) SetStatus(ctx context.Context, who Identity, bookingID uint, status string) (*models.Booking, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}

	booking, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if booking.OwnerID != who.ID {
		return nil, models.ErrUnauthorized
	}

	target, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, models.ErrAlreadyCancelled
	}
	if !booking.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s to %s", models.ErrInvalidTransition, booking.Status, target)
	}

	if err := m.bookings.UpdateStatus(ctx, booking.ID, booking.Status, target); err != nil {
		return nil, fmt.Errorf("update booking %d: %w", booking.ID, err)
	}
	booking.Status = target

	m.log.Info("Booking status updated",
		zap.Uint("bookingId", booking.ID),
		zap.String("status", string(target)),
	)

	if m.notifier != nil {
		m.notifier.NotifyUserStatusChanged(ctx, *booking)
	}
	return booking, nil
}

// CancelBooking lets the renter cancel their own booking, which frees the
// interval for new bookings.
func (m *BookingManager) CancelBooking(ctx context.Context, who Identity, bookingID uint) (*models.Booking, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}

	booking, err := m.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if booking.UserID != who.ID {
		return nil, models.ErrUnauthorized
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil, models.ErrAlreadyCancelled
	}

	err = m.bookings.UpdateStatus(ctx, booking.ID, booking.Status, models.BookingStatusCancelled)
	if errors.Is(err, models.ErrStatusConflict) {
		// Lost a race; report what the winner left behind.
		current, ferr := m.bookings.FindByID(ctx, bookingID)
		if ferr == nil && current.Status == models.BookingStatusCancelled {
			return nil, models.ErrAlreadyCancelled
		}
	}
	if err != nil {
		return nil, fmt.Errorf("cancel booking %d: %w", booking.ID, err)
	}
	booking.Status = models.BookingStatusCancelled

	m.log.Info("Booking cancelled",
		zap.Uint("bookingId", booking.ID),
		zap.Uint("userId", who.ID),
	)

	if m.notifier != nil {
		m.notifier.NotifyOwnerBookingCancelled(ctx, *booking)
	}
	return booking, nil
}

// ListUserBookings returns the caller's bookings, newest first.
func (m *BookingManager) ListUserBookings(ctx context.Context, who Identity) ([]models.Booking, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	bookings, err := m.bookings.ListByUser(ctx, who.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %d: %w", who.ID, err)
	}
	return bookings, nil
}

// ListOwnerBookings returns bookings on the caller's cars, newest first.
// Only owners may call it.
func (m *BookingManager) ListOwnerBookings(ctx context.Context, who Identity) ([]models.Booking, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	if who.Role != models.RoleOwner {
		return nil, models.ErrUnauthorized
	}
	bookings, err := m.bookings.ListByOwner(ctx, who.ID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of owner %d: %w", who.ID, err)
	}
	return bookings, nil
}
