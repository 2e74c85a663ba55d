package services

import (
	"context"
	"testing"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carAt(id uint, location string, available bool) models.Car {
	c := models.Car{Brand: "Brand", ModelName: "Model", OwnerID: ownerID, Location: location, PricePerDay: 100, IsAvailable: available}
	c.ID = id
	return c
}

func TestIsAvailable(t *testing.T) {
	bookings := newMemBookingStore()
	bookings.put(models.Booking{Model: gormModel(1), CarID: 1, PickupDate: date("2024-01-05"), ReturnDate: date("2024-01-10"), Status: models.BookingStatusConfirmed})
	bookings.put(models.Booking{Model: gormModel(2), CarID: 1, PickupDate: date("2024-02-01"), ReturnDate: date("2024-02-05"), Status: models.BookingStatusCancelled})
	checker := NewAvailabilityChecker(bookings, &memCarStore{}, 2)
	ctx := context.Background()

	ok, err := checker.IsAvailable(ctx, 1, date("2024-01-10"), date("2024-01-12"))
	require.NoError(t, err)
	assert.False(t, ok, "return day of an existing booking is taken")

	ok, err = checker.IsAvailable(ctx, 1, date("2024-01-11"), date("2024-01-12"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.IsAvailable(ctx, 1, date("2024-02-01"), date("2024-02-05"))
	require.NoError(t, err)
	assert.True(t, ok, "cancelled bookings do not block")

	ok, err = checker.IsAvailable(ctx, 2, date("2024-01-05"), date("2024-01-10"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = checker.IsAvailable(ctx, 1, date("2024-01-12"), date("2024-01-11"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestIsAvailableStorageFailure(t *testing.T) {
	bookings := newMemBookingStore()
	bookings.countErr = models.ErrStorageUnavailable
	checker := NewAvailabilityChecker(bookings, &memCarStore{}, 1)

	ok, err := checker.IsAvailable(context.Background(), 1, date("2024-01-01"), date("2024-01-02"))
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
	assert.False(t, ok)
}

func TestAvailableCars(t *testing.T) {
	bookings := newMemBookingStore()
	cars := &memCarStore{cars: []models.Car{
		carAt(1, "Mumbai", true),
		carAt(2, "Mumbai", true),
		carAt(3, "Mumbai", false),
		carAt(4, "Delhi", true),
		carAt(5, "Mumbai", true),
	}}
	bookings.put(models.Booking{Model: gormModel(1), CarID: 2, PickupDate: date("2024-01-01"), ReturnDate: date("2024-01-03"), Status: models.BookingStatusPending})
	checker := NewAvailabilityChecker(bookings, cars, 2)

	got, err := checker.AvailableCars(context.Background(), "Mumbai", date("2024-01-03"), date("2024-01-04"))
	require.NoError(t, err)

	ids := make([]uint, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []uint{1, 5}, ids)
}

func TestAvailableCarsEmptyLocation(t *testing.T) {
	checker := NewAvailabilityChecker(newMemBookingStore(), &memCarStore{}, 2)

	got, err := checker.AvailableCars(context.Background(), "Nowhere", date("2024-01-03"), date("2024-01-04"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = checker.AvailableCars(context.Background(), " ", date("2024-01-03"), date("2024-01-04"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAvailableCarsFailsWhenAnyCheckFails(t *testing.T) {
	bookings := newMemBookingStore()
	bookings.countErr = models.ErrStorageUnavailable
	cars := &memCarStore{cars: []models.Car{carAt(1, "Mumbai", true), carAt(2, "Mumbai", true)}}
	checker := NewAvailabilityChecker(bookings, cars, 2)

	_, err := checker.AvailableCars(context.Background(), "Mumbai", date("2024-01-03"), date("2024-01-04"))
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)

	cars.listErr = models.ErrStorageUnavailable
	bookings.countErr = nil
	_, err = checker.AvailableCars(context.Background(), "Mumbai", date("2024-01-03"), date("2024-01-04"))
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}
