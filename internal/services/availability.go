package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"golang.org/x/sync/errgroup"
)

type AvailabilityChecker struct {
	bookings    BookingStore
	cars        CarStore
	concurrency int
}

func NewAvailabilityChecker(bookings BookingStore, cars CarStore, concurrency int) *AvailabilityChecker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AvailabilityChecker{bookings: bookings, cars: cars, concurrency: concurrency}
}

func validateRange(pickup, ret time.Time) error {
	if pickup.IsZero() || ret.IsZero() {
		return fmt.Errorf("%w: pickup and return dates are required", models.ErrValidation)
	}
	if pickup.After(ret) {
		return fmt.Errorf("%w: pickup date must not be after return date", models.ErrValidation)
	}
	return nil
}

// IsAvailable reports whether no active booking of carID intersects
// [pickup, ret]. A store failure is returned as an error, never as "free".
func (a *AvailabilityChecker) IsAvailable(ctx context.Context, carID uint, pickup, ret time.Time) (bool, error) {
	if err := validateRange(pickup, ret); err != nil {
		return false, err
	}

	n, err := a.bookings.CountOverlapping(ctx, carID, pickup, ret)
	if err != nil {
		return false, fmt.Errorf("availability check for car %d: %w", carID, err)
	}
	return n == 0, nil
}

// AvailableCars lists the cars at location that are flagged available and
// free for the whole interval, in store order.
func (a *AvailabilityChecker) AvailableCars(ctx context.Context, location string, pickup, ret time.Time) ([]models.Car, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", models.ErrValidation)
	}
	if err := validateRange(pickup, ret); err != nil {
		return nil, err
	}

	cars, err := a.cars.ListAvailableAt(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("list cars at %q: %w", location, err)
	}

	free := make([]bool, len(cars))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range cars {
		i := i
		g.Go(func() error {
			ok, err := a.IsAvailable(gctx, cars[i].ID, pickup, ret)
			if err != nil {
				return err
			}
			free[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	available := make([]models.Car, 0, len(cars))
	for i, car := range cars {
		if free[i] {
			available = append(available, car)
		}
	}
	return available, nil
}
