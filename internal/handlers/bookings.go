package handlers

import (
	"context"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/chachabrian/carrental-backend/internal/services"
	"github.com/chachabrian/carrental-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	AvailableCars(ctx context.Context, location string, pickup, ret time.Time) ([]models.Car, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, who services.Identity, in services.CreateBookingInput) (*models.Booking, error)
	SetStatus(ctx context.Context, who services.Identity, bookingID uint, status string) (*models.Booking, error)
	CancelBooking(ctx context.Context, who services.Identity, bookingID uint) (*models.Booking, error)
	ListUserBookings(ctx context.Context, who services.Identity) ([]models.Booking, error)
	ListOwnerBookings(ctx context.Context, who services.Identity) ([]models.Booking, error)
}

// CheckAvailability lists cars at a location that are free for the dates.
func CheckAvailability(checker AvailabilityService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Location   string `json:"location"`
			PickupDate string `json:"pickupDate"`
			ReturnDate string `json:"returnDate"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		pickup, ret, err := parseRange(input.PickupDate, input.ReturnDate)
		if err != nil {
			respondError(c, log, err, "")
			return
		}

		cars, err := checker.AvailableCars(c.Request.Context(), input.Location, pickup, ret)
		if err != nil {
			respondError(c, log, err, "")
			return
		}

		utils.RespondSuccess(c, "", gin.H{"availableCars": cars})
	}
}

// CreateBooking handles the creation of a new booking
func CreateBooking(bookings BookingService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		var input struct {
			Car          ID     `json:"car"`
			PickupDate   string `json:"pickupDate"`
			ReturnDate   string `json:"returnDate"`
			MobileNumber string `json:"mobileNumber"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		pickup, ret, err := parseRange(input.PickupDate, input.ReturnDate)
		if err != nil {
			respondError(c, log, err, "")
			return
		}

		_, err = bookings.CreateBooking(c.Request.Context(), who, services.CreateBookingInput{
			CarID:         uint(input.Car),
			PickupDate:    pickup,
			ReturnDate:    ret,
			ContactNumber: input.MobileNumber,
		})
		if err != nil {
			respondError(c, log, err, "Car not found")
			return
		}

		utils.RespondSuccess(c, "Booking Created", nil)
	}
}

// GetUserBookings lists the caller's bookings, newest first.
func GetUserBookings(bookings BookingService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		list, err := bookings.ListUserBookings(c.Request.Context(), who)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		utils.RespondSuccess(c, "", gin.H{"bookings": nonNil(list)})
	}
}

// GetOwnerBookings lists bookings on the caller's cars, newest first.
func GetOwnerBookings(bookings BookingService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		list, err := bookings.ListOwnerBookings(c.Request.Context(), who)
		if err != nil {
			respondError(c, log, err, "")
			return
		}
		utils.RespondSuccess(c, "", gin.H{"bookings": nonNil(list)})
	}
}

// ChangeBookingStatus lets the owner confirm or cancel a booking.
func ChangeBookingStatus(bookings BookingService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		var input struct {
			BookingID ID     `json:"bookingId"`
			Status    string `json:"status"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		if _, err := bookings.SetStatus(c.Request.Context(), who, uint(input.BookingID), input.Status); err != nil {
			respondError(c, log, err, "Booking not found")
			return
		}
		utils.RespondSuccess(c, "Status Updated", nil)
	}
}

// CancelBooking lets the renter cancel their booking.
func CancelBooking(bookings BookingService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		who, ok := identity(c)
		if !ok {
			return
		}

		var input struct {
			BookingID ID `json:"bookingId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, log, bindError(err), "")
			return
		}

		if _, err := bookings.CancelBooking(c.Request.Context(), who, uint(input.BookingID)); err != nil {
			respondError(c, log, err, "Booking not found")
			return
		}
		utils.RespondSuccess(c, "Booking cancelled successfully", nil)
	}
}

func nonNil(list []models.Booking) []models.Booking {
	if list == nil {
		return []models.Booking{}
	}
	return list
}
