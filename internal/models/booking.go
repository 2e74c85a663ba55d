package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ActiveStatuses hold their date interval; cancelled bookings do not.
var ActiveStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
	BookingStatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, s)
	}
	return status, nil
}

type Booking struct {
	gorm.Model
	CarID         uint          `json:"carId" gorm:"not null;index"`
	Car           *Car          `json:"car,omitempty" gorm:"foreignKey:CarID"`
	OwnerID       uint          `json:"owner" gorm:"not null;index"`
	UserID        uint          `json:"userId" gorm:"not null;index"`
	User          *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	PickupDate    time.Time     `json:"pickupDate" gorm:"not null"`
	ReturnDate    time.Time     `json:"returnDate" gorm:"not null"`
	Price         float64       `json:"price" gorm:"not null"`
	ContactNumber string        `json:"mobileNumber" gorm:"column:contact_number;not null"`
	Status        BookingStatus `json:"status" gorm:"not null;default:'pending'"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}

// Overlaps reports whether the booking's interval intersects [pickup, ret].
// Both bounds are inclusive: a booking ending on day D conflicts with one
// starting on day D.
func (b Booking) Overlaps(pickup, ret time.Time) bool {
	return !b.PickupDate.After(ret) && !b.ReturnDate.Before(pickup)
}

func (b Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}
