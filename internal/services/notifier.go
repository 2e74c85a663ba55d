package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"go.uber.org/zap"
)

type EventType string

const (
	EventBookingCreated       EventType = "booking_created"
	EventBookingReceived      EventType = "booking_received"
	EventBookingCancelled     EventType = "booking_cancelled"
	EventBookingStatusChanged EventType = "booking_status_changed"
)

const summaryDateLayout = "02 Jan 2006"

// BookingSummary is the denormalized view of a booking used by every
// notification channel.
type BookingSummary struct {
	BookingID     uint    `json:"bookingId"`
	CarID         uint    `json:"carId"`
	OwnerID       uint    `json:"ownerId"`
	UserID        uint    `json:"userId"`
	RenterName    string  `json:"renterName"`
	RenterEmail   string  `json:"renterEmail"`
	OwnerEmail    string  `json:"-"`
	ContactNumber string  `json:"mobileNumber"`
	CarName       string  `json:"carName"`
	Location      string  `json:"location"`
	PickupDate    string  `json:"pickupDate"`
	ReturnDate    string  `json:"returnDate"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
}

// Recipient is the user a BookingEvent is addressed to.
type Recipient struct {
	ID       uint   `json:"id"`
	Email    string `json:"-"`
	FCMToken string `json:"-"`
}

type BookingEvent struct {
	Type      EventType      `json:"type"`
	Recipient Recipient      `json:"recipient"`
	Booking   BookingSummary `json:"booking"`
	Timestamp time.Time      `json:"timestamp"`
}

// Channel delivers one event over one medium.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, event BookingEvent) error
}

// Dispatcher is a fire-and-forget BookingNotifier. Deliveries run detached
// from the caller's context and their failures are only logged.
type Dispatcher struct {
	users      UserStore
	cars       CarStore
	channels   []Channel
	timeout    time.Duration
	ownerEmail string
	log        *zap.Logger
	wg         sync.WaitGroup
}

// NewDispatcher builds a dispatcher. ownerEmail is used when a car owner has
// no address of their own.
func NewDispatcher(users UserStore, cars CarStore, timeout time.Duration, ownerEmail string, log *zap.Logger, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		users:      users,
		cars:       cars,
		channels:   channels,
		timeout:    timeout,
		ownerEmail: ownerEmail,
		log:        log,
	}
}

func (d *Dispatcher) NotifyOwnerNewBooking(ctx context.Context, booking models.Booking) {
	d.dispatch(ctx, EventBookingCreated, true, booking)
}

func (d *Dispatcher) NotifyUserBookingReceived(ctx context.Context, booking models.Booking) {
	d.dispatch(ctx, EventBookingReceived, false, booking)
}

func (d *Dispatcher) NotifyOwnerBookingCancelled(ctx context.Context, booking models.Booking) {
	d.dispatch(ctx, EventBookingCancelled, true, booking)
}

func (d *Dispatcher) NotifyUserStatusChanged(ctx context.Context, booking models.Booking) {
	d.dispatch(ctx, EventBookingStatusChanged, false, booking)
}

// Wait blocks until every in-flight delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(parent context.Context, typ EventType, toOwner bool, booking models.Booking) {
	ctx := context.WithoutCancel(parent)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.recoverPanic(string(typ), booking.ID)

		event, err := d.buildEvent(ctx, typ, toOwner, booking)
		if err != nil {
			d.log.Error("Failed to prepare booking notification",
				zap.String("event", string(typ)),
				zap.Uint("bookingId", booking.ID),
				zap.Error(err),
			)
			return
		}

		for _, ch := range d.channels {
			d.wg.Add(1)
			go d.deliver(ctx, ch, event)
		}
	}()
}

func (d *Dispatcher) deliver(parent context.Context, ch Channel, event BookingEvent) {
	defer d.wg.Done()
	defer d.recoverPanic(ch.Name(), event.Booking.BookingID)

	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	if err := ch.Deliver(ctx, event); err != nil {
		d.log.Error("Booking notification failed",
			zap.String("channel", ch.Name()),
			zap.String("event", string(event.Type)),
			zap.Uint("bookingId", event.Booking.BookingID),
			zap.Uint("recipientId", event.Recipient.ID),
			zap.Error(err),
		)
		return
	}
	d.log.Debug("Booking notification sent",
		zap.String("channel", ch.Name()),
		zap.String("event", string(event.Type)),
		zap.Uint("bookingId", event.Booking.BookingID),
	)
}

func (d *Dispatcher) recoverPanic(where string, bookingID uint) {
	if r := recover(); r != nil {
		d.log.Error("Recovered panic in booking notification",
			zap.String("where", where),
			zap.Uint("bookingId", bookingID),
			zap.Any("panic", r),
		)
	}
}

func (d *Dispatcher) buildEvent(parent context.Context, typ EventType, toOwner bool, booking models.Booking) (BookingEvent, error) {
	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	car := booking.Car
	if car == nil {
		c, err := d.cars.FindByID(ctx, booking.CarID)
		if err != nil {
			return BookingEvent{}, fmt.Errorf("load car: %w", err)
		}
		car = c
	}

	renter := booking.User
	if renter == nil {
		u, err := d.users.FindByID(ctx, booking.UserID)
		if err != nil {
			return BookingEvent{}, fmt.Errorf("load renter: %w", err)
		}
		renter = u
	}

	// A missing owner record still lets the fallback address through.
	var owner models.User
	if u, err := d.users.FindByID(ctx, booking.OwnerID); err == nil {
		owner = *u
	}
	ownerEmail := owner.Email
	if ownerEmail == "" {
		ownerEmail = d.ownerEmail
	}

	summary := BookingSummary{
		BookingID:     booking.ID,
		CarID:         booking.CarID,
		OwnerID:       booking.OwnerID,
		UserID:        booking.UserID,
		RenterName:    renter.Name,
		RenterEmail:   renter.Email,
		OwnerEmail:    ownerEmail,
		ContactNumber: booking.ContactNumber,
		CarName:       car.DisplayName(),
		Location:      car.Location,
		PickupDate:    booking.PickupDate.Format(summaryDateLayout),
		ReturnDate:    booking.ReturnDate.Format(summaryDateLayout),
		Price:         booking.Price,
		Status:        string(booking.Status),
	}

	recipient := Recipient{ID: renter.ID, Email: renter.Email, FCMToken: renter.FCMToken}
	if toOwner {
		recipient = Recipient{ID: booking.OwnerID, Email: ownerEmail, FCMToken: owner.FCMToken}
	}

	return BookingEvent{
		Type:      typ,
		Recipient: recipient,
		Booking:   summary,
		Timestamp: time.Now(),
	}, nil
}
