package services

import (
	"context"

	"github.com/chachabrian/carrental-backend/pkg/utils"
)

// SMSSender is satisfied by utils.SMSSender.
type SMSSender interface {
	Send(ctx context.Context, message string, recipients ...string) error
}

// SMSChannel texts the renter's contact number. Owner-directed events are
// left to e-mail and push.
type SMSChannel struct {
	sender SMSSender
}

func NewSMSChannel(sender SMSSender) *SMSChannel {
	return &SMSChannel{sender: sender}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Deliver(ctx context.Context, event BookingEvent) error {
	b := event.Booking
	if c.sender == nil || b.ContactNumber == "" {
		return nil
	}

	var msg string
	switch event.Type {
	case EventBookingReceived:
		msg = utils.BookingReceivedSMS(b.CarName, b.PickupDate, b.ReturnDate)
	case EventBookingStatusChanged:
		msg = utils.BookingStatusSMS(b.CarName, b.Status)
	default:
		return nil
	}
	return c.sender.Send(ctx, msg, b.ContactNumber)
}
