package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/chachabrian/carrental-backend/pkg/utils"
	"go.uber.org/zap"
)

var errNoRecipientAddress = errors.New("recipient has no e-mail address")

// EmailChannel renders booking events into HTML mail.
type EmailChannel struct {
	mailer utils.Mailer
	prefs  PreferenceStore
	log    *zap.Logger
}

// NewEmailChannel returns a channel that silently skips every event when
// mailer is nil.
func NewEmailChannel(mailer utils.Mailer, prefs PreferenceStore, log *zap.Logger) *EmailChannel {
	if log == nil {
		log = zap.NewNop()
	}
	if mailer == nil {
		log.Warn("Email credentials not configured. Email notifications will be disabled.")
	}
	return &EmailChannel{mailer: mailer, prefs: prefs, log: log}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Deliver(ctx context.Context, event BookingEvent) error {
	if c.mailer == nil {
		return nil
	}
	if event.Recipient.Email == "" {
		return errNoRecipientAddress
	}
	if c.prefs != nil && event.Recipient.ID != 0 {
		pref, err := c.prefs.Get(ctx, event.Recipient.ID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		if !pref.EmailEnabled {
			return nil
		}
	}

	subject, body, err := renderEmail(event)
	if err != nil {
		return err
	}
	return c.mailer.Send(ctx, []string{event.Recipient.Email}, subject, body)
}

func renderEmail(event BookingEvent) (string, string, error) {
	b := event.Booking
	data := utils.BookingEmailData{
		UserName:     b.RenterName,
		UserEmail:    b.RenterEmail,
		MobileNumber: b.ContactNumber,
		CarName:      b.CarName,
		PickupDate:   b.PickupDate,
		ReturnDate:   b.ReturnDate,
		Price:        b.Price,
		Location:     b.Location,
		Status:       b.Status,
	}

	switch event.Type {
	case EventBookingCreated:
		subject, body := utils.NewBookingOwnerEmail(data)
		return subject, body, nil
	case EventBookingReceived:
		subject, body := utils.BookingReceivedUserEmail(data)
		return subject, body, nil
	case EventBookingCancelled:
		subject, body := utils.BookingCancelledOwnerEmail(data)
		return subject, body, nil
	case EventBookingStatusChanged:
		subject, body := utils.BookingStatusUserEmail(data)
		return subject, body, nil
	}
	return "", "", fmt.Errorf("no e-mail template for event %q", event.Type)
}
