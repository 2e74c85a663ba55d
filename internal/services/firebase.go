package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// messagingClient is the part of *messaging.Client the push channel uses.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel sends booking events through Firebase Cloud Messaging.
type PushChannel struct {
	client messagingClient
	prefs  PreferenceStore
	log    *zap.Logger
}

// InitFirebase initializes the Firebase Admin SDK. With no service account
// the returned channel is disabled.
func InitFirebase(ctx context.Context, serviceAccountPath string, prefs PreferenceStore, log *zap.Logger) (*PushChannel, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if serviceAccountPath == "" {
		log.Warn("FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
		return &PushChannel{prefs: prefs, log: log}, nil
	}

	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	log.Info("Firebase Cloud Messaging initialized successfully")
	return &PushChannel{client: client, prefs: prefs, log: log}, nil
}

func (p *PushChannel) Name() string { return "push" }

func (p *PushChannel) Deliver(ctx context.Context, event BookingEvent) error {
	if p.client == nil || event.Recipient.FCMToken == "" {
		return nil
	}
	if p.prefs != nil {
		pref, err := p.prefs.Get(ctx, event.Recipient.ID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		if !pref.PushEnabled {
			return nil
		}
	}

	title, body := pushText(event)
	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":           string(event.Type),
			"bookingId":      fmt.Sprintf("%d", event.Booking.BookingID),
			"carId":          fmt.Sprintf("%d", event.Booking.CarID),
			"status":         event.Booking.Status,
			"notificationId": fmt.Sprintf("%s_%d", event.Type, event.Booking.BookingID),
		},
		Token:   event.Recipient.FCMToken,
		Android: androidConfig(),
		APNS:    apnsConfig(),
	}

	response, err := p.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}

	p.log.Debug("Push notification sent",
		zap.Uint("recipientId", event.Recipient.ID),
		zap.String("response", response),
	)
	return nil
}

func pushText(event BookingEvent) (title, body string) {
	b := event.Booking
	switch event.Type {
	case EventBookingCreated:
		return "New Booking Request", fmt.Sprintf("%s requested your %s from %s to %s", b.RenterName, b.CarName, b.PickupDate, b.ReturnDate)
	case EventBookingReceived:
		return "Booking Received", fmt.Sprintf("Your booking for %s is pending owner confirmation", b.CarName)
	case EventBookingCancelled:
		return "Booking Cancelled", fmt.Sprintf("%s cancelled the booking for %s", b.RenterName, b.CarName)
	default:
		return "Booking Updated", fmt.Sprintf("Your booking for %s is now %s", b.CarName, b.Status)
	}
}

// androidConfig returns Android-specific notification configuration
func androidConfig() *messaging.AndroidConfig {
	return &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:                 "default",
			ChannelID:             "carrental_bookings",
			Priority:              messaging.PriorityHigh,
			DefaultSound:          true,
			DefaultVibrateTimings: true,
		},
	}
}

// apnsConfig returns iOS-specific notification configuration
func apnsConfig() *messaging.APNSConfig {
	badge := 1
	return &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Sound:          "default",
				Badge:          &badge,
				MutableContent: true,
			},
		},
	}
}
