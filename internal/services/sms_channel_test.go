package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSMS struct {
	messages []string
	to       []string
}

func (f *fakeSMS) Send(_ context.Context, message string, recipients ...string) error {
	f.messages = append(f.messages, message)
	f.to = append(f.to, recipients...)
	return nil
}

func TestSMSChannelTextsRenter(t *testing.T) {
	sms := &fakeSMS{}
	ch := NewSMSChannel(sms)

	require.NoError(t, ch.Deliver(context.Background(), sampleEvent(EventBookingStatusChanged)))
	require.NoError(t, ch.Deliver(context.Background(), sampleEvent(EventBookingReceived)))

	require.Len(t, sms.messages, 2)
	assert.Equal(t, "Your booking for Toyota Corolla is now confirmed.", sms.messages[0])
	assert.Contains(t, sms.messages[1], "01 Jan 2024 to 03 Jan 2024")
	assert.Equal(t, []string{"9999999999", "9999999999"}, sms.to)
}

func TestSMSChannelSkipsOwnerEvents(t *testing.T) {
	sms := &fakeSMS{}
	ch := NewSMSChannel(sms)

	require.NoError(t, ch.Deliver(context.Background(), sampleEvent(EventBookingCreated)))
	require.NoError(t, ch.Deliver(context.Background(), sampleEvent(EventBookingCancelled)))

	ev := sampleEvent(EventBookingStatusChanged)
	ev.Booking.ContactNumber = ""
	require.NoError(t, ch.Deliver(context.Background(), ev))

	assert.Empty(t, sms.messages)
	assert.Equal(t, "sms", ch.Name())
}
