package utils

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = BookingEmailData{
	UserName:     "Asha <script>",
	UserEmail:    "asha@example.com",
	MobileNumber: "9999999999",
	CarName:      "Toyota Corolla",
	PickupDate:   "01 Jan 2024",
	ReturnDate:   "03 Jan 2024",
	Price:        2000,
	Location:     "Mumbai",
	Status:       "confirmed",
}

func TestEmailTemplates(t *testing.T) {
	subject, body := NewBookingOwnerEmail(sample)
	assert.Equal(t, "New Booking Request - Toyota Corolla", subject)
	assert.Contains(t, body, "2000.00")
	assert.Contains(t, body, "Asha &lt;script&gt;")
	assert.NotContains(t, body, "<script>")

	subject, _ = BookingReceivedUserEmail(sample)
	assert.Equal(t, "Booking Confirmation - Toyota Corolla", subject)

	subject, body = BookingCancelledOwnerEmail(sample)
	assert.Equal(t, "Booking Cancelled - Toyota Corolla", subject)
	assert.Contains(t, body, "Mumbai")

	subject, body = BookingStatusUserEmail(sample)
	assert.Equal(t, "Booking Confirmed - Toyota Corolla", subject)
	assert.Contains(t, body, "<strong>confirmed</strong>")
}

func TestNewSMTPMailerRequiresConfig(t *testing.T) {
	_, err := NewSMTPMailer("", "pw", "smtp.example.com", "587")
	assert.ErrorIs(t, err, ErrMailerNotConfigured)
}

func TestSMTPMailerSend(t *testing.T) {
	m, err := NewSMTPMailer("noreply@example.com", "pw", "smtp.example.com", "587")
	require.NoError(t, err)

	var gotAddr string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		return nil
	}

	require.NoError(t, m.Send(context.Background(), []string{"owner@example.com"}, "Hi", "<p>body</p>"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Hi\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\n<p>body</p>")

	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("relay down") }
	assert.Error(t, m.Send(context.Background(), []string{"owner@example.com"}, "Hi", "x"))
}

type fakeSES struct {
	sesiface.SESAPI
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmailWithContext(_ aws.Context, in *ses.SendEmailInput, _ ...request.Option) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESMailerSend(t *testing.T) {
	fake := &fakeSES{}
	m := &SESMailer{client: fake, from: "noreply@example.com"}

	require.NoError(t, m.Send(context.Background(), []string{"a@example.com"}, "Subj", "<p>x</p>"))
	require.NotNil(t, fake.input)
	assert.Equal(t, "Subj", aws.StringValue(fake.input.Message.Subject.Data))
	assert.Equal(t, []string{"a@example.com"}, aws.StringValueSlice(fake.input.Destination.ToAddresses))
}
