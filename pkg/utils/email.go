package utils

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
)

const companyName = "CarRental"

var ErrMailerNotConfigured = errors.New("email configuration not set")

// Mailer sends a single HTML message.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// SMTPMailer sends through an authenticated SMTP relay.
type SMTPMailer struct {
	from     string
	password string
	host     string
	port     string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(from, password, host, port string) (*SMTPMailer, error) {
	if from == "" || password == "" || host == "" || port == "" {
		return nil, ErrMailerNotConfigured
	}
	return &SMTPMailer{
		from:     from,
		password: password,
		host:     host,
		port:     port,
		send:     smtp.SendMail,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Headers
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", companyName, m.from)},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
		{"X-Mailer", "CarRental-Mailer"},
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	message.WriteString("\r\n" + htmlBody)

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	if err := m.send(m.host+":"+m.port, auth, m.from, to, []byte(message.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SESMailer sends through Amazon SES.
type SESMailer struct {
	client sesiface.SESAPI
	from   string
}

func NewSESMailer(region, accessKeyID, secretAccessKey, from string) (*SESMailer, error) {
	if region == "" || from == "" {
		return nil, ErrMailerNotConfigured
	}

	cfg := &aws.Config{Region: aws.String(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKeyID, secretAccessKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &SESMailer{client: ses.New(sess), from: from}, nil
}

func (m *SESMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(fmt.Sprintf("%s <%s>", companyName, m.from)),
		Destination: &ses.Destination{
			ToAddresses: aws.StringSlice(to),
		},
		Message: &ses.Message{
			Subject: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(subject)},
			Body: &ses.Body{
				Html: &ses.Content{Charset: aws.String("UTF-8"), Data: aws.String(htmlBody)},
			},
		},
	}

	if _, err := m.client.SendEmailWithContext(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

// BookingEmailData holds the values rendered into booking e-mails.
type BookingEmailData struct {
	UserName     string
	UserEmail    string
	MobileNumber string
	CarName      string
	PickupDate   string
	ReturnDate   string
	Price        float64
	Location     string
	Status       string
}

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #f9f9f9; padding: 20px;">
			<h2 style="color: #4CAF50; margin: 0;">CarRental</h2>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

const infoRow = `<div style="margin: 10px 0; padding: 10px; background: white; border-radius: 3px;"><strong>%s:</strong> %s</div>`

func row(label, value string) string {
	return fmt.Sprintf(infoRow, label, html.EscapeString(value))
}

func bookingRows(d BookingEmailData) string {
	return strings.Join([]string{
		row("Car", d.CarName),
		row("Pickup Location", d.Location),
		row("Pickup Date", d.PickupDate),
		row("Return Date", d.ReturnDate),
		row("Total Price", fmt.Sprintf("%.2f", d.Price)),
	}, "\n")
}

func customerRows(d BookingEmailData) string {
	return strings.Join([]string{
		row("Name", d.UserName),
		row("Email", d.UserEmail),
		row("Mobile Number", d.MobileNumber),
	}, "\n")
}

func wrap(title, inner string) string {
	return emailHeader + `
		<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
			<h1 style="color: #2c3e50; text-align: center;">` + title + `</h1>
` + inner + `
		</div>` + emailFooter
}

// NewBookingOwnerEmail tells the owner a customer requested one of their cars.
func NewBookingOwnerEmail(d BookingEmailData) (subject, body string) {
	subject = "New Booking Request - " + d.CarName
	body = wrap("New Booking Request Received", `
			<p><strong>Payment Method:</strong> Cash on Pickup</p>
			<h3>Customer Information:</h3>
`+customerRows(d)+`
			<h3>Booking Details:</h3>
`+bookingRows(d)+`
			<p>Please confirm this booking in your dashboard.</p>`)
	return subject, body
}

// BookingReceivedUserEmail acknowledges a booking to the renter.
func BookingReceivedUserEmail(d BookingEmailData) (subject, body string) {
	subject = "Booking Confirmation - " + d.CarName
	body = wrap("Booking Received Successfully", `
			<p>Hello `+html.EscapeString(d.UserName)+`,</p>
			<p>Your booking request is <strong>pending</strong> until the owner confirms it.</p>
`+bookingRows(d)+`
			<p>Please bring your ID and pay in cash at pickup. We will contact you on `+html.EscapeString(d.MobileNumber)+`.</p>`)
	return subject, body
}

// BookingCancelledOwnerEmail tells the owner the renter cancelled.
func BookingCancelledOwnerEmail(d BookingEmailData) (subject, body string) {
	subject = "Booking Cancelled - " + d.CarName
	body = wrap("Booking Cancelled", `
			<p>The following booking was cancelled by the customer. The dates are available again.</p>
			<h3>Customer Information:</h3>
`+customerRows(d)+`
			<h3>Booking Details:</h3>
`+bookingRows(d))
	return subject, body
}

// BookingStatusUserEmail tells the renter the owner changed the status.
func BookingStatusUserEmail(d BookingEmailData) (subject, body string) {
	subject = "Booking " + capitalize(d.Status) + " - " + d.CarName
	body = wrap("Booking Status Updated", `
			<p>Hello `+html.EscapeString(d.UserName)+`,</p>
			<p>Your booking is now <strong>`+html.EscapeString(d.Status)+`</strong>.</p>
`+bookingRows(d))
	return subject, body
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
