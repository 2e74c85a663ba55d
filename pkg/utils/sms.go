package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const africasTalkingURL = "https://api.africastalking.com/version1/messaging"

var ErrSMSNotConfigured = errors.New("africa's talking credentials not set")

// SMSSender posts text messages to the Africa's Talking messaging API.
type SMSSender struct {
	username string
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSMSSender(username, apiKey string, client *http.Client) (*SMSSender, error) {
	if username == "" || apiKey == "" {
		return nil, ErrSMSNotConfigured
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SMSSender{username: username, apiKey: apiKey, endpoint: africasTalkingURL, client: client}, nil
}

func (s *SMSSender) Send(ctx context.Context, message string, recipients ...string) error {
	if len(recipients) == 0 {
		return errors.New("sms: no recipients")
	}

	data := url.Values{}
	data.Set("username", s.username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}
	return nil
}

func BookingReceivedSMS(carName, pickup, ret string) string {
	return fmt.Sprintf("Your booking for %s (%s to %s) has been received and is awaiting the owner's confirmation.",
		carName, pickup, ret)
}

func BookingStatusSMS(carName, status string) string {
	return fmt.Sprintf("Your booking for %s is now %s.", carName, status)
}
