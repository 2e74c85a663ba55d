package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMSSenderRequiresCredentials(t *testing.T) {
	_, err := NewSMSSender("", "key", nil)
	assert.ErrorIs(t, err, ErrSMSNotConfigured)
	_, err = NewSMSSender("user", "", nil)
	assert.ErrorIs(t, err, ErrSMSNotConfigured)
}

func TestSMSSenderSend(t *testing.T) {
	var gotKey, gotTo, gotMsg string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotKey = r.Header.Get("apiKey")
		gotTo = r.PostForm.Get("to")
		gotMsg = r.PostForm.Get("message")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s, err := NewSMSSender("sandbox", "secret", srv.Client())
	require.NoError(t, err)
	s.endpoint = srv.URL

	require.NoError(t, s.Send(context.Background(), "hello", "+254700000001", "+254700000002"))
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "+254700000001,+254700000002", gotTo)
	assert.Equal(t, "hello", gotMsg)
}

func TestSMSSenderRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s, err := NewSMSSender("sandbox", "secret", srv.Client())
	require.NoError(t, err)
	s.endpoint = srv.URL

	err = s.Send(context.Background(), "hello", "+254700000001")
	assert.ErrorContains(t, err, "status code 401")
	assert.Error(t, s.Send(context.Background(), "hello"))
}
