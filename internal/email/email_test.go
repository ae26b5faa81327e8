package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nfrund/notebook/internal/config"
	"github.com/nfrund/notebook/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(url string) *ResendSender {
	s := NewResendSender("key", "", retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond})
	s.endpoint = url
	return s
}

func TestResendSender_Send(t *testing.T) {
	var got resendPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestSender(srv.URL).Send("a@example.com", "Hi", "<p>x</p>"))
	assert.Equal(t, defaultResendSender, got.From)
	assert.Equal(t, "a@example.com", got.To)
}

func TestResendSender_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, newTestSender(srv.URL).Send("a@example.com", "Hi", "x"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResendSender_DoesNotRetryRejections(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := newTestSender(srv.URL).Send("bad", "Hi", "x")
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewEmailService(t *testing.T) {
	s, err := NewEmailService(&config.Config{EmailProvider: "log"})
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)
	assert.NoError(t, s.Send("a@example.com", "Hi", "x"))

	_, err = NewEmailService(&config.Config{EmailProvider: "resend"})
	assert.Error(t, err)

	s, err = NewEmailService(&config.Config{EmailProvider: "resend", EmailAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	_, err = NewEmailService(&config.Config{EmailProvider: "pigeon"})
	assert.Error(t, err)
}

func TestVerificationEmail(t *testing.T) {
	subject, body, err := VerificationEmail("https://notes.example.com", "tok123")
	require.NoError(t, err)
	assert.NotEmpty(t, subject)
	assert.Contains(t, body, `href="https://notes.example.com/auth/verify?token=tok123"`)
}
