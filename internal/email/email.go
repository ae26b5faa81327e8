// Package email delivers account emails, either to the log during
// development or through the Resend API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/retry"
)

var (
	_ domain.EmailSender = (*LogSender)(nil)
	_ domain.EmailSender = (*ResendSender)(nil)
)

// LogSender writes emails to the log instead of sending them.
type LogSender struct {
	senderAddress string
}

// NewLogSender creates a LogSender.
func NewLogSender(from string) *LogSender {
	return &LogSender{senderAddress: from}
}

// Send logs the email.
func (s *LogSender) Send(to, subject, htmlBody string) error {
	slog.Info("email logged instead of sent",
		"event", "email_logged",
		"from", s.senderAddress,
		"to", to,
		"subject", subject,
		"body", htmlBody,
	)
	return nil
}

// ResendEndpoint is the Resend API URL emails are posted to.
const ResendEndpoint = "https://api.resend.com/emails"

const defaultResendSender = "Notebook <onboarding@resend.dev>"

// ResendSender sends emails through the Resend API. Server errors and
// network failures are retried.
type ResendSender struct {
	apiKey        string
	senderAddress string
	endpoint      string
	client        *http.Client
	policy        retry.Policy
}

// NewResendSender creates a ResendSender.
func NewResendSender(apiKey, from string, policy retry.Policy) *ResendSender {
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: from,
		endpoint:      ResendEndpoint,
		client:        &http.Client{Timeout: 15 * time.Second},
		policy:        policy,
	}
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// errRejected marks answers that retrying will not fix.
var errRejected = errors.New("email rejected")

// Send posts the email to Resend.
func (s *ResendSender) Send(to, subject, htmlBody string) error {
	sender := s.senderAddress
	if sender == "" {
		sender = defaultResendSender
	}
	body, err := json.Marshal(resendPayload{From: sender, To: to, Subject: subject, HTML: htmlBody})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	policy := s.policy
	policy.ShouldRetry = func(err error) bool { return !errors.Is(err, errRejected) }
	err = retry.Do(context.Background(), policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%w: %v", errRejected, err)
		}
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request to resend: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("resend API returned status %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return fmt.Errorf("%w: resend API returned status %d", errRejected, resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("email sent", "event", "email_sent", "to", to, "subject", subject)
	return nil
}
