package email

import (
	"fmt"

	"github.com/nfrund/notebook/internal/config"
	"github.com/nfrund/notebook/internal/domain"
	"github.com/nfrund/notebook/internal/retry"
)

// NewEmailService returns the sender selected by EMAIL_PROVIDER.
func NewEmailService(cfg config.Provider) (domain.EmailSender, error) {
	switch cfg.GetEmailProvider() {
	case "log", "":
		return NewLogSender(cfg.GetEmailSender()), nil
	case "resend":
		if cfg.GetEmailAPIKey() == "" {
			return nil, fmt.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
		policy := retry.Policy{MaxRetries: cfg.GetRetryMax(), BaseDelay: cfg.GetRetryBaseDelay()}
		return NewResendSender(cfg.GetEmailAPIKey(), cfg.GetEmailSender(), policy), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.GetEmailProvider())
	}
}
