package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/pkg/observability"
)

// SMSConfig holds credentials for the SMS provider.
type SMSConfig struct {
	BaseURL  string // e.g. https://api.africastalking.com/version1/messaging
	Username string
	APIKey   string
	SenderID string // optional short code
	Timeout  time.Duration
}

// SMSNotifier implements port.Notifier against an Africa's Talking style
// SMS API. Delivery is best-effort; callers treat failures as non-fatal.
type SMSNotifier struct {
	cfg    SMSConfig
	http   *http.Client
	logger *slog.Logger
}

// NewSMSNotifier creates an SMS notifier. httpClient may be nil.
func NewSMSNotifier(cfg SMSConfig, httpClient *http.Client, logger *slog.Logger) *SMSNotifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &SMSNotifier{cfg: cfg, http: httpClient, logger: logger}
}

var _ port.Notifier = (*SMSNotifier)(nil)

// Send delivers one SMS message to the phone number.
func (n *SMSNotifier) Send(ctx context.Context, phoneNumber, message string) error {
	form := url.Values{}
	form.Set("username", n.cfg.Username)
	form.Set("to", phoneNumber)
	form.Set("message", message)
	if n.cfg.SenderID != "" {
		form.Set("from", n.cfg.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("ApiKey", n.cfg.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		observability.NotificationFailuresTotal.Inc()
		return fmt.Errorf("sms: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.NotificationFailuresTotal.Inc()
		return fmt.Errorf("sms: provider returned status %d", resp.StatusCode)
	}

	n.logger.Debug("sms sent", "to", phoneNumber)
	return nil
}

// NoopNotifier discards all messages. It stands in for the SMS provider in
// local development where no API key is configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(ctx context.Context, phoneNumber, message string) error { return nil }
