package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/neonshoplabs/neonshop-backend/pkg/config"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
)

const retryBaseDelay = 250 * time.Millisecond

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message. Implementations decide the transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer wraps a Sender with validation, a from-address, and retries.
type Mailer struct {
	sender     Sender
	from       string
	maxRetries int
	logg       *logger.Logger
}

// New builds a Mailer around the provided sender.
func New(sender Sender, cfg config.MailConfig, logg *logger.Logger) (*Mailer, error) {
	if sender == nil {
		return nil, fmt.Errorf("sender is required")
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Mailer{
		sender:     sender,
		from:       cfg.FromAddress,
		maxRetries: maxRetries,
		logg:       logg,
	}, nil
}

// From returns the configured sender address.
func (m *Mailer) From() string {
	return m.from
}

// Send validates and delivers the message, retrying transient failures with
// exponential backoff.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("subject is required")
	}

	backoff := retry.WithMaxRetries(uint64(m.maxRetries), retry.NewExponential(retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if sendErr := m.sender.Send(ctx, msg); sendErr != nil {
			return retry.RetryableError(sendErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes outbound mail to the structured log instead of a real
// transport. Used in dev and as the default until an SMTP provider is wired.
type LogSender struct {
	Logg *logger.Logger
}

// Send logs the message fields.
func (s LogSender) Send(ctx context.Context, msg Message) error {
	if s.Logg == nil {
		return fmt.Errorf("log sender requires a logger")
	}
	ctx = s.Logg.WithFields(ctx, map[string]any{
		"mail_to":      msg.To,
		"mail_subject": msg.Subject,
	})
	s.Logg.Info(ctx, "outbound mail (log transport)")
	return nil
}
