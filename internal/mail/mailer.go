// Package mail sends transactional email over SMTP behind a circuit
// breaker, so a dead mail relay fails fast instead of tying up request
// handlers.
package mail

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker"
	gomail "github.com/wneessen/go-mail"
)

// Message is a single outbound mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages. The contact service depends on this interface,
// not on SMTP.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender implements Sender over an SMTP relay. Three consecutive
// delivery failures open the breaker for thirty seconds.
type SMTPSender struct {
	cfg     SMTPConfig
	breaker *gobreaker.CircuitBreaker
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTPSender for the given relay.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg: cfg,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "smtp",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Send delivers the message, dialing the relay per message. There is no
// retry; failures surface to the caller.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.deliver(ctx, msg)
	})
	if err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, msg Message) error {
	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return errors.Wrap(err, "create smtp client")
	}

	m := gomail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return errors.Wrap(err, "set sender")
	}
	if err := m.To(msg.To); err != nil {
		return errors.Wrap(err, "set recipient")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	return client.DialAndSendWithContext(ctx, m)
}
