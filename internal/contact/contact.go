// Package contact handles contact-form submissions: it renders the store's
// Arabic notification mail and hands it to the mail sender.
package contact

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/go-faster/errors"

	"github.com/maktabat-alamal/storefront/internal/mail"
)

// Sentinel errors for form validation.
var (
	ErrMissingName    = errors.New("name is required")
	ErrMissingEmail   = errors.New("email is required")
	ErrMissingMessage = errors.New("message is required")
)

// Message is a contact-form submission. Subject is optional.
type Message struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Service forwards contact-form submissions to the store owner's inbox.
type Service struct {
	sender mail.Sender
	to     string
}

// NewService creates a contact Service delivering to the given address.
func NewService(sender mail.Sender, to string) *Service {
	return &Service{sender: sender, to: to}
}

const noSubject = "لا يوجد موضوع"

// Submit validates the form and sends the notification mail. No retry is
// performed; delivery failures surface to the caller.
func (s *Service) Submit(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(msg.Email) == "" {
		return ErrMissingEmail
	}
	if strings.TrimSpace(msg.Message) == "" {
		return ErrMissingMessage
	}

	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = noSubject
	}

	if err := s.sender.Send(ctx, mail.Message{
		To:      s.to,
		Subject: "رسالة جديدة من نموذج الاتصال: " + subject,
		HTML:    renderBody(msg, subject),
	}); err != nil {
		return errors.Wrap(err, "deliver contact mail")
	}
	return nil
}

func renderBody(msg Message, subject string) string {
	var b strings.Builder
	b.WriteString("<p>لديك رسالة جديدة من نموذج الاتصال في موقع مكتبة الأمل:</p>\n<ul>\n")
	fmt.Fprintf(&b, "  <li><strong>الاسم:</strong> %s</li>\n", html.EscapeString(msg.Name))
	fmt.Fprintf(&b, "  <li><strong>البريد الإلكتروني:</strong> %s</li>\n", html.EscapeString(msg.Email))
	fmt.Fprintf(&b, "  <li><strong>الموضوع:</strong> %s</li>\n", html.EscapeString(subject))
	fmt.Fprintf(&b, "  <li><strong>الرسالة:</strong><br>%s</li>\n", html.EscapeString(msg.Message))
	b.WriteString("</ul>\n")
	return b.String()
}
