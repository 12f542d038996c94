// Package gmail sends briefs as plain-text email through the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/flightdeck/internal/connectors/google"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.DeliverySink = (*Sink)(nil)

// Sink sends a brief to one recipient from the authorised mailbox.
type Sink struct {
	svc       *gmail.Service
	user      string
	recipient string
	limiter   *google.RateLimiter
}

// New creates a Gmail sink. user defaults to "me".
func New(svc *gmail.Service, user, recipient string) *Sink {
	if user == "" {
		user = "me"
	}
	return &Sink{
		svc:       svc,
		user:      user,
		recipient: recipient,
		limiter:   google.NewRateLimiter(google.ServiceGmail),
	}
}

// Name implements driven.DeliverySink.
func (s *Sink) Name() string { return "gmail" }

// Recipient returns the destination address.
func (s *Sink) Recipient() string { return s.recipient }

// Post sends msg as a single email.
func (s *Sink) Post(ctx context.Context, msg domain.Message) (string, error) {
	if s.svc == nil || s.recipient == "" {
		return "gmail fallback not configured", domain.ErrSinkNotConfigured
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	raw := base64.URLEncoding.EncodeToString(BuildMessage(s.recipient, msg.Subject, msg.Body))
	sent, err := s.svc.Users.Messages.Send(s.user, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		if google.IsRateLimited(err) {
			s.limiter.Backoff(0)
		}
		err = google.WrapError(err)
		return fmt.Sprintf("gmail send failed: %v", err), err
	}
	return fmt.Sprintf("gmail accepted (id %s)", sent.Id), nil
}

// BuildMessage renders an RFC 2822 plain-text message.
func BuildMessage(to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
