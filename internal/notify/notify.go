// Package notify builds and delivers the share notification: a short
// greeting emailed to the founder with the generated agreement attached.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Greeting produces the body of the share email from the founder's name
// and the fund's name. Only the founder's first name is used.
func Greeting(founderName, fundName string) string {
	first := founderName
	if fields := strings.Fields(founderName); len(fields) > 0 {
		first = fields[0]
	}
	return fmt.Sprintf(
		"Hi %s,\n\n%s has shared a SAFE agreement with you. Please find the document attached to this email.",
		first, fundName,
	)
}

// Attachment is a generated document to include with a notification.
type Attachment struct {
	Filename string
	Content  []byte
}

// Mailer delivers notifications. This abstraction keeps delivery (an
// external collaborator) out of the core: implementations may hand off to
// an email API, an outbox table, or nothing at all.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string, att *Attachment) error
}

// LogMailer records notifications to the log instead of delivering them.
// Used in development and as the default when no provider is configured.
type LogMailer struct{}

// Send logs the notification and succeeds.
func (LogMailer) Send(_ context.Context, to, subject, body string, att *Attachment) error {
	args := []any{"to", to, "subject", subject, "body_len", len(body)}
	if att != nil {
		args = append(args, "attachment", att.Filename, "attachment_bytes", len(att.Content))
	}
	slog.Info("share email queued", args...)
	return nil
}
