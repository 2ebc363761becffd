// Package mailer delivers the composed briefing through SMTP, the Resend API,
// or the log (dry run).
package mailer

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrAuth indicates the relay rejected the sender credentials.
	ErrAuth = errors.New("smtp authentication failed")

	// ErrSend indicates any other delivery failure.
	ErrSend = errors.New("failed to send email")

	ErrNoSender    = errors.New("email must have a sender")
	ErrNoRecipient = errors.New("email must have at least one recipient")
	ErrNoSubject   = errors.New("email must have a subject")
	ErrNoContent   = errors.New("email must have HTML content")
)

// Message is a fully prepared email.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string // plain-text alternative
}

// Sender delivers a message. Implementations make exactly one attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Validate checks that msg has everything a provider needs.
func Validate(msg Message) error {
	if strings.TrimSpace(msg.From) == "" {
		return ErrNoSender
	}
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	for _, to := range msg.To {
		if strings.TrimSpace(to) == "" {
			return ErrNoRecipient
		}
	}
	if msg.Subject == "" {
		return ErrNoSubject
	}
	if msg.HTML == "" {
		return ErrNoContent
	}
	return nil
}
