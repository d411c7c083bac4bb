// Package mailer sends transactional e-mail: OTP codes, order confirmations
// and admin alerts.
package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"kicks/internal/config"
)

type Service interface {
	Send(ctx context.Context, e Email) error
}

type Email struct {
	FromName string
	From     string

	To  []string
	Cc  []string
	Bcc []string

	Subject string

	TextBody string
	HTMLBody string

	Headers map[string]string
}

func (e Email) AllRecipients() []string {
	out := make([]string, 0, len(e.To)+len(e.Cc)+len(e.Bcc))
	out = append(out, e.To...)
	out = append(out, e.Cc...)
	out = append(out, e.Bcc...)
	return out
}

// LogMailer prints the message instead of delivering it. It is the default
// driver in development so OTP codes can be read from the console.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, e Email) error {
	_ = ctx
	log.Printf("[mail] to=%s subject=%q\n%s", strings.Join(e.To, ","), e.Subject, e.TextBody)
	return nil
}

func New(cfg config.Config) (Service, error) {
	switch cfg.MailDriver {
	case "", "log":
		return LogMailer{}, nil
	case "smtp":
		return NewSMTPMailer(cfg.SMTP), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER: %s", cfg.MailDriver)
	}
}
