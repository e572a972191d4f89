// Package mailer delivers the weekly report email with the ledger file
// attached.
package mailer

import (
	"bytes"
	"context"
	"fmt"

	dailydiesel "github.com/Thiagoscocco/DAILY-DIESEL"
	"github.com/Thiagoscocco/DAILY-DIESEL/renderer"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"gopkg.in/gomail.v2"
)

// Mailer sends the weekly snapshot over SMTP. It implements
// dailydiesel.Notifier.
type Mailer struct {
	smtp       dailydiesel.SMTPConfig
	recipients []string

	// send is the delivery function, replaceable in tests.
	send func(m *gomail.Message) error
}

var _ dailydiesel.Notifier = (*Mailer)(nil)

// New returns a Mailer delivering to the configured recipients.
func New(smtp dailydiesel.SMTPConfig, recipients []string) *Mailer {
	dialer := gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	return &Mailer{
		smtp:       smtp,
		recipients: recipients,
		send:       func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

// WithRecipients returns a copy of the mailer addressing a different
// recipient list. Used for ad-hoc sends.
func (m *Mailer) WithRecipients(recipients []string) *Mailer {
	c := *m
	c.recipients = recipients
	return &c
}

// Send renders the weekly report as HTML, attaches the ledger file, and
// delivers the message. Any failure is a notification error; the persisted
// ledger is never touched.
func (m *Mailer) Send(ctx context.Context, snap dailydiesel.Snapshot) error {
	if len(m.recipients) == 0 {
		return fmt.Errorf("%w: no recipients configured", dailydiesel.ErrNotify)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", dailydiesel.ErrNotify, err)
	}

	body, err := htmlBody(snap)
	if err != nil {
		return fmt.Errorf("%w: render report: %v", dailydiesel.ErrNotify, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.smtp.From)
	msg.SetHeader("To", m.recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("Brent / Diesel weekly report — %s", snap.On))
	msg.SetBody("text/html", body)
	if snap.LedgerPath != "" {
		msg.Attach(snap.LedgerPath)
	}

	if err := m.send(msg); err != nil {
		return fmt.Errorf("%w: smtp delivery: %v", dailydiesel.ErrNotify, err)
	}
	log.Info().Strs("to", m.recipients).Stringer("on", snap.On).Msg("weekly email delivered")
	return nil
}

// htmlBody converts the markdown report into the email's HTML body.
func htmlBody(snap dailydiesel.Snapshot) (string, error) {
	source := renderer.WeeklyMarkdown(snap.Rows, snap.On)
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
