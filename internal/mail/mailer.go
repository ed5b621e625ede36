// Package mail wraps the outbound mail collaborator behind a narrow
// interface so services and tests stay independent of the SMTP transport.
package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Email is a single outbound message
type Email struct {
	Recipient string
	Subject   string
	Text      string
	HTML      string
}

// Sender delivers email
type Sender interface {
	Send(e Email) error
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a new SMTP-backed sender
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers a single message
func (s *SMTPSender) Send(e Email) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", e.Recipient)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.Text)
	if e.HTML != "" {
		m.AddAlternative("text/html", e.HTML)
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
