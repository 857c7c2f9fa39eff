package services

import (
	"gopkg.in/gomail.v2"
)

// Mailer is the outbound mail transport. A send is a single blocking call;
// callers decide what a failure means.
type Mailer interface {
	Send(subject, body string, recipients []string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a Mailer over a plain SMTP dialer.
func NewSMTPMailer(host string, port int, username, password, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *smtpMailer) Send(subject, body string, recipients []string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
