package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender delivers broadcast texts over SMTP. Recipient ids are email
// addresses.
type Sender struct {
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
	Subject string
}

func (s *Sender) SendText(ctx context.Context, recipientID, text string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", recipientID)
	m.SetHeader("Subject", s.Subject)
	m.SetBody("text/plain", text)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)

	if err := d.DialAndSend(m); err != nil {
		return false, fmt.Errorf("smtp send error: %w", err)
	}

	return true, nil
}
