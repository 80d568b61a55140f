package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Service sends operational mail. The reminder worker uses it to alert
// operators when deliveries keep failing.
type Service interface {
	SendAlert(ctx context.Context, subject, body string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AlertTo  string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.AlertTo,
	}
}

func (s *smtpService) SendAlert(_ context.Context, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}
	return nil
}

// NopService discards alerts; used when SMTP is not configured.
type NopService struct{}

func (NopService) SendAlert(context.Context, string, string) error { return nil }
