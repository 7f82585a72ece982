package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"bizcard/internal/shared/config"
	"bizcard/internal/shared/logger"
)

var ErrEmailServiceNotConfigured = errors.New("email service not configured")

// Message is one outgoing email. HTMLBody is optional.
type Message struct {
	To        string
	Bcc       []string
	Subject   string
	PlainBody string
	HTMLBody  string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	fromAddress string
	fromName    string
	dialer      *gomail.Dialer
}

func NewSMTPSender(cfg config.EmailConfig) (*SMTPSender, error) {
	if cfg.SMTPHost == "" || cfg.FromAddress == "" {
		return nil, ErrEmailServiceNotConfigured
	}

	return &SMTPSender{
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromAddress, s.fromName)
	m.SetHeader("To", msg.To)
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.PlainBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// LogSender records messages instead of delivering them. It stands in for
// SMTP when no mail server is configured.
type LogSender struct {
	logger logger.Interface
}

func NewLogSender(log logger.Interface) *LogSender {
	return &LogSender{logger: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Infow("email delivery disabled, message not sent",
		"to", msg.To,
		"bcc", msg.Bcc,
		"subject", msg.Subject,
	)
	return nil
}
