package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/Dan9191/task-service/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Noop discards notifications. It is used when SMTP is not configured.
type Noop struct{}

func (Noop) NotifyRegistration(context.Context, string) error { return nil }

// Sender handles sending emails via SMTP
type Sender struct {
	cfg     *config.Config
	logger  *logrus.Logger
	send    func(ctx context.Context, e *email.Email, addr string, a smtp.Auth) error
	now     func() time.Time
	timeout time.Duration
}

const defaultSendTimeout = 10 * time.Second

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	timeout := cfg.SMTPTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Sender{
		cfg:     cfg,
		logger:  logger,
		send:    deliver,
		now:     time.Now,
		timeout: timeout,
	}
}

// NotifyRegistration tells the administrator that a new account was created.
// The whole SMTP exchange is bounded by ctx and the configured send timeout.
func (s *Sender) NotifyRegistration(ctx context.Context, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.AdminEmail}
	e.Subject = "New Task Service Registration"
	e.Text = []byte(fmt.Sprintf(
		"A new user has registered.\n\n"+
			"Username: %s\n"+
			"Registered at: %s\n",
		username, s.now().UTC().Format("2006-01-02 15:04:05"),
	))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(ctx, e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send registration notice for %s: %v", username, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.AdminEmail, e.Subject)
	return nil
}
