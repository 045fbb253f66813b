// Package notify delivers alert emails over SMTP.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
)

// SMTPConfig carries the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailSender delivers alert batches through a plain SMTP relay.
type EmailSender struct {
	cfg    SMTPConfig
	logger *zap.Logger
	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailSender(cfg SMTPConfig, logger *zap.Logger) *EmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailSender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send composes one message covering the whole batch and submits it to the
// relay. The context is honored up front; smtp.SendMail itself is bounded by
// the relay's own timeouts.
func (s *EmailSender) Send(ctx context.Context, to string, site *website.Website, alerts []*alert.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.cfg.Host == "" {
		return fmt.Errorf("smtp: no relay configured")
	}
	if len(alerts) == 0 {
		return nil
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := s.compose(to, site, alerts)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	s.logger.Info("alert email sent",
		zap.String("to", to),
		zap.Int("alerts", len(alerts)))
	return nil
}

func (s *EmailSender) compose(to string, site *website.Website, alerts []*alert.Alert) []byte {
	worst := alerts[0].Severity()
	for _, a := range alerts[1:] {
		if a.Severity().Rank() > worst.Rank() {
			worst = a.Severity()
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: [%s] %d alert(s) for %s\r\n", strings.ToUpper(string(worst)), len(alerts), site.Name())
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "Monitoring alerts for %s (%s)\r\n\r\n", site.Name(), site.URL())
	for _, a := range alerts {
		fmt.Fprintf(&b, "[%s] %s\r\n%s\r\n", a.Severity(), a.Title(), a.Description())
		fmt.Fprintf(&b, "Raised: %s\r\n\r\n", a.CreatedAt().Format("2006-01-02 15:04:05 MST"))
	}
	return []byte(b.String())
}
