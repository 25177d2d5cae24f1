package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer sends confirmation codes over SMTP. Settings come in through the
// constructor, never from ambient process state. When the SMTP settings
// are incomplete the mailer is disabled and only logs, which keeps local
// development working without a mail relay.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
	logger   *slog.Logger
}

func New(host, port, username, password, from string, logger *slog.Logger) *Mailer {
	enabled := host != "" && port != "" && from != ""
	if !enabled {
		logger.Warn("mailer disabled: incomplete SMTP configuration")
	}
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		enabled:  enabled,
		logger:   logger,
	}
}

// SendConfirmationCode dispatches the code asynchronously. The caller has
// already persisted the code, so a delivery failure costs a resend, not a
// corrupted account.
func (m *Mailer) SendConfirmationCode(email, code string) {
	subject := "Your confirmation code"
	body := fmt.Sprintf("Use this confirmation code to obtain an access token:\r\n\r\n%s\r\n", code)
	m.sendAsync([]string{email}, subject, body)
}

func (m *Mailer) sendAsync(to []string, subject, body string) {
	if !m.enabled {
		m.logger.Info("mail dispatch skipped", "to", strings.Join(to, ","), "subject", subject)
		return
	}

	go func() {
		var auth smtp.Auth
		if m.username != "" {
			auth = smtp.PlainAuth("", m.username, m.password, m.host)
		}
		addr := fmt.Sprintf("%s:%s", m.host, m.port)

		msg := []byte(fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\n%s",
			strings.Join(to, ","), m.from, subject, body))

		if err := smtp.SendMail(addr, auth, m.from, to, msg); err != nil {
			m.logger.Error("failed to send mail", "to", strings.Join(to, ","), "error", err)
			return
		}
		m.logger.Info("mail sent", "to", strings.Join(to, ","), "subject", subject)
	}()
}
