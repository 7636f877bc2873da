package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/upfeed/upfeed/internal/config"
)

// Mailer sends account emails. Handlers depend on the interface so tests can
// record sends instead of talking to an SMTP server.
type Mailer interface {
	SendPasswordResetEmail(to, resetLink string)
}

const resetEmailTemplate = `<p>Someone requested a password reset for your account.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>The link is valid for 24 hours and can be used once. If you didn't request
this, you can ignore this email.</p>`

// SMTPMailService sends mail through a plain SMTP relay. Sends happen in a
// goroutine so resolvers never block on the mail server.
type SMTPMailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool

	resetTmpl *template.Template
}

func NewMailService(cfg *config.Config) *SMTPMailService {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" && cfg.SMTPPassword != "" && cfg.SMTPFrom != ""
	if !enabled {
		logrus.Warn("MailService disabled: missing SMTP environment variables")
	}

	return &SMTPMailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUser,
		password:  cfg.SMTPPassword,
		from:      cfg.SMTPFrom,
		enabled:   enabled,
		resetTmpl: template.Must(template.New("reset").Parse(resetEmailTemplate)),
	}
}

func (s *SMTPMailService) sendAsync(to []string, subject, body string) {
	if !s.enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		addr := fmt.Sprintf("%s:%s", s.host, s.port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: upfeed <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.from, subject, mime, body))

		if err := smtp.SendMail(addr, auth, s.from, to, msg); err != nil {
			logrus.WithError(err).Errorf("Failed to send email to %v", to)
			return
		}
		logrus.Infof("Email sent to %v: %s", to, subject)
	}()
}

// SendPasswordResetEmail sends the single-use reset link.
func (s *SMTPMailService) SendPasswordResetEmail(to, resetLink string) {
	var buf bytes.Buffer
	if err := s.resetTmpl.Execute(&buf, map[string]string{"Link": resetLink}); err != nil {
		logrus.WithError(err).Error("Error rendering reset email")
		return
	}
	s.sendAsync([]string{to}, "Reset your upfeed password", buf.String())
}
