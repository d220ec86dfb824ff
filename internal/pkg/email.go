package pkg

import (
	"crypto/tls"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends a single HTML message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	return SendEmail(m.cfg, to, subject, htmlBody)
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

func EmailCodeHTML(action, code string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>Hello,</p><p>Your verification code for <b>%s</b> is <b style="font-size:18px;">%s</b>.</p><p>It expires in %d minutes. Do not share it with anyone.</p>`,
		action, code, int(ttl.Minutes()))
}
