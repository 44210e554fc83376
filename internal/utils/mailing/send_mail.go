package mailing

import (
	"Pantry-Planner/internal/utils"
	"strconv"

	"gopkg.in/gomail.v2"
)

type (
	MailConfig struct {
		AppURL       string
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	Sender interface {
		SendMail(toEmail string, subject string, body string) error
	}

	smtpSender struct {
		config MailConfig
	}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// Enabled reports whether an SMTP host is configured at all.
func (c MailConfig) Enabled() bool {
	return c.SMTPHost != ""
}

func NewSMTPSender(config MailConfig) Sender {
	return &smtpSender{config: config}
}

func (s *smtpSender) SendMail(toEmail string, subject string, body string) error {
	port, err := strconv.Atoi(s.config.SMTPPort)
	if err != nil {
		return err
	}

	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", s.config.SMTPEmail, s.config.SMTPSender)
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(
		s.config.SMTPHost,
		port,
		s.config.SMTPEmail,
		s.config.SMTPPassword,
	)

	return dialer.DialAndSend(mailer)
}
