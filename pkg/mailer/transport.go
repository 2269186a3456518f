package mailer

import "github.com/oksasatya/masjid-api/config"

// NewTransport picks Mailgun when it is fully configured and falls back to
// SMTP. It returns nil when neither is set.
func NewTransport(cfg *config.Config) (Sender, string) {
	switch {
	case cfg.MailgunConfigured():
		return NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), "mailgun"
	case cfg.SMTPConfigured():
		return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.CompanyName), "smtp"
	}
	return nil, ""
}
