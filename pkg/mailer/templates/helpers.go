package templates

import (
	"time"
)

// Branding carries the sender identity shown in every email.
type Branding struct {
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04 UTC")
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 UTC")
		if mins := int(time.Until(utc).Round(time.Minute).Minutes()); mins > 0 {
			d.ExpiresInMin = mins
		}
	}
}

func WithCode(code string) Option { return func(d *EmailData) { d.Code = code } }

// NewBaseEmailData fills common fields from b, then applies opts.
func NewBaseEmailData(b Branding, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		CompanyName:    b.CompanyName,
		SupportURL:     b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewPasswordResetOTPData(b Branding, name, email, code string, expiresAt time.Time) map[string]any {
	d := NewBaseEmailData(b, PasswordResetOTP, name, email, WithCode(code), WithExpiresAt(expiresAt))
	return ToMap(d)
}

func NewPasswordResetDoneData(b Branding, name, email string, at time.Time) map[string]any {
	d := NewBaseEmailData(b, PasswordResetDone, name, email, WithTime(at))
	return ToMap(d)
}
