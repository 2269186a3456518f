package mailer

import "context"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Template names a set of embedded templates rendered by the worker with Data;
// Subject/Text/HTML are used as-is when Template is empty.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "password_reset_otp", "password_reset_done"
	Data     map[string]any `json:"data,omitempty"`
}

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}
