package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/pkg/mailer"
	tpl "github.com/oksasatya/masjid-api/pkg/mailer/templates"
)

// JobPublisher enqueues a JSON job; *helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier hands email jobs to the worker through RabbitMQ.
type QueueNotifier struct {
	Pub      JobPublisher
	Branding tpl.Branding
}

func NewQueueNotifier(pub JobPublisher, b tpl.Branding) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Branding: b}
}

func (n *QueueNotifier) SendPasswordResetOTP(ctx context.Context, to, name, code string, expiresAt time.Time) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       to,
		Template: tpl.PasswordResetOTP,
		Data:     tpl.NewPasswordResetOTPData(n.Branding, name, to, code, expiresAt),
	})
}

func (n *QueueNotifier) SendPasswordResetConfirmation(ctx context.Context, to, name string) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       to,
		Template: tpl.PasswordResetDone,
		Data:     tpl.NewPasswordResetDoneData(n.Branding, name, to, time.Now()),
	})
}

// DirectNotifier renders and sends inline, for deployments without a queue.
type DirectNotifier struct {
	Sender   mailer.Sender
	Branding tpl.Branding
}

func NewDirectNotifier(sender mailer.Sender, b tpl.Branding) *DirectNotifier {
	return &DirectNotifier{Sender: sender, Branding: b}
}

func (n *DirectNotifier) SendPasswordResetOTP(ctx context.Context, to, name, code string, expiresAt time.Time) error {
	return n.send(ctx, to, tpl.PasswordResetOTP, tpl.NewPasswordResetOTPData(n.Branding, name, to, code, expiresAt))
}

func (n *DirectNotifier) SendPasswordResetConfirmation(ctx context.Context, to, name string) error {
	return n.send(ctx, to, tpl.PasswordResetDone, tpl.NewPasswordResetDoneData(n.Branding, name, to, time.Now()))
}

func (n *DirectNotifier) send(ctx context.Context, to, template string, data map[string]any) error {
	subject, text, html, err := tpl.Render(template, data)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return n.Sender.Send(c, to, subject, text, html)
}

// DisabledNotifier is used when MAIL_SEND_ENABLED=false. Messages are
// dropped after a warning.
type DisabledNotifier struct {
	Logger *logrus.Logger
}

func (n DisabledNotifier) SendPasswordResetOTP(_ context.Context, to, _, _ string, _ time.Time) error {
	if n.Logger != nil {
		n.Logger.WithField("to", to).Warn("mail disabled; otp email not sent")
	}
	return nil
}

func (n DisabledNotifier) SendPasswordResetConfirmation(_ context.Context, to, _ string) error {
	if n.Logger != nil {
		n.Logger.WithField("to", to).Warn("mail disabled; confirmation email not sent")
	}
	return nil
}

var (
	_ Notifier = (*QueueNotifier)(nil)
	_ Notifier = (*DirectNotifier)(nil)
	_ Notifier = DisabledNotifier{}
)
