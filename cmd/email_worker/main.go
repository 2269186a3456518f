package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/masjid-api/config"
	"github.com/oksasatya/masjid-api/pkg/helpers"
	"github.com/oksasatya/masjid-api/pkg/mailer"
	mailtpl "github.com/oksasatya/masjid-api/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Warn("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	sender, transport := mailer.NewTransport(cfg)
	if sender == nil {
		log.Fatal("no mail transport configured (set MAILGUN_* or SMTP_*)")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch between workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			switch err := deliver(ctx, sender, msg.Body); {
			case err == nil:
				_ = msg.Ack(false)
			case errors.Is(err, errBadJob):
				logger.WithError(err).Warn("dropping email job")
				_ = msg.Nack(false, false)
			default:
				logger.WithError(err).Error("send failed; requeueing")
				_ = msg.Nack(false, true)
			}
		}
	}()

	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQEmailQueue, "transport": transport}).Info("email worker listening")
	<-ctx.Done()
	logger.Info("shutting down...")
	_ = ch.Cancel("", false)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

var errBadJob = errors.New("bad email job")

// deliver renders one queued job and hands it to the transport. Jobs that
// can never succeed are reported as errBadJob so they are not requeued.
func deliver(ctx context.Context, sender mailer.Sender, body []byte) error {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return errors.Join(errBadJob, err)
	}
	if job.To == "" {
		return errors.Join(errBadJob, errors.New("missing recipient"))
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return errors.Join(errBadJob, errors.New("unknown template "+job.Template))
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return errors.Join(errBadJob, err)
		}
		subject, text, html = s, t, h
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return sender.Send(c, job.To, subject, text, html)
}
