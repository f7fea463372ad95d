// Package mailer enqueues outbound email jobs on RabbitMQ. Delivery is
// performed by an external worker; publishing is fire-and-forget and a
// failure never fails the originating request.
package mailer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"atelier/internal/middleware"

	amqp "github.com/rabbitmq/amqp091-go"
)

const mailQueue = "mail.outbound"

// Templates understood by the delivery worker.
const (
	TemplateOTP           = "otp_verification"
	TemplateContactNotice = "contact_notification"
)

// Job is the message placed on the mail queue.
type Job struct {
	Template string            `json:"template"`
	To       string            `json:"to"`
	From     string            `json:"from"`
	Vars     map[string]string `json:"vars,omitempty"`
	QueuedAt time.Time         `json:"queued_at"`
}

// Mailer publishes mail jobs. A Mailer with an empty URL is disabled and
// silently drops jobs, mirroring how the Redis cache degrades when absent.
type Mailer struct {
	url  string
	from string
}

// New returns a Mailer publishing to the broker at url. An empty url
// disables publishing.
func New(url, from string) *Mailer {
	return &Mailer{url: url, from: from}
}

// Enabled reports whether the mailer has a broker configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.url != ""
}

// SendOTP enqueues a verification-code email.
func (m *Mailer) SendOTP(ctx context.Context, to, code string) error {
	return m.publish(ctx, Job{
		Template: TemplateOTP,
		To:       to,
		Vars:     map[string]string{"code": code},
	})
}

// SendContactNotice enqueues an admin notification for a contact-form submission.
func (m *Mailer) SendContactNotice(ctx context.Context, to, fromName, reference string) error {
	return m.publish(ctx, Job{
		Template: TemplateContactNotice,
		To:       to,
		Vars:     map[string]string{"from_name": fromName, "reference": reference},
	})
}

// publish opens a short-lived connection per job. Throughput here is a few
// messages a day, so connection reuse is not worth the reconnect handling.
func (m *Mailer) publish(ctx context.Context, job Job) error {
	if !m.Enabled() {
		middleware.MailPublishes.WithLabelValues(job.Template, "dropped").Inc()
		return nil
	}

	job.From = m.from
	job.QueuedAt = time.Now().UTC()

	conn, err := amqp.Dial(m.url)
	if err != nil {
		return m.fail(ctx, job, "dial", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return m.fail(ctx, job, "channel", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so jobs survive broker restarts.
	if _, err := ch.QueueDeclare(mailQueue, true, false, false, false, nil); err != nil {
		return m.fail(ctx, job, "declare", err)
	}

	body, err := json.Marshal(job)
	if err != nil {
		return m.fail(ctx, job, "marshal", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    job.QueuedAt,
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", mailQueue, false, false, pub); err != nil {
		return m.fail(ctx, job, "publish", err)
	}

	middleware.MailPublishes.WithLabelValues(job.Template, "ok").Inc()
	return nil
}

func (m *Mailer) fail(ctx context.Context, job Job, stage string, err error) error {
	middleware.MailPublishes.WithLabelValues(job.Template, "error").Inc()
	middleware.Logger.WarnContext(ctx, "mail enqueue failed",
		slog.String("template", job.Template),
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	return err
}
