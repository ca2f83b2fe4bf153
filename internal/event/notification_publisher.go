package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"declaration-service/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishChannel is the part of *amqp.Channel the publisher needs.
type publishChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// NotificationPublisher delivers wizard notifications to the push queue of
// the notification service.
type NotificationPublisher struct {
	channel publishChannel

	declareMu sync.Mutex
	declared  bool

	messagesPublished atomic.Int64
	messagesFailed    atomic.Int64
}

func NewNotificationPublisher(conn *RabbitMQConnection) *NotificationPublisher {
	return &NotificationPublisher{channel: conn.Channel}
}

func (p *NotificationPublisher) ensureQueue() error {
	p.declareMu.Lock()
	defer p.declareMu.Unlock()

	if p.declared {
		return nil
	}
	if _, err := p.channel.QueueDeclare(PushNotiQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	p.declared = true
	return nil
}

func (p *NotificationPublisher) PublishNotification(ctx context.Context, event NotificationEventPushModel) error {
	if err := p.ensureQueue(); err != nil {
		p.messagesFailed.Add(1)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, "", PushNotiQueue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		p.messagesFailed.Add(1)
		return fmt.Errorf("failed to publish notification event: %w", err)
	}

	p.messagesPublished.Add(1)
	slog.Debug("Notification event published", "queue", PushNotiQueue, "title", event.Title, "user_count", len(event.LstUserIds))
	return nil
}

// Notify sends one wizard notification to userID. The severity travels in
// the data map so the client can style it.
func (p *NotificationPublisher) Notify(ctx context.Context, userID string, n models.Notification) error {
	event := NotificationEventPushModel{
		Title: n.Title,
		Body:  n.Description,
		Data: map[string]any{
			"type":     "declaration_wizard",
			"severity": string(n.Severity),
		},
	}
	if userID != "" {
		event.LstUserIds = []string{userID}
	}
	return p.PublishNotification(ctx, event)
}

func (p *NotificationPublisher) GetMetrics() map[string]any {
	return map[string]any{
		"messages_published": p.messagesPublished.Load(),
		"messages_failed":    p.messagesFailed.Load(),
		"queue":              PushNotiQueue,
	}
}
