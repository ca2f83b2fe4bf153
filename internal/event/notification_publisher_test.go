package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"declaration-service/internal/models"
)

type fakeChannel struct {
	declared   int
	published  []amqp.Publishing
	keys       []string
	publishErr error
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.declared++
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func TestNotify(t *testing.T) {
	ch := &fakeChannel{}
	p := &NotificationPublisher{channel: ch}

	n := models.NewDestructiveNotification("Satellite validation failed", "Potential deforestation detected.")
	require.NoError(t, p.Notify(context.Background(), "user-1", n))
	require.NoError(t, p.Notify(context.Background(), "user-1", models.NewNotification("Declaration submitted", "ok")))

	assert.Equal(t, 1, ch.declared)
	require.Len(t, ch.published, 2)
	assert.Equal(t, []string{PushNotiQueue, PushNotiQueue}, ch.keys)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var event NotificationEventPushModel
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &event))
	assert.Equal(t, []string{"user-1"}, event.LstUserIds)
	assert.Equal(t, "Satellite validation failed", event.Title)
	assert.Equal(t, "Potential deforestation detected.", event.Body)
	assert.Equal(t, "destructive", event.Data["severity"])

	assert.Equal(t, int64(2), p.GetMetrics()["messages_published"])
}

func TestNotify_PublishFailure(t *testing.T) {
	p := &NotificationPublisher{channel: &fakeChannel{publishErr: errors.New("channel closed")}}

	err := p.Notify(context.Background(), "", models.NewNotification("t", "d"))

	assert.Error(t, err)
	assert.Equal(t, int64(1), p.GetMetrics()["messages_failed"])
}
