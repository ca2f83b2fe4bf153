package services

import (
	"context"
	"log/slog"

	"declaration-service/internal/models"
)

// NotificationSink delivers user-facing notifications. Delivery is best
// effort: callers log failures and carry on.
type NotificationSink interface {
	Notify(ctx context.Context, userID string, n models.Notification) error
}

// LogNotificationSink writes notifications to the structured log. It is used
// when no message broker is configured.
type LogNotificationSink struct{}

func (LogNotificationSink) Notify(_ context.Context, userID string, n models.Notification) error {
	slog.Info("notification",
		"user_id", userID,
		"severity", n.Severity,
		"title", n.Title,
		"description", n.Description)
	return nil
}
