package event

const PushNotiQueue = "push_noti_events"

// NotificationEventPushModel is the message consumed by the notification
// service: { lstUserIds?: string[], title: string, body: string, data?: any }.
type NotificationEventPushModel struct {
	LstUserIds []string       `json:"lstUserIds,omitempty"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Data       map[string]any `json:"data,omitempty"`
}
