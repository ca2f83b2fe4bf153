package models

// Notification is a user-facing message emitted at each wizard decision point.
type Notification struct {
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

func NewNotification(title, description string) Notification {
	return Notification{Severity: SeverityDefault, Title: title, Description: description}
}

func NewDestructiveNotification(title, description string) Notification {
	return Notification{Severity: SeverityDestructive, Title: title, Description: description}
}
