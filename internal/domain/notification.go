package domain

import "time"

// NotificationPriority orders notifications in the shell.
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is an in-memory, session-scoped notice shown to the advisor.
type Notification struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"`
	Title    string               `json:"title"`
	Message  string               `json:"message"`
	Priority NotificationPriority `json:"priority"`
	Read     bool                 `json:"read"`
	Time     time.Time            `json:"time"`
}
