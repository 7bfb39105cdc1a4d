package models

import "time"

// NotificationType classifies a relay event.
type NotificationType string

const (
	NotifyOrder    NotificationType = "order"
	NotifyDelivery NotificationType = "delivery"
	NotifyPayment  NotificationType = "payment"
	NotifySystem   NotificationType = "system"
)

// Notification is the event shape distributed by the relay to role views.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	TitleAr   string           `json:"title_ar"`
	Message   string           `json:"message"`
	MessageAr string           `json:"message_ar"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	ActionURL string           `json:"action_url,omitempty"`
	// OrderID lets views filter events for the records they project.
	OrderID string `json:"order_id,omitempty"`
}
