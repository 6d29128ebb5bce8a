package notifications

import "time"

// Action is an optional call-to-action attached to a notification.
type Action struct {
	Label string `json:"label" bson:"label"`
	URL   string `json:"url" bson:"url"`
}

// Notification is a per-user dashboard notification. Ownership is strict:
// no operation ever crosses user boundaries.
type Notification struct {
	NotificationID string    `json:"notificationId" bson:"notification_id"`
	UserID         string    `json:"userId" bson:"user_id"`
	Type           string    `json:"type" bson:"type"`
	Title          string    `json:"title" bson:"title"`
	Message        string    `json:"message" bson:"message"`
	Read           bool      `json:"read" bson:"read"`
	Actions        []Action  `json:"actions" bson:"actions"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at"`
}

// ListFilter narrows a notification listing.
type ListFilter struct {
	UnreadOnly bool
	Since      *time.Time
	Limit      int
}
