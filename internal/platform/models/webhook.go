package models

import "time"

// Webhook is an external delivery endpoint. NotificationTypes is a set;
// order only matters for display.
type Webhook struct {
	ID                string
	Name              string
	URL               string
	Secret            string
	NotificationTypes []string
	IsActive          bool
	IsDefault         bool
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SubscribesTo reports whether the webhook's type set contains typ.
func (w *Webhook) SubscribesTo(typ string) bool {
	for _, t := range w.NotificationTypes {
		if t == typ {
			return true
		}
	}
	return false
}
