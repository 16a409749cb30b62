package models

import "time"

const (
	NotifTypeTransfer = "transfer"
	NotifTypeOverride = "override"
)

type Notification struct {
	ID          int64     `json:"id"`
	SenderID    *int64    `json:"sender_id"`
	RecipientID int64     `json:"recipient_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
