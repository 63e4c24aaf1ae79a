package models

import "time"

// Message is a persisted chat message between two users. There is no
// conversation entity; conversations are derived at query time by grouping
// on the counterpart id.
type Message struct {
	ID         int       `json:"id" db:"id"`
	SenderID   int       `json:"sender_id" db:"sender_id"`
	ReceiverID int       `json:"receiver_id" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SendMessageRequest is the validated insert shape for a Message.
type SendMessageRequest struct {
	ReceiverID int    `json:"receiver_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,min=1,max=2000"`
}

// Conversation summarizes a message thread with one counterpart.
type Conversation struct {
	Counterpart *UserProfile `json:"counterpart"`
	LastMessage *Message     `json:"last_message"`
	UnreadCount int          `json:"unread_count"`
}
