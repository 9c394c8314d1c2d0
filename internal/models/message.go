package models

import "time"

// Message is one entry in the pairwise student/teacher thread.
type Message struct {
	ID           string    `db:"id" json:"id"`
	SenderID     string    `db:"sender_id" json:"sender_id"`
	ReceiverID   string    `db:"receiver_id" json:"receiver_id"`
	SenderRole   UserRole  `db:"sender_role" json:"sender_role"`
	ReceiverRole UserRole  `db:"receiver_role" json:"receiver_role"`
	Content      string    `db:"content" json:"content"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
