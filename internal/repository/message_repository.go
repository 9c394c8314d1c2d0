package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/tutoring-api/internal/models"
)

// MessageRepository manages persistence for pairwise chat threads.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository constructs a MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create stores a new message and returns it with the generated id.
func (r *MessageRepository) Create(ctx context.Context, msg models.Message) (*models.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO messages (id, sender_id, receiver_id, sender_role, receiver_role, content, created_at)
        VALUES (:id, :sender_id, :receiver_id, :sender_role, :receiver_role, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

// Thread returns the full conversation between two participants in
// chronological order, regardless of direction.
func (r *MessageRepository) Thread(ctx context.Context, firstID, secondID string) ([]models.Message, error) {
	const query = `SELECT id, sender_id, receiver_id, sender_role, receiver_role, content, created_at
        FROM messages
        WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
        ORDER BY created_at ASC`
	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, query, firstID, secondID); err != nil {
		return nil, fmt.Errorf("load message thread: %w", err)
	}
	return msgs, nil
}
