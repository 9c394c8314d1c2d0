package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhub/tutoring-api/internal/dto"
	"github.com/tutorhub/tutoring-api/internal/models"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
)

type messageRepository interface {
	Create(ctx context.Context, msg models.Message) (*models.Message, error)
	Thread(ctx context.Context, firstID, secondID string) ([]models.Message, error)
}

// MessageService implements the pairwise student/teacher chat. A thread is
// identified by its two participants; either side may read and post.
type MessageService struct {
	repo      messageRepository
	users     lessonUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageRepository, users lessonUserRepository, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{repo: repo, users: users, validator: validate, logger: logger}
}

// Thread returns the full conversation between the requester and the peer
// in chronological order. Only participants may read it.
func (s *MessageService) Thread(ctx context.Context, requesterID string, requesterRole models.UserRole, peerID string) ([]models.Message, error) {
	if requesterID == peerID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot open a thread with yourself")
	}
	if _, err := s.peer(ctx, requesterRole, peerID); err != nil {
		return nil, err
	}

	msgs, err := s.repo.Thread(ctx, requesterID, peerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load thread")
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// Send posts one message from the requester to the peer.
func (s *MessageService) Send(ctx context.Context, requesterID string, requesterRole models.UserRole, peerID string, req dto.SendMessageRequest) (*models.Message, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if requesterID == peerID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot message yourself")
	}

	peer, err := s.peer(ctx, requesterRole, peerID)
	if err != nil {
		return nil, err
	}

	msg, err := s.repo.Create(ctx, models.Message{
		SenderID:     requesterID,
		ReceiverID:   peerID,
		SenderRole:   requesterRole,
		ReceiverRole: peer.Role,
		Content:      req.Content,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store message")
	}

	s.logger.Debug("message sent",
		zap.String("sender_id", requesterID),
		zap.String("receiver_id", peerID))
	return msg, nil
}

// peer loads the counterpart and checks the student/teacher pairing: a
// student talks to teachers and a teacher talks to students.
func (s *MessageService) peer(ctx context.Context, requesterRole models.UserRole, peerID string) (*models.User, error) {
	peer, err := s.users.FindByID(ctx, peerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conversation partner not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conversation partner")
	}

	validPair := (requesterRole == models.RoleStudent && peer.Role == models.RoleTeacher) ||
		(requesterRole == models.RoleTeacher && peer.Role == models.RoleStudent)
	if !validPair {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "threads connect one student and one teacher")
	}
	return peer, nil
}
