package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tutorhub/tutoring-api/internal/models"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/mailer"
)

type adminUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListPending(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type notifier interface {
	Notify(msg mailer.Message)
}

// AdminService covers account moderation: listing registrations awaiting
// approval, confirming them, and rejecting them.
type AdminService struct {
	repo          adminUserRepository
	notifications notifier
	logger        *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminUserRepository, notifications notifier, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{repo: repo, notifications: notifications, logger: logger}
}

// ListPending returns accounts awaiting approval.
func (s *AdminService) ListPending(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending accounts")
	}
	return users, nil
}

// ListByRole returns approved accounts with the given role, used when a
// teacher picks a student to assign work or lessons to.
func (s *AdminService) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	if !role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}
	users, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}
	return users, nil
}

// Approve confirms a pending account and emails the owner.
func (s *AdminService) Approve(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if user.Approved {
		return nil
	}

	if err := s.repo.Approve(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve account")
	}

	s.logger.Info("account approved", zap.String("user_id", userID))
	if s.notifications != nil {
		s.notifications.Notify(mailer.Message{
			ToName:    user.FullName(),
			ToAddress: user.Email,
			Subject:   "Your account has been approved",
			Body:      fmt.Sprintf("Hello %s, your account is now active and you can sign in.", user.Name),
		})
	}
	return nil
}

// Reject removes a pending registration.
func (s *AdminService) Reject(ctx context.Context, userID string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	if user.Approved {
		return appErrors.Clone(appErrors.ErrConflict, "cannot reject an approved account")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete account")
	}
	s.logger.Info("registration rejected", zap.String("user_id", userID))
	return nil
}
