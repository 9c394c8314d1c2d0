package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorhub/tutoring-api/pkg/config"
	"github.com/tutorhub/tutoring-api/pkg/jobs"
	"github.com/tutorhub/tutoring-api/pkg/mailer"
)

// NotificationService delivers email notifications through a background
// worker queue so request handlers never block on the mail provider.
type NotificationService struct {
	queue  *jobs.Queue
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewNotificationService wires the mailer behind an in-memory queue. A nil
// mailer disables delivery while keeping Notify calls cheap no-ops.
func NewNotificationService(m mailer.Mailer, cfg config.NotificationsConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{mailer: m, logger: logger}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues one email. Failures to enqueue are logged, not returned,
// because notifications are best-effort and must never fail the request
// that triggered them.
func (s *NotificationService) Notify(msg mailer.Message) {
	if s.mailer == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "email",
		Payload: msg,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailer.Message)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return err
	}
	s.logger.Debug("notification delivered",
		zap.String("job_id", job.ID),
		zap.String("to", msg.ToAddress))
	return nil
}
