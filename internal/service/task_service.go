package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorhub/tutoring-api/internal/dto"
	"github.com/tutorhub/tutoring-api/internal/models"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/mailer"
)

type taskRepository interface {
	Create(ctx context.Context, task models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Task, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Task, error)
	Submit(ctx context.Context, id string, answer string, attachment *string, submittedAt time.Time) error
	Grade(ctx context.Context, id string, points int) error
}

type fileStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type urlSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string) (resourceID, relPath string, expiresAt time.Time, err error)
}

// TaskService covers the assignment lifecycle: a teacher issues a task with
// an optional attachment, the student submits an answer, the teacher grades
// it. Attachments are fetched through short-lived signed tokens.
type TaskService struct {
	repo          taskRepository
	users         lessonUserRepository
	store         fileStore
	signer        urlSigner
	notifications notifier
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewTaskService constructs a TaskService.
func NewTaskService(repo taskRepository, users lessonUserRepository, store fileStore, signer urlSigner, notifications notifier, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TaskService{
		repo:          repo,
		users:         users,
		store:         store,
		signer:        signer,
		notifications: notifications,
		validator:     validate,
		logger:        logger,
	}
}

// Assign issues a new task to a student. attachmentName may be empty when no
// file was uploaded.
func (s *TaskService) Assign(ctx context.Context, teacherID string, req dto.AssignTaskRequest, attachmentName string, attachment io.Reader) (*dto.TaskView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}

	dueDate, err := time.Parse(time.DateOnly, req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "due_date must use YYYY-MM-DD")
	}

	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent || !student.Approved {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tasks can only be assigned to approved students")
	}

	task := models.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		MaxPoints:   req.MaxPoints,
		StudentID:   req.StudentID,
		TeacherID:   teacherID,
	}

	if attachment != nil && attachmentName != "" {
		stored, err := s.saveAttachment(task.ID, "teacher", attachmentName, attachment)
		if err != nil {
			return nil, err
		}
		task.TeacherAttachment = &stored
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		if task.TeacherAttachment != nil {
			if cleanupErr := s.store.Delete(*task.TeacherAttachment); cleanupErr != nil {
				s.logger.Warn("failed to remove orphaned attachment", zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store task")
	}

	s.logger.Info("task assigned",
		zap.String("task_id", created.ID),
		zap.String("teacher_id", teacherID),
		zap.String("student_id", req.StudentID))

	if s.notifications != nil {
		s.notifications.Notify(mailer.Message{
			ToName:    student.FullName(),
			ToAddress: student.Email,
			Subject:   "New task: " + created.Title,
			Body: fmt.Sprintf("Hello %s, you received a new task due %s.",
				student.Name, created.DueDate.Format(time.DateOnly)),
		})
	}

	view := s.view(*created)
	return &view, nil
}

// Submit records the student's answer and optional attachment. Only the
// assigned student may submit, and resubmission replaces the earlier answer.
func (s *TaskService) Submit(ctx context.Context, taskID, studentID string, req dto.SubmitTaskRequest, attachmentName string, attachment io.Reader) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.StudentID != studentID {
		return appErrors.Clone(appErrors.ErrForbidden, "task belongs to another student")
	}

	var stored *string
	if attachment != nil && attachmentName != "" {
		name, err := s.saveAttachment(task.ID, "student", attachmentName, attachment)
		if err != nil {
			return err
		}
		stored = &name
	}

	if err := s.repo.Submit(ctx, taskID, req.Answer, stored, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store submission")
	}

	s.logger.Info("task submitted",
		zap.String("task_id", taskID),
		zap.String("student_id", studentID))
	return nil
}

// Grade awards points for a submitted task. Only the issuing teacher may
// grade, the task must have a submission, and points cannot exceed the
// task's maximum.
func (s *TaskService) Grade(ctx context.Context, taskID, teacherID string, req dto.GradeTaskRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "task was issued by another teacher")
	}
	if !task.Submitted {
		return appErrors.Clone(appErrors.ErrConflict, "task has not been submitted yet")
	}
	if *req.Points > task.MaxPoints {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("points cannot exceed the task maximum of %d", task.MaxPoints))
	}

	if err := s.repo.Grade(ctx, taskID, *req.Points); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store grade")
	}

	s.logger.Info("task graded",
		zap.String("task_id", taskID),
		zap.Int("points", *req.Points))
	return nil
}

// ListForStudent returns the student's tasks with signed attachment URLs.
func (s *TaskService) ListForStudent(ctx context.Context, studentID string) ([]dto.TaskView, error) {
	tasks, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return s.views(tasks), nil
}

// ListForTeacher returns the tasks the teacher issued.
func (s *TaskService) ListForTeacher(ctx context.Context, teacherID string) ([]dto.TaskView, error) {
	tasks, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return s.views(tasks), nil
}

// OpenAttachment validates a signed download token and returns the file
// handle plus the original file name.
func (s *TaskService) OpenAttachment(ctx context.Context, token string) (*os.File, string, error) {
	taskID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid or expired")
	}

	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, "", err
	}
	if !attachmentBelongs(task, relPath) {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "attachment does not belong to this task")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "attachment file missing")
	}
	return file, path.Base(relPath), nil
}

func (s *TaskService) findTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	return task, nil
}

func (s *TaskService) saveAttachment(taskID, kind, original string, r io.Reader) (string, error) {
	name := fmt.Sprintf("tasks/%s/%s-%s", taskID, kind, path.Base(original))
	stored, err := s.store.SaveStream(name, r)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
	}
	return stored, nil
}

func (s *TaskService) views(tasks []models.Task) []dto.TaskView {
	out := make([]dto.TaskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, s.view(t))
	}
	return out
}

func (s *TaskService) view(t models.Task) dto.TaskView {
	view := dto.TaskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		IssuedAt:      t.IssuedAt,
		DueDate:       t.DueDate,
		MaxPoints:     t.MaxPoints,
		EarnedPoints:  t.EarnedPoints,
		StudentID:     t.StudentID,
		TeacherID:     t.TeacherID,
		StudentAnswer: t.StudentAnswer,
		Submitted:     t.Submitted,
		SubmittedAt:   t.SubmittedAt,
	}
	if t.TeacherAttachment != nil {
		view.TeacherAttachmentURL = s.signedURL(t.ID, *t.TeacherAttachment)
	}
	if t.StudentAttachment != nil {
		view.StudentAttachmentURL = s.signedURL(t.ID, *t.StudentAttachment)
	}
	return view
}

func (s *TaskService) signedURL(taskID, relPath string) string {
	if s.signer == nil {
		return ""
	}
	token, _, err := s.signer.Generate(taskID, relPath)
	if err != nil {
		s.logger.Warn("failed to sign attachment url",
			zap.String("task_id", taskID), zap.Error(err))
		return ""
	}
	return "/api/v1/files/" + token
}

func attachmentBelongs(task *models.Task, relPath string) bool {
	if task.TeacherAttachment != nil && *task.TeacherAttachment == relPath {
		return true
	}
	if task.StudentAttachment != nil && *task.StudentAttachment == relPath {
		return true
	}
	return false
}
