package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutorhub/tutoring-api/internal/dto"
	"github.com/tutorhub/tutoring-api/internal/models"
	"github.com/tutorhub/tutoring-api/internal/schedule"
	"github.com/tutorhub/tutoring-api/pkg/config"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
	"github.com/tutorhub/tutoring-api/pkg/mailer"
)

const eventTimeLayout = "2006-01-02T15:04:05"

type lessonRepository interface {
	Create(ctx context.Context, s models.LessonSeries) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.LessonSeries, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.LessonSeries, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.LessonSeries, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type lessonUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type lessonCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// LessonService implements the recurring lesson calendar: expanding series
// into events for a queried window, creating new series after conflict
// validation, and deleting series through instance identifiers.
type LessonService struct {
	repo          lessonRepository
	users         lessonUserRepository
	cache         lessonCache
	notifications notifier
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           config.LessonsConfig
}

// NewLessonService constructs a LessonService.
func NewLessonService(repo lessonRepository, users lessonUserRepository, cache lessonCache, notifications notifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg config.LessonsConfig) *LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LessonService{
		repo:          repo,
		users:         users,
		cache:         cache,
		notifications: notifications,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
	}
}

// QueryEvents expands every series visible to the subject into concrete
// events inside the closed window [from, to], sorted by start timestamp.
// Teachers see the student's name as the title; students see the teacher's
// subject. Results are cached per subject and window.
func (s *LessonService) QueryEvents(ctx context.Context, subjectID string, role models.UserRole, from, to time.Time) ([]dto.CalendarEvent, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, "window end precedes its start")
	}
	if s.cfg.MaxWindowDays > 0 {
		if int(to.Sub(from).Hours()/24) > s.cfg.MaxWindowDays {
			return nil, appErrors.Clone(appErrors.ErrInvalidRange,
				fmt.Sprintf("window exceeds %d days", s.cfg.MaxWindowDays))
		}
	}

	key := fmt.Sprintf("lessons:events:%s:%s:%s", subjectID,
		from.Format(time.DateOnly), to.Format(time.DateOnly))
	if s.cache != nil {
		var cached []dto.CalendarEvent
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("calendar cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	var (
		series []models.LessonSeries
		err    error
	)
	switch role {
	case models.RoleTeacher:
		series, err = s.repo.ListByTeacher(ctx, subjectID)
	case models.RoleStudent:
		series, err = s.repo.ListByStudent(ctx, subjectID)
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "calendar is only available to teachers and students")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson series")
	}

	events := make([]dto.CalendarEvent, 0)
	for ev := range schedule.ExpandAll(series, from, to) {
		title := ev.Series.StudentName
		if role == models.RoleStudent {
			title = ev.Series.TeacherSubject
		}
		events = append(events, dto.CalendarEvent{
			ID:    ev.ID(),
			Title: title,
			Start: ev.Start.Format(eventTimeLayout),
			End:   ev.End.Format(eventTimeLayout),
		})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start == events[j].Start {
			return events[i].ID < events[j].ID
		}
		return events[i].Start < events[j].Start
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, events, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("calendar cache write failed", zap.Error(err))
		}
	}
	return events, nil
}

// CreateSeries validates the candidate, runs the conflict check against the
// teacher's stored series, and persists the series only when the conflict
// set is empty. On conflict the full conflicting set is returned inside a
// *models.SchedulingConflictError and nothing is written.
func (s *LessonService) CreateSeries(ctx context.Context, teacherID, studentID string, req dto.CreateLessonSeriesRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	candidate, err := s.buildCandidate(teacherID, studentID, req)
	if err != nil {
		return 0, err
	}

	if err := schedule.Validate(candidate); err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidTimeRange), errors.Is(err, schedule.ErrInvalidDateRange):
			return 0, appErrors.Clone(appErrors.ErrInvalidRange, err.Error())
		default:
			return 0, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
	}

	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent || !student.Approved {
		return 0, appErrors.Clone(appErrors.ErrValidation, "lessons can only be assigned to approved students")
	}

	existing, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing series")
	}
	if conflicts := schedule.Conflicts(candidate, existing); len(conflicts) > 0 {
		return 0, &models.SchedulingConflictError{
			Message:   appErrors.ErrSchedulingConflict.Message,
			Conflicts: conflicts,
		}
	}

	id, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store lesson series")
	}

	s.invalidateCalendars(ctx, teacherID, studentID)
	s.logger.Info("lesson series created",
		zap.Int64("series_id", id),
		zap.String("teacher_id", teacherID),
		zap.String("student_id", studentID))

	if s.notifications != nil {
		s.notifications.Notify(mailer.Message{
			ToName:    student.FullName(),
			ToAddress: student.Email,
			Subject:   "New recurring lesson scheduled",
			Body: fmt.Sprintf("Hello %s, a weekly lesson was scheduled for you from %s to %s.",
				student.Name,
				candidate.StartDate.Format(time.DateOnly),
				candidate.EndDate.Format(time.DateOnly)),
		})
	}
	return id, nil
}

// DeleteInstance parses an event identifier produced by QueryEvents and
// removes the whole underlying series. Deleting an already removed series
// succeeds so repeated clicks stay harmless.
func (s *LessonService) DeleteInstance(ctx context.Context, eventID, requesterID string, role models.UserRole) error {
	seriesID, _, err := schedule.ParseEventID(eventID)
	if err != nil {
		return appErrors.Clone(appErrors.ErrMalformedIdentifier, "event identifier does not parse")
	}

	series, err := s.repo.FindByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson series")
	}

	if role != models.RoleAdmin && series.TeacherID != requesterID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the owning teacher can remove a lesson series")
	}

	if _, err := s.repo.Delete(ctx, seriesID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson series")
	}

	s.invalidateCalendars(ctx, series.TeacherID, series.StudentID)
	s.logger.Info("lesson series deleted",
		zap.Int64("series_id", seriesID),
		zap.String("requester_id", requesterID))
	return nil
}

func (s *LessonService) buildCandidate(teacherID, studentID string, req dto.CreateLessonSeriesRequest) (models.LessonSeries, error) {
	startTime, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return models.LessonSeries{}, appErrors.Clone(appErrors.ErrValidation, "start_time must use HH:MM")
	}
	endTime, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return models.LessonSeries{}, appErrors.Clone(appErrors.ErrValidation, "end_time must use HH:MM")
	}
	startDate, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return models.LessonSeries{}, appErrors.Clone(appErrors.ErrValidation, "start_date must use YYYY-MM-DD")
	}
	endDate, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return models.LessonSeries{}, appErrors.Clone(appErrors.ErrValidation, "end_date must use YYYY-MM-DD")
	}

	return models.LessonSeries{
		TeacherID: teacherID,
		StudentID: studentID,
		DayOfWeek: *req.DayOfWeek,
		StartTime: startTime,
		EndTime:   endTime,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

func (s *LessonService) invalidateCalendars(ctx context.Context, teacherID, studentID string) {
	if s.cache == nil {
		return
	}
	for _, id := range []string{teacherID, studentID} {
		if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("lessons:events:%s:*", id)); err != nil {
			s.logger.Warn("calendar cache invalidation failed",
				zap.String("subject_id", id), zap.Error(err))
		}
	}
}
