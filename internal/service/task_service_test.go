package service

import (
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/tutoring-api/internal/dto"
	"github.com/tutorhub/tutoring-api/internal/models"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
)

type mockTaskRepo struct {
	tasks     map[string]*models.Task
	submitted []string
	graded    map[string]int
}

func (m *mockTaskRepo) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	if m.tasks == nil {
		m.tasks = map[string]*models.Task{}
	}
	task.IssuedAt = time.Now().UTC()
	cp := task
	m.tasks[task.ID] = &cp
	return &cp, nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if t, ok := m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Task, error) {
	var out []models.Task
	for _, t := range m.tasks {
		if t.StudentID == studentID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Task, error) {
	var out []models.Task
	for _, t := range m.tasks {
		if t.TeacherID == teacherID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockTaskRepo) Submit(ctx context.Context, id string, answer string, attachment *string, submittedAt time.Time) error {
	m.submitted = append(m.submitted, id)
	if t, ok := m.tasks[id]; ok {
		t.StudentAnswer = &answer
		t.StudentAttachment = attachment
		t.Submitted = true
		t.SubmittedAt = &submittedAt
		t.EarnedPoints = nil
	}
	return nil
}

func (m *mockTaskRepo) Grade(ctx context.Context, id string, points int) error {
	if m.graded == nil {
		m.graded = map[string]int{}
	}
	m.graded[id] = points
	if t, ok := m.tasks[id]; ok {
		t.EarnedPoints = &points
	}
	return nil
}

type mockStore struct {
	saved map[string]string
}

func (m *mockStore) SaveStream(filename string, r io.Reader) (string, error) {
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	content, _ := io.ReadAll(r)
	m.saved[filename] = string(content)
	return filename, nil
}

func (m *mockStore) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (m *mockStore) Delete(filename string) error {
	delete(m.saved, filename)
	return nil
}

type mockSigner struct{}

func (mockSigner) Generate(resourceID, relPath string) (string, time.Time, error) {
	return resourceID + ":" + relPath, time.Now().Add(time.Minute), nil
}

func (mockSigner) Parse(token string) (string, string, time.Time, error) {
	parts := strings.SplitN(token, ":", 2)
	return parts[0], parts[1], time.Now().Add(time.Minute), nil
}

func newTaskService(repo *mockTaskRepo, users *mockUserRepo, store *mockStore) *TaskService {
	return NewTaskService(repo, users, store, mockSigner{}, nil, validator.New(), zap.NewNop())
}

func validAssignRequest() dto.AssignTaskRequest {
	return dto.AssignTaskRequest{
		Title:       "Fractions worksheet",
		Description: "Solve all ten problems",
		DueDate:     "2025-09-15",
		MaxPoints:   20,
		StudentID:   "s1",
	}
}

func TestAssignTaskWithAttachment(t *testing.T) {
	repo := &mockTaskRepo{}
	users := &mockUserRepo{users: map[string]*models.User{"s1": approvedStudent()}}
	store := &mockStore{}
	svc := newTaskService(repo, users, store)

	view, err := svc.Assign(context.Background(), "t1", validAssignRequest(),
		"worksheet.pdf", strings.NewReader("pdf-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "t1", view.TeacherID)
	assert.NotEmpty(t, view.TeacherAttachmentURL)
	require.Len(t, store.saved, 1)
	for name, content := range store.saved {
		assert.Contains(t, name, "teacher-worksheet.pdf")
		assert.Equal(t, "pdf-bytes", content)
	}
}

func TestAssignTaskUnknownStudent(t *testing.T) {
	svc := newTaskService(&mockTaskRepo{}, &mockUserRepo{}, &mockStore{})

	_, err := svc.Assign(context.Background(), "t1", validAssignRequest(), "", nil)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSubmitThenGrade(t *testing.T) {
	repo := &mockTaskRepo{}
	users := &mockUserRepo{users: map[string]*models.User{"s1": approvedStudent()}}
	svc := newTaskService(repo, users, &mockStore{})

	view, err := svc.Assign(context.Background(), "t1", validAssignRequest(), "", nil)
	require.NoError(t, err)

	err = svc.Submit(context.Background(), view.ID, "s1",
		dto.SubmitTaskRequest{Answer: "my answers"}, "", nil)
	require.NoError(t, err)

	points := 18
	err = svc.Grade(context.Background(), view.ID, "t1", dto.GradeTaskRequest{Points: &points})
	require.NoError(t, err)
	assert.Equal(t, 18, repo.graded[view.ID])
}

func TestSubmitWrongStudent(t *testing.T) {
	repo := &mockTaskRepo{}
	users := &mockUserRepo{users: map[string]*models.User{"s1": approvedStudent()}}
	svc := newTaskService(repo, users, &mockStore{})

	view, err := svc.Assign(context.Background(), "t1", validAssignRequest(), "", nil)
	require.NoError(t, err)

	err = svc.Submit(context.Background(), view.ID, "s2",
		dto.SubmitTaskRequest{Answer: "not mine"}, "", nil)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestGradeBeforeSubmission(t *testing.T) {
	repo := &mockTaskRepo{}
	users := &mockUserRepo{users: map[string]*models.User{"s1": approvedStudent()}}
	svc := newTaskService(repo, users, &mockStore{})

	view, err := svc.Assign(context.Background(), "t1", validAssignRequest(), "", nil)
	require.NoError(t, err)

	points := 10
	err = svc.Grade(context.Background(), view.ID, "t1", dto.GradeTaskRequest{Points: &points})

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestGradeExceedsMaximum(t *testing.T) {
	repo := &mockTaskRepo{}
	users := &mockUserRepo{users: map[string]*models.User{"s1": approvedStudent()}}
	svc := newTaskService(repo, users, &mockStore{})

	view, err := svc.Assign(context.Background(), "t1", validAssignRequest(), "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Submit(context.Background(), view.ID, "s1",
		dto.SubmitTaskRequest{Answer: "done"}, "", nil))

	points := 50
	err = svc.Grade(context.Background(), view.ID, "t1", dto.GradeTaskRequest{Points: &points})

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestResubmissionClearsGrade(t *testing.T) {
	repo := &mockTaskRepo{}
	users := &mockUserRepo{users: map[string]*models.User{"s1": approvedStudent()}}
	svc := newTaskService(repo, users, &mockStore{})

	view, err := svc.Assign(context.Background(), "t1", validAssignRequest(), "", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Submit(context.Background(), view.ID, "s1",
		dto.SubmitTaskRequest{Answer: "v1"}, "", nil))
	points := 12
	require.NoError(t, svc.Grade(context.Background(), view.ID, "t1", dto.GradeTaskRequest{Points: &points}))

	require.NoError(t, svc.Submit(context.Background(), view.ID, "s1",
		dto.SubmitTaskRequest{Answer: "v2"}, "", nil))

	task, err := repo.FindByID(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Nil(t, task.EarnedPoints)
	assert.Equal(t, "v2", *task.StudentAnswer)
}
