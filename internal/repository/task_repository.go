package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/tutoring-api/internal/models"
)

// TaskRepository manages persistence for assignments.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs a TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, description, issued_at, due_date, max_points, earned_points,
        student_id, teacher_id, student_answer, teacher_attachment, student_attachment, submitted, submitted_at`

// Create inserts a new assignment and returns it with the generated id.
func (r *TaskRepository) Create(ctx context.Context, task models.Task) (*models.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.IssuedAt = time.Now().UTC()

	const query = `INSERT INTO tasks (id, title, description, issued_at, due_date, max_points, student_id, teacher_id, teacher_attachment)
        VALUES (:id, :title, :description, :issued_at, :due_date, :max_points, :student_id, :teacher_id, :teacher_attachment)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &task, nil
}

// FindByID fetches a single assignment.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 LIMIT 1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task by id: %w", err)
	}
	return &task, nil
}

// ListByStudent returns assignments issued to the student, most recent first.
func (r *TaskRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE student_id = $1 ORDER BY issued_at DESC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, studentID); err != nil {
		return nil, fmt.Errorf("list tasks by student: %w", err)
	}
	return tasks, nil
}

// ListByTeacher returns assignments issued by the teacher, most recent first.
func (r *TaskRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE teacher_id = $1 ORDER BY issued_at DESC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, teacherID); err != nil {
		return nil, fmt.Errorf("list tasks by teacher: %w", err)
	}
	return tasks, nil
}

// ListGraded returns the student's graded assignments in grading order,
// used to build grade reports.
func (r *TaskRepository) ListGraded(ctx context.Context, studentID string) ([]models.Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks
        WHERE student_id = $1 AND earned_points IS NOT NULL ORDER BY due_date ASC`
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, studentID); err != nil {
		return nil, fmt.Errorf("list graded tasks: %w", err)
	}
	return tasks, nil
}

// Submit records the student's answer and optional attachment. Submitting
// again replaces the previous answer and clears any earlier grade.
func (r *TaskRepository) Submit(ctx context.Context, id string, answer string, attachment *string, submittedAt time.Time) error {
	const query = `UPDATE tasks SET student_answer = $2, student_attachment = $3,
        submitted = TRUE, submitted_at = $4, earned_points = NULL WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, answer, attachment, submittedAt); err != nil {
		return fmt.Errorf("submit task: %w", err)
	}
	return nil
}

// Grade stores the earned points for a submitted assignment.
func (r *TaskRepository) Grade(ctx context.Context, id string, points int) error {
	const query = `UPDATE tasks SET earned_points = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, points); err != nil {
		return fmt.Errorf("grade task: %w", err)
	}
	return nil
}
