package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/tutoring-api/internal/models"
)

// LessonRepository manages persistence for recurring lesson series.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

const seriesJoinColumns = `ls.id, ls.teacher_id, ls.student_id, ls.day_of_week, ls.start_time, ls.end_time,
        ls.start_date, ls.end_date, ls.created_at,
        (st.name || ' ' || st.surname) AS student_name,
        COALESCE(te.subject, '') AS teacher_subject`

// Create stores a new series and returns its generated identifier.
func (r *LessonRepository) Create(ctx context.Context, s models.LessonSeries) (int64, error) {
	const query = `INSERT INTO lesson_series (teacher_id, student_id, day_of_week, start_time, end_time, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	err := r.db.GetContext(ctx, &id, query,
		s.TeacherID, s.StudentID, s.DayOfWeek, s.StartTime, s.EndTime, s.StartDate, s.EndDate)
	if err != nil {
		return 0, fmt.Errorf("insert lesson series: %w", err)
	}
	return id, nil
}

// FindByID fetches one series by identifier.
func (r *LessonRepository) FindByID(ctx context.Context, id int64) (*models.LessonSeries, error) {
	const query = `SELECT id, teacher_id, student_id, day_of_week, start_time, end_time, start_date, end_date, created_at
        FROM lesson_series WHERE id = $1 LIMIT 1`
	var s models.LessonSeries
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson series by id: %w", err)
	}
	return &s, nil
}

// ListByTeacher returns every series taught by the teacher, with the
// student's display name attached for calendar titles.
func (r *LessonRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.LessonSeries, error) {
	const query = `SELECT ` + seriesJoinColumns + `
        FROM lesson_series ls
        JOIN users st ON st.id = ls.student_id
        JOIN users te ON te.id = ls.teacher_id
        WHERE ls.teacher_id = $1
        ORDER BY ls.id`
	var out []models.LessonSeries
	if err := r.db.SelectContext(ctx, &out, query, teacherID); err != nil {
		return nil, fmt.Errorf("list lesson series by teacher: %w", err)
	}
	return out, nil
}

// ListByStudent returns every series attended by the student, with the
// teacher's subject attached for calendar titles.
func (r *LessonRepository) ListByStudent(ctx context.Context, studentID string) ([]models.LessonSeries, error) {
	const query = `SELECT ` + seriesJoinColumns + `
        FROM lesson_series ls
        JOIN users st ON st.id = ls.student_id
        JOIN users te ON te.id = ls.teacher_id
        WHERE ls.student_id = $1
        ORDER BY ls.id`
	var out []models.LessonSeries
	if err := r.db.SelectContext(ctx, &out, query, studentID); err != nil {
		return nil, fmt.Errorf("list lesson series by student: %w", err)
	}
	return out, nil
}

// Delete removes a series. Deleting an absent identifier is a no-op so the
// operation stays idempotent; the affected count lets callers distinguish.
func (r *LessonRepository) Delete(ctx context.Context, id int64) (int64, error) {
	const query = `DELETE FROM lesson_series WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete lesson series: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete lesson series rows affected: %w", err)
	}
	return affected, nil
}
