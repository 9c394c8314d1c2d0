package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/tutoring-api/internal/models"
)

func sampleSeries() models.LessonSeries {
	return models.LessonSeries{
		TeacherID: "t1",
		StudentID: "s1",
		DayOfWeek: 0,
		StartTime: time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(0, 1, 1, 11, 0, 0, 0, time.UTC),
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
	}
}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func seriesRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "teacher_id", "student_id", "day_of_week", "start_time", "end_time",
		"start_date", "end_date", "created_at", "student_name", "teacher_subject",
	})
}

func TestCreateLessonSeries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery("INSERT INTO lesson_series").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.Create(context.Background(), sampleSeries())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLessonSeriesByTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	now := time.Now()
	rows := seriesRows().
		AddRow(int64(1), "t1", "s1", 0, now, now, now, now, now, "Ann Lee", "Math").
		AddRow(int64(2), "t1", "s2", 2, now, now, now, now, now, "Bob Ray", "Math")
	mock.ExpectQuery("FROM lesson_series ls").
		WithArgs("t1").
		WillReturnRows(rows)

	out, err := repo.ListByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Ann Lee", out[0].StudentName)
	assert.Equal(t, "Math", out[1].TeacherSubject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListLessonSeriesByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	now := time.Now()
	rows := seriesRows().
		AddRow(int64(3), "t2", "s1", 4, now, now, now, now, now, "Ann Lee", "Physics")
	mock.ExpectQuery("FROM lesson_series ls").
		WithArgs("s1").
		WillReturnRows(rows)

	out, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Physics", out[0].TeacherSubject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLessonSeries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("DELETE FROM lesson_series").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Delete(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteLessonSeriesMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("DELETE FROM lesson_series").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Delete(context.Background(), 99)
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
