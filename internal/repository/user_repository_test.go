package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/tutoring-api/internal/models"
)

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "surname", "role", "subject", "approved", "created_at", "updated_at",
	}).AddRow("u1", "ann@example.com", "hash", "Ann", "Lee", string(models.RoleStudent), nil, true, now, now)
}

func TestFindUserByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, name, surname, role, subject, approved, created_at, updated_at FROM users WHERE email = $1 LIMIT 1")).
		WithArgs("ann@example.com").
		WillReturnRows(userRows(time.Now()))

	user, err := repo.FindByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))

	user, err := repo.Create(context.Background(), models.User{
		Email:        "bob@example.com",
		PasswordHash: "hash",
		Name:         "Bob",
		Surname:      "Ray",
		Role:         models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET approved").
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Approve(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveUserMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET approved").
		WithArgs("ghost", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Approve(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "surname", "role", "subject", "approved", "created_at", "updated_at",
	}).AddRow("u2", "new@example.com", "hash", "New", "Kid", string(models.RoleStudent), nil, false, now, now)
	mock.ExpectQuery("FROM users WHERE approved = FALSE").
		WithArgs(string(models.RoleAdmin)).
		WillReturnRows(rows)

	users, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.False(t, users[0].Approved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
