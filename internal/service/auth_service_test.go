package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorhub/tutoring-api/internal/models"
	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
)

type mockAuthRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []models.User
}

func (m *mockAuthRepo) Create(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = "generated"
	m.created = append(m.created, user)
	return &user, nil
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret: "test_secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "test",
	}
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterStudent(t *testing.T) {
	repo := &mockAuthRepo{byEmail: map[string]*models.User{}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Role:     "student",
		Name:     "Ann",
		Surname:  "Lee",
		Email:    "Ann@Example.com",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.False(t, user.Approved)
	assert.Nil(t, user.Subject)
}

func TestRegisterTeacherRequiresSubject(t *testing.T) {
	repo := &mockAuthRepo{byEmail: map[string]*models.User{}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Role:     "teacher",
		Name:     "Bob",
		Surname:  "Ray",
		Email:    "bob@example.com",
		Password: "secret",
	})

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &mockAuthRepo{byEmail: map[string]*models.User{
		"ann@example.com": {ID: "u1"},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Role:     "student",
		Name:     "Ann",
		Surname:  "Lee",
		Email:    "ann@example.com",
		Password: "secret",
	})

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterDuplicateEmailMixedCase(t *testing.T) {
	repo := &mockAuthRepo{byEmail: map[string]*models.User{
		"ann@example.com": {ID: "u1"},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Role:     "student",
		Name:     "Ann",
		Surname:  "Lee",
		Email:    "Ann@Example.COM",
		Password: "secret",
	})

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestLoginApprovedUser(t *testing.T) {
	repo := &mockAuthRepo{byEmail: map[string]*models.User{
		"ann@example.com": {
			ID:           "u1",
			Email:        "ann@example.com",
			PasswordHash: hashed(t, "secret"),
			Name:         "Ann",
			Surname:      "Lee",
			Role:         models.RoleStudent,
			Approved:     true,
		},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ann@example.com",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Ann Lee", resp.User.FullName)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginPendingAccount(t *testing.T) {
	repo := &mockAuthRepo{byEmail: map[string]*models.User{
		"new@example.com": {
			ID:           "u2",
			Email:        "new@example.com",
			PasswordHash: hashed(t, "secret"),
			Role:         models.RoleTeacher,
			Approved:     false,
		},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "new@example.com",
		Password: "secret",
	})

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAccountPending.Code, appErr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{byEmail: map[string]*models.User{
		"ann@example.com": {
			ID:           "u1",
			Email:        "ann@example.com",
			PasswordHash: hashed(t, "secret"),
			Approved:     true,
		},
	}}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ann@example.com",
		Password: "wrong",
	})

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.ValidateToken("not-a-token")

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
