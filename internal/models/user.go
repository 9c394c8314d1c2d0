package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User represents an application user stored in the users table. Teachers
// carry a subject label; students and teachers start unapproved and must be
// confirmed by an administrator before they can sign in.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	Role         UserRole  `db:"role" json:"role"`
	Subject      *string   `db:"subject" json:"subject,omitempty"`
	Approved     bool      `db:"approved" json:"approved"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name used in calendars and notifications.
func (u User) FullName() string {
	return u.Name + " " + u.Surname
}

// SubjectLabel returns the teacher's subject or an empty string.
func (u User) SubjectLabel() string {
	if u.Subject == nil {
		return ""
	}
	return *u.Subject
}
