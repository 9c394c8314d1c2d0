package models

import "time"

// Task is an assignment issued by a teacher to one student. Submission
// clears any previous grade; grading requires a submission first.
type Task struct {
	ID                string     `db:"id" json:"id"`
	Title             string     `db:"title" json:"title"`
	Description       string     `db:"description" json:"description"`
	IssuedAt          time.Time  `db:"issued_at" json:"issued_at"`
	DueDate           time.Time  `db:"due_date" json:"due_date"`
	MaxPoints         int        `db:"max_points" json:"max_points"`
	EarnedPoints      *int       `db:"earned_points" json:"earned_points,omitempty"`
	StudentID         string     `db:"student_id" json:"student_id"`
	TeacherID         string     `db:"teacher_id" json:"teacher_id"`
	StudentAnswer     *string    `db:"student_answer" json:"student_answer,omitempty"`
	TeacherAttachment *string    `db:"teacher_attachment" json:"-"`
	StudentAttachment *string    `db:"student_attachment" json:"-"`
	Submitted         bool       `db:"submitted" json:"submitted"`
	SubmittedAt       *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
}
