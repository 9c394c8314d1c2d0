package dto

import "time"

// AssignTaskRequest is the multipart payload a teacher submits when issuing
// an assignment. The optional attachment travels as a separate form file.
type AssignTaskRequest struct {
	Title       string `form:"title" json:"title" validate:"required,min=2,max=100"`
	Description string `form:"description" json:"description" validate:"required,min=2,max=2000"`
	DueDate     string `form:"due_date" json:"due_date" validate:"required"`
	MaxPoints   int    `form:"max_points" json:"max_points" validate:"required,min=1,max=100"`
	StudentID   string `form:"student_id" json:"student_id" validate:"required"`
}

// SubmitTaskRequest carries the student's answer text.
type SubmitTaskRequest struct {
	Answer string `form:"answer" json:"answer" validate:"required,min=1,max=5000"`
}

// GradeTaskRequest carries the points awarded by the teacher.
type GradeTaskRequest struct {
	Points *int `json:"points" validate:"required,min=0"`
}

// TaskView is an assignment enriched with signed download URLs for any
// attachments the caller may fetch.
type TaskView struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	IssuedAt             time.Time  `json:"issued_at"`
	DueDate              time.Time  `json:"due_date"`
	MaxPoints            int        `json:"max_points"`
	EarnedPoints         *int       `json:"earned_points,omitempty"`
	StudentID            string     `json:"student_id"`
	TeacherID            string     `json:"teacher_id"`
	StudentAnswer        *string    `json:"student_answer,omitempty"`
	Submitted            bool       `json:"submitted"`
	SubmittedAt          *time.Time `json:"submitted_at,omitempty"`
	TeacherAttachmentURL string     `json:"teacher_attachment_url,omitempty"`
	StudentAttachmentURL string     `json:"student_attachment_url,omitempty"`
}
