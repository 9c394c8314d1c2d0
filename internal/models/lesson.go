package models

import "time"

// LessonSeries represents one recurring weekly lesson commitment between a
// teacher and a student. DayOfWeek follows ISO numbering starting at Monday
// (0 = Monday .. 6 = Sunday). StartTime/EndTime carry only their time-of-day
// component; StartDate/EndDate only their date component. The date range is
// inclusive on both ends.
//
// A series is immutable after creation; rescheduling is delete + recreate.
type LessonSeries struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Populated by list queries joining users; not columns of lesson_series.
	StudentName    string `db:"student_name" json:"student_name,omitempty"`
	TeacherSubject string `db:"teacher_subject" json:"teacher_subject,omitempty"`
}

// SchedulingConflictError is returned when a candidate series collides with
// existing commitments of the same teacher.
type SchedulingConflictError struct {
	Message   string         `json:"message"`
	Conflicts []LessonSeries `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *SchedulingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
