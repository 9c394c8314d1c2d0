package dto

// CreateLessonSeriesRequest contains the payload for assigning a recurring
// lesson. Times use "HH:MM", dates use "2006-01-02". DayOfWeek counts from
// Monday as 0.
type CreateLessonSeriesRequest struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// CreateLessonSeriesResponse returns the identifier of the stored series.
type CreateLessonSeriesResponse struct {
	ID int64 `json:"id"`
}

// CalendarEvent is one concrete occurrence of a series inside a query
// window. It is materialized per request and never stored.
type CalendarEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}
