// Package schedule expands recurring lesson series into concrete calendar
// events and detects overlap conflicts between a teacher's series. All
// functions are pure; persistence and transport concerns live elsewhere.
package schedule

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/tutorhub/tutoring-api/internal/models"
)

var (
	// ErrInvalidTimeRange reports start_time >= end_time.
	ErrInvalidTimeRange = errors.New("start_time must be before end_time")
	// ErrInvalidDateRange reports start_date > end_date.
	ErrInvalidDateRange = errors.New("start_date must not be after end_date")
	// ErrInvalidWeekday reports a day_of_week outside 0..6.
	ErrInvalidWeekday = errors.New("day_of_week must be between 0 and 6")
	// ErrMalformedEventID reports an event identifier that does not parse.
	ErrMalformedEventID = errors.New("malformed event identifier")
)

// Event is one concrete occurrence of a series on a single date. Produced
// fresh on every expansion, never persisted.
type Event struct {
	SeriesID int64
	Series   models.LessonSeries
	Start    time.Time
	End      time.Time
}

// ID returns the composite identifier "series-<id>-<date>" that lets a
// caller map an occurrence back to its series.
func (e Event) ID() string {
	return EventID(e.SeriesID, e.Start)
}

// EventID formats the composite occurrence identifier for a series and date.
func EventID(seriesID int64, date time.Time) string {
	return fmt.Sprintf("series-%d-%s", seriesID, date.Format(time.DateOnly))
}

// ParseEventID extracts the series id and occurrence date from a composite
// identifier produced by EventID.
func ParseEventID(id string) (int64, time.Time, error) {
	rest, ok := strings.CutPrefix(id, "series-")
	if !ok {
		return 0, time.Time{}, ErrMalformedEventID
	}
	idx := strings.IndexByte(rest, '-')
	if idx <= 0 {
		return 0, time.Time{}, ErrMalformedEventID
	}
	seriesID, err := strconv.ParseInt(rest[:idx], 10, 64)
	if err != nil {
		return 0, time.Time{}, ErrMalformedEventID
	}
	date, err := time.Parse(time.DateOnly, rest[idx+1:])
	if err != nil {
		return 0, time.Time{}, ErrMalformedEventID
	}
	return seriesID, date, nil
}

// ISOWeekday maps a date to ISO weekday numbering starting at Monday
// (Monday = 0 .. Sunday = 6).
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Validate checks the structural invariants of a series. It must pass
// before any conflict check or expansion runs.
func Validate(s models.LessonSeries) error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return ErrInvalidWeekday
	}
	if !clockOf(s.StartTime).Before(clockOf(s.EndTime)) {
		return ErrInvalidTimeRange
	}
	if dateOf(s.StartDate).After(dateOf(s.EndDate)) {
		return ErrInvalidDateRange
	}
	return nil
}

// Expand yields the occurrences of a single series inside the closed date
// window [from, to] in ascending date order. The sequence is finite and
// restartable; a series whose validity range misses the window yields
// nothing. Instead of scanning every day it jumps to the first date whose
// weekday matches and strides by whole weeks, which produces the identical
// set as a daily scan.
func Expand(s models.LessonSeries, from, to time.Time) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		lo := dateOf(maxDate(s.StartDate, from))
		hi := dateOf(minDate(s.EndDate, to))
		if lo.After(hi) {
			return
		}
		offset := ((s.DayOfWeek-ISOWeekday(lo))%7 + 7) % 7
		for d := lo.AddDate(0, 0, offset); !d.After(hi); d = d.AddDate(0, 0, 7) {
			ev := Event{
				SeriesID: s.ID,
				Series:   s,
				Start:    at(d, s.StartTime),
				End:      at(d, s.EndTime),
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// ExpandAll concatenates the expansions of several series. Events of one
// series stay in date order; ordering across series follows the input
// slice, so callers wanting a global order sort by Start afterwards.
func ExpandAll(series []models.LessonSeries, from, to time.Time) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, s := range series {
			for ev := range Expand(s, from, to) {
				if !yield(ev) {
					return
				}
			}
		}
	}
}

// Conflicts returns every existing series that collides with the candidate.
// Two series conflict only when they share the teacher and weekday, their
// date ranges overlap as closed intervals, and their time ranges overlap
// strictly. Touching time endpoints (one ends exactly when the other
// starts) do not conflict.
func Conflicts(candidate models.LessonSeries, existing []models.LessonSeries) []models.LessonSeries {
	var out []models.LessonSeries
	for _, s := range existing {
		if s.TeacherID != candidate.TeacherID || s.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if !datesOverlap(candidate, s) || !timesOverlap(candidate, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func datesOverlap(a, b models.LessonSeries) bool {
	aStart, aEnd := dateOf(a.StartDate), dateOf(a.EndDate)
	bStart, bEnd := dateOf(b.StartDate), dateOf(b.EndDate)
	return !bStart.After(aEnd) && !bEnd.Before(aStart)
}

func timesOverlap(a, b models.LessonSeries) bool {
	return clockOf(b.StartTime) < clockOf(a.EndTime) && clockOf(b.EndTime) > clockOf(a.StartTime)
}

// clockOf reduces a time value to seconds since midnight, discarding the
// date component carried by TIME columns.
func clockOf(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// dateOf truncates a time value to midnight UTC so date comparisons ignore
// any time-of-day or zone component.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// at combines a date with a time-of-day into one timestamp.
func at(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
}

func maxDate(a, b time.Time) time.Time {
	if dateOf(a).After(dateOf(b)) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if dateOf(a).Before(dateOf(b)) {
		return a
	}
	return b
}
