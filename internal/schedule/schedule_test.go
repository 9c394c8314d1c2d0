package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/tutoring-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func clock(h, m int) time.Time {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC)
}

func mondaySeries(id int64) models.LessonSeries {
	return models.LessonSeries{
		ID:        id,
		TeacherID: "teacher-1",
		StudentID: "student-1",
		DayOfWeek: 0,
		StartTime: clock(10, 0),
		EndTime:   clock(11, 0),
		StartDate: date(2025, time.September, 1),
		EndDate:   date(2025, time.September, 30),
	}
}

func collect(seq func(func(Event) bool)) []Event {
	var out []Event
	seq(func(e Event) bool {
		out = append(out, e)
		return true
	})
	return out
}

// naiveExpand is the day-by-day reference scan used as an oracle for the
// weekday-stride implementation.
func naiveExpand(s models.LessonSeries, from, to time.Time) []Event {
	var out []Event
	lo := maxDate(s.StartDate, from)
	hi := minDate(s.EndDate, to)
	for d := dateOf(lo); !d.After(dateOf(hi)); d = d.AddDate(0, 0, 1) {
		if ISOWeekday(d) != s.DayOfWeek {
			continue
		}
		out = append(out, Event{
			SeriesID: s.ID,
			Series:   s,
			Start:    at(d, s.StartTime),
			End:      at(d, s.EndTime),
		})
	}
	return out
}

func TestExpandFirstWeekOfSeptember(t *testing.T) {
	s := mondaySeries(7)

	events := collect(Expand(s, date(2025, time.September, 1), date(2025, time.September, 7)))

	require.Len(t, events, 1)
	assert.Equal(t, "series-7-2025-09-01", events[0].ID())
	assert.Equal(t, time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC), events[0].Start)
	assert.Equal(t, time.Date(2025, time.September, 1, 11, 0, 0, 0, time.UTC), events[0].End)
}

func TestExpandWindowMissingTheWeekday(t *testing.T) {
	s := mondaySeries(7)

	events := collect(Expand(s, date(2025, time.September, 2), date(2025, time.September, 7)))

	assert.Empty(t, events)
}

func TestExpandFullMonth(t *testing.T) {
	s := mondaySeries(7)

	events := collect(Expand(s, date(2025, time.September, 1), date(2025, time.September, 30)))

	require.Len(t, events, 5)
	want := []string{"2025-09-01", "2025-09-08", "2025-09-15", "2025-09-22", "2025-09-29"}
	for i, ev := range events {
		assert.Equal(t, want[i], ev.Start.Format(time.DateOnly))
	}
}

func TestExpandZeroDayWindow(t *testing.T) {
	s := mondaySeries(7)

	hit := collect(Expand(s, date(2025, time.September, 8), date(2025, time.September, 8)))
	miss := collect(Expand(s, date(2025, time.September, 9), date(2025, time.September, 9)))

	require.Len(t, hit, 1)
	assert.Empty(t, miss)
}

func TestExpandSeriesOutsideWindow(t *testing.T) {
	s := mondaySeries(7)

	events := collect(Expand(s, date(2025, time.October, 1), date(2025, time.October, 31)))

	assert.Empty(t, events)
}

func TestExpandShortRangeMayMissWeekday(t *testing.T) {
	s := mondaySeries(7)
	s.StartDate = date(2025, time.September, 2)
	s.EndDate = date(2025, time.September, 5)

	events := collect(Expand(s, date(2025, time.September, 1), date(2025, time.September, 30)))

	assert.Empty(t, events)
}

func TestExpandWeekdayFidelityAndContainment(t *testing.T) {
	from := date(2025, time.August, 20)
	to := date(2025, time.October, 10)
	for dow := 0; dow < 7; dow++ {
		s := mondaySeries(int64(dow + 1))
		s.DayOfWeek = dow
		for _, ev := range collect(Expand(s, from, to)) {
			assert.Equal(t, dow, ISOWeekday(ev.Start))
			assert.False(t, ev.Start.Before(at(from, s.StartTime)))
			assert.False(t, ev.Start.After(at(to, s.StartTime)))
			assert.False(t, ev.Start.Before(at(s.StartDate, s.StartTime)))
			assert.False(t, ev.Start.After(at(s.EndDate, s.StartTime)))
		}
	}
}

func TestExpandMatchesNaiveScan(t *testing.T) {
	windows := []struct{ from, to time.Time }{
		{date(2025, time.September, 1), date(2025, time.September, 7)},
		{date(2025, time.August, 15), date(2025, time.November, 3)},
		{date(2025, time.September, 30), date(2025, time.September, 30)},
		{date(2025, time.December, 1), date(2025, time.December, 31)},
		{date(2025, time.September, 3), date(2025, time.September, 3)},
	}
	for dow := 0; dow < 7; dow++ {
		s := mondaySeries(int64(100 + dow))
		s.DayOfWeek = dow
		for _, w := range windows {
			got := collect(Expand(s, w.from, w.to))
			want := naiveExpand(s, w.from, w.to)
			assert.Equal(t, want, got, "dow=%d window=%s..%s",
				dow, w.from.Format(time.DateOnly), w.to.Format(time.DateOnly))
		}
	}
}

func TestExpandIsRestartable(t *testing.T) {
	s := mondaySeries(7)
	seq := Expand(s, date(2025, time.September, 1), date(2025, time.September, 30))

	first := collect(seq)
	second := collect(seq)

	assert.Equal(t, first, second)
}

func TestExpandAllKeepsPerSeriesOrder(t *testing.T) {
	a := mondaySeries(1)
	b := mondaySeries(2)
	b.DayOfWeek = 2

	events := collect(ExpandAll([]models.LessonSeries{a, b}, date(2025, time.September, 1), date(2025, time.September, 14)))

	require.Len(t, events, 4)
	assert.Equal(t, int64(1), events[0].SeriesID)
	assert.Equal(t, int64(1), events[1].SeriesID)
	assert.True(t, events[0].Start.Before(events[1].Start))
	assert.Equal(t, int64(2), events[2].SeriesID)
	assert.True(t, events[2].Start.Before(events[3].Start))
}

func TestConflictsOverlappingTimes(t *testing.T) {
	existing := mondaySeries(1)
	candidate := mondaySeries(0)
	candidate.StartTime = clock(10, 30)
	candidate.EndTime = clock(11, 30)

	got := Conflicts(candidate, []models.LessonSeries{existing})

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestConflictsTouchingEndpointsDoNotConflict(t *testing.T) {
	existing := mondaySeries(1)

	after := mondaySeries(0)
	after.StartTime = clock(11, 0)
	after.EndTime = clock(12, 0)
	assert.Empty(t, Conflicts(after, []models.LessonSeries{existing}))

	before := mondaySeries(0)
	before.StartTime = clock(9, 0)
	before.EndTime = clock(10, 0)
	assert.Empty(t, Conflicts(before, []models.LessonSeries{existing}))
}

func TestConflictsDifferentWeekdayNeverConflicts(t *testing.T) {
	existing := mondaySeries(1)
	candidate := mondaySeries(0)
	candidate.DayOfWeek = 1

	assert.Empty(t, Conflicts(candidate, []models.LessonSeries{existing}))
}

func TestConflictsDifferentTeacher(t *testing.T) {
	existing := mondaySeries(1)
	candidate := mondaySeries(0)
	candidate.TeacherID = "teacher-2"

	assert.Empty(t, Conflicts(candidate, []models.LessonSeries{existing}))
}

func TestConflictsDisjointDateRanges(t *testing.T) {
	existing := mondaySeries(1)
	candidate := mondaySeries(0)
	candidate.StartDate = date(2025, time.October, 1)
	candidate.EndDate = date(2025, time.October, 31)

	assert.Empty(t, Conflicts(candidate, []models.LessonSeries{existing}))
}

func TestConflictsTouchingDateRangesConflict(t *testing.T) {
	// Date ranges are closed intervals, so sharing a single boundary day
	// is an overlap when the times collide.
	existing := mondaySeries(1)
	candidate := mondaySeries(0)
	candidate.StartDate = date(2025, time.September, 30)
	candidate.EndDate = date(2025, time.October, 31)

	got := Conflicts(candidate, []models.LessonSeries{existing})

	require.Len(t, got, 1)
}

func TestConflictsSymmetry(t *testing.T) {
	a := mondaySeries(1)
	b := mondaySeries(2)
	b.StartTime = clock(10, 30)
	b.EndTime = clock(11, 30)
	b.StartDate = date(2025, time.September, 15)
	b.EndDate = date(2025, time.October, 15)

	assert.Len(t, Conflicts(a, []models.LessonSeries{b}), 1)
	assert.Len(t, Conflicts(b, []models.LessonSeries{a}), 1)
}

func TestConflictsReturnsEverything(t *testing.T) {
	first := mondaySeries(1)
	second := mondaySeries(2)
	second.StartTime = clock(10, 45)
	second.EndTime = clock(11, 45)
	unrelated := mondaySeries(3)
	unrelated.DayOfWeek = 4

	candidate := mondaySeries(0)
	candidate.StartTime = clock(10, 30)
	candidate.EndTime = clock(11, 30)

	got := Conflicts(candidate, []models.LessonSeries{first, second, unrelated})

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestValidate(t *testing.T) {
	ok := mondaySeries(1)
	assert.NoError(t, Validate(ok))

	badTime := mondaySeries(1)
	badTime.StartTime = clock(11, 0)
	badTime.EndTime = clock(10, 0)
	assert.ErrorIs(t, Validate(badTime), ErrInvalidTimeRange)

	equalTime := mondaySeries(1)
	equalTime.EndTime = equalTime.StartTime
	assert.ErrorIs(t, Validate(equalTime), ErrInvalidTimeRange)

	badDate := mondaySeries(1)
	badDate.StartDate = date(2025, time.October, 1)
	badDate.EndDate = date(2025, time.September, 1)
	assert.ErrorIs(t, Validate(badDate), ErrInvalidDateRange)

	badDow := mondaySeries(1)
	badDow.DayOfWeek = 7
	assert.ErrorIs(t, Validate(badDow), ErrInvalidWeekday)
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, 0, ISOWeekday(date(2025, time.September, 1))) // Monday
	assert.Equal(t, 6, ISOWeekday(date(2025, time.September, 7))) // Sunday
	assert.Equal(t, 2, ISOWeekday(date(2025, time.September, 3))) // Wednesday
}

func TestParseEventID(t *testing.T) {
	id, day, err := ParseEventID("series-42-2025-09-01")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, date(2025, time.September, 1), day)

	for _, bad := range []string{
		"",
		"series-",
		"series-x-2025-09-01",
		"series-42",
		"series-42-yesterday",
		"lesson-42-2025-09-01",
		"42-2025-09-01",
	} {
		_, _, err := ParseEventID(bad)
		assert.ErrorIs(t, err, ErrMalformedEventID, "input %q", bad)
	}
}

func TestEventIDRoundTrip(t *testing.T) {
	ev := Event{SeriesID: 9, Start: time.Date(2025, time.September, 15, 10, 0, 0, 0, time.UTC)}

	id, day, err := ParseEventID(ev.ID())

	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.Equal(t, date(2025, time.September, 15), day)
}
