package cpm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"construction-scheduler-backend/internal/database/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWorkDay(t *testing.T) {
	cal := DefaultCalendar()

	t.Run("weekdays are workable", func(t *testing.T) {
		assert.True(t, cal.IsWorkDay(date(2026, 3, 2)))  // Monday
		assert.True(t, cal.IsWorkDay(date(2026, 3, 6)))  // Friday
	})

	t.Run("weekend is not workable", func(t *testing.T) {
		assert.False(t, cal.IsWorkDay(date(2026, 3, 7))) // Saturday
		assert.False(t, cal.IsWorkDay(date(2026, 3, 8))) // Sunday
	})

	t.Run("all-days mask makes weekend workable", func(t *testing.T) {
		sevenDay := NewCalendar(WorkDaysAll, 8)
		assert.True(t, sevenDay.IsWorkDay(date(2026, 3, 7)))
		assert.True(t, sevenDay.IsWorkDay(date(2026, 3, 8)))
	})

	t.Run("holiday exception zeroes a weekday", func(t *testing.T) {
		cal := DefaultCalendar()
		cal.AddException(date(2026, 3, 9), models.ExceptionHoliday, 0, false)
		assert.False(t, cal.IsWorkDay(date(2026, 3, 9)))
	})

	t.Run("weather exception zeroes a weekday", func(t *testing.T) {
		cal := DefaultCalendar()
		cal.AddException(date(2026, 3, 10), models.ExceptionWeather, 0, false)
		assert.False(t, cal.IsWorkDay(date(2026, 3, 10)))
	})

	t.Run("overtime exception makes a Saturday workable", func(t *testing.T) {
		cal := DefaultCalendar()
		cal.AddException(date(2026, 3, 7), models.ExceptionOvertime, 6, false)
		assert.True(t, cal.IsWorkDay(date(2026, 3, 7)))
	})

	t.Run("recurring holiday applies every year", func(t *testing.T) {
		cal := DefaultCalendar()
		cal.AddException(date(2026, 12, 25), models.ExceptionHoliday, 0, true)
		assert.False(t, cal.IsWorkDay(date(2026, 12, 25))) // Friday
		assert.False(t, cal.IsWorkDay(date(2025, 12, 25))) // Thursday, prior year
	})
}

func TestAddWorkDays(t *testing.T) {
	cal := DefaultCalendar()

	t.Run("within a week", func(t *testing.T) {
		got := cal.AddWorkDays(date(2026, 3, 2), 3) // Mon + 3
		assert.Equal(t, date(2026, 3, 5), got)      // Thursday
	})

	t.Run("skips the weekend", func(t *testing.T) {
		got := cal.AddWorkDays(date(2026, 3, 6), 1) // Fri + 1
		assert.Equal(t, date(2026, 3, 9), got)      // Monday
	})

	t.Run("skips a holiday", func(t *testing.T) {
		cal := DefaultCalendar()
		cal.AddException(date(2026, 3, 9), models.ExceptionHoliday, 0, false)
		got := cal.AddWorkDays(date(2026, 3, 6), 1)
		assert.Equal(t, date(2026, 3, 10), got) // Tuesday
	})

	t.Run("zero days returns the date unchanged", func(t *testing.T) {
		got := cal.AddWorkDays(date(2026, 3, 7), 0) // Saturday stays put
		assert.Equal(t, date(2026, 3, 7), got)
	})
}

func TestSubtractWorkDays(t *testing.T) {
	cal := DefaultCalendar()

	t.Run("within a week", func(t *testing.T) {
		got := cal.SubtractWorkDays(date(2026, 3, 5), 3)
		assert.Equal(t, date(2026, 3, 2), got)
	})

	t.Run("skips the weekend backwards", func(t *testing.T) {
		got := cal.SubtractWorkDays(date(2026, 3, 9), 1) // Mon - 1
		assert.Equal(t, date(2026, 3, 6), got)           // Friday
	})
}

func TestWorkDaysBetween(t *testing.T) {
	cal := DefaultCalendar()

	t.Run("counts working days in (start, end]", func(t *testing.T) {
		assert.Equal(t, 5, cal.WorkDaysBetween(date(2026, 3, 2), date(2026, 3, 9)))
	})

	t.Run("same day is zero", func(t *testing.T) {
		assert.Equal(t, 0, cal.WorkDaysBetween(date(2026, 3, 2), date(2026, 3, 2)))
	})

	t.Run("end before start is zero", func(t *testing.T) {
		assert.Equal(t, 0, cal.WorkDaysBetween(date(2026, 3, 9), date(2026, 3, 2)))
	})

	t.Run("inverse of AddWorkDays", func(t *testing.T) {
		start := date(2026, 3, 2)
		end := cal.AddWorkDays(start, 17)
		assert.Equal(t, 17, cal.WorkDaysBetween(start, end))
	})
}

func TestNextWorkDay(t *testing.T) {
	cal := DefaultCalendar()

	t.Run("work day returns itself", func(t *testing.T) {
		assert.Equal(t, date(2026, 3, 2), cal.NextWorkDay(date(2026, 3, 2)))
	})

	t.Run("Saturday rolls to Monday", func(t *testing.T) {
		assert.Equal(t, date(2026, 3, 9), cal.NextWorkDay(date(2026, 3, 7)))
	})
}

func TestNewCalendarFromModel(t *testing.T) {
	t.Run("nil model falls back to the default calendar", func(t *testing.T) {
		cal := NewCalendarFromModel(nil)
		assert.True(t, cal.IsWorkDay(date(2026, 3, 2)))
		assert.False(t, cal.IsWorkDay(date(2026, 3, 7)))
	})

	t.Run("exceptions are carried over", func(t *testing.T) {
		model := &models.WorkCalendar{
			WorkDays:    WorkDaysMonFri,
			HoursPerDay: 8,
			Exceptions: []models.CalendarException{
				{Date: date(2026, 3, 9), ExceptionType: models.ExceptionHoliday},
				{Date: date(2026, 3, 7), ExceptionType: models.ExceptionOvertime, HoursWorked: 6},
			},
		}
		cal := NewCalendarFromModel(model)
		assert.False(t, cal.IsWorkDay(date(2026, 3, 9)))
		assert.True(t, cal.IsWorkDay(date(2026, 3, 7)))
	})
}

func TestDateOnly(t *testing.T) {
	got := DateOnly(time.Date(2026, 3, 2, 14, 30, 12, 0, time.UTC))
	assert.Equal(t, date(2026, 3, 2), got)
}
